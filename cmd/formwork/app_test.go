package main

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/aretw0/formwork/internal/config"
	"github.com/aretw0/formwork/internal/testutils"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewApp_StoreMiddleware(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Storage.EncryptionKey = "YWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWFhYWE="
	cfg.Storage.Redact = []string{"(?i)secret"}

	a, err := newApp(cfg, io.Discard)
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	def := domain.DefaultDefinition()
	def.Components = []*domain.Component{{ID: "i", Kind: domain.KindInput, Properties: map[string]any{"clientSecret": "x"}}}
	require.NoError(t, a.store.Save(ctx, "f", &def))

	got, err := a.store.Load(ctx, "f")
	require.NoError(t, err)
	assert.Equal(t, "***", got.Components[0].Properties["clientSecret"])
}

func TestNewApp_BadRedactPattern(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Storage.Redact = []string{"("}
	_, err := newApp(cfg, io.Discard)
	assert.Error(t, err)
}

func TestNewApp_SchemaFile(t *testing.T) {
	dir := testutils.SetupDir(t, map[string]string{
		"kinds.json": `{"Button": {"variant": "primary|secondary"}}`,
		"bad.json":   `{"Spinner": {"speed": "int"}}`,
	})
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Designer.SchemaFile = filepath.Join(dir, "kinds.json")

	a, err := newApp(cfg, io.Discard)
	require.NoError(t, err)
	defer a.Close()

	def := domain.DefaultDefinition()
	def.Components = []*domain.Component{{ID: "b", Kind: domain.KindButton, Properties: map[string]any{"variant": "ghost"}}}
	issues := designer.ValidateKinds(def, a.kinds)
	require.Len(t, issues, 1)
	assert.Equal(t, "property", issues[0].Rule)
	assert.Empty(t, designer.Validate(def), "defaults know nothing about variant")

	cfg.Designer.SchemaFile = filepath.Join(dir, "bad.json")
	_, err = newApp(cfg, io.Discard)
	assert.ErrorContains(t, err, "unknown kind")
}

func TestApp_ManagerUsesDesignerSettings(t *testing.T) {
	cfg := config.Default()
	cfg.Storage.Driver = "memory"
	cfg.Designer.DuplicateOffset = 7

	a, err := newApp(cfg, io.Discard)
	require.NoError(t, err)
	a.enableMetrics()
	mgr := a.newManager()
	ctx := context.Background()

	var dup string
	require.NoError(t, mgr.Do(ctx, "f", func(s *designer.Store) error {
		id := s.Add(&domain.Component{Kind: domain.KindButton, Position: domain.Point{X: 10, Y: 10}}, domain.Root(), tree.End)
		dup = s.Duplicate(id)
		return nil
	}))
	st, err := mgr.State(ctx, "f")
	require.NoError(t, err)
	c, ok := tree.Find(st.Document.Components, dup)
	require.True(t, ok)
	assert.Equal(t, domain.Point{X: 17, Y: 17}, c.Position)
}
