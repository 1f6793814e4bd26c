package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractDefinition() *domain.Definition {
	def := domain.DefaultDefinition()
	def.CanvasSize = domain.Size{Width: 1024, Height: 768}
	def.Zoom = 0.5
	def.Components = []*domain.Component{
		{
			ID:         "sec",
			Kind:       domain.KindSection,
			Size:       domain.Size{Width: 400, Height: 200},
			Properties: map[string]any{"columns": 2.0},
			Children: []*domain.Component{
				{ID: "name", Kind: domain.KindInput, Column: domain.IntPtr(1), Properties: map[string]any{"label": "Name"}},
			},
		},
		{
			ID:   "tabs",
			Kind: domain.KindTabs,
			Tabs: []*domain.Slot{{ID: "t1", Title: "Main", Children: []*domain.Component{{ID: "ok", Kind: domain.KindButton}}}},
		},
	}
	return &def
}

// RunDefinitionStoreContract runs a suite of tests to verify that a DefinitionStore implementation
// adheres to the defined interface contract.
func RunDefinitionStoreContract(t *testing.T, store DefinitionStore) {
	ctx := context.Background()
	formID := "contract-test-form-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		def := contractDefinition()

		err := store.Save(ctx, formID, def)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, formID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, def, loaded)

		// The store must not alias the caller's document.
		loaded.Components[0].ID = "mutated"
		again, err := store.Load(ctx, formID)
		require.NoError(t, err)
		assert.Equal(t, "sec", again.Components[0].ID)
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		def := contractDefinition()
		def.Components = def.Components[:1]
		require.NoError(t, store.Save(ctx, formID, def))

		loaded, err := store.Load(ctx, formID)
		require.NoError(t, err)
		assert.Len(t, loaded.Components, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+formID)
		assert.ErrorIs(t, err, domain.ErrFormNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, formID, contractDefinition())
		require.NoError(t, err)

		err = store.Delete(ctx, formID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, formID)
		assert.ErrorIs(t, err, domain.ErrFormNotFound, "Load after Delete should return ErrFormNotFound")

		assert.NoError(t, store.Delete(ctx, formID), "deleting twice is fine")
	})

	t.Run("List", func(t *testing.T) {
		id1 := formID + "-1"
		id2 := formID + "-2"
		_ = store.Save(ctx, id1, contractDefinition())
		_ = store.Save(ctx, id2, contractDefinition())

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		forms, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, forms, id1)
		assert.Contains(t, forms, id2)
	})
}
