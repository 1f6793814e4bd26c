package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/formwork/pkg/adapters/file"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
)

// readDefinition resolves ref as a definition file when one exists at that path,
// and as a stored form ID otherwise. The returned name titles outlines.
func readDefinition(ctx context.Context, a *app, ref string) (domain.Definition, string, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		data, err := os.ReadFile(ref)
		if err != nil {
			return domain.Definition{}, "", err
		}
		def, err := file.Decode(data, file.FormatFromPath(ref))
		if err != nil {
			return domain.Definition{}, "", fmt.Errorf("%s: %w", ref, err)
		}
		return def, strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref)), nil
	}

	def, err := a.store.Load(ctx, ref)
	if err != nil {
		return domain.Definition{}, "", fmt.Errorf("form %q: %w", ref, err)
	}
	return *def, ref, nil
}

// normalized loads def into a designer store and saves it back: legacy parentId
// lists come out nested and repeated ids are made unique.
func normalized(a *app, def domain.Definition) domain.Definition {
	s := designer.New(a.designerOptions()...)
	s.Load(def)
	return s.Save()
}
