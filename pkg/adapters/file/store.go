package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/formwork/pkg/domain"
)

// Store implements ports.DefinitionStore using the local filesystem.
// Each form is one file named after its ID in BasePath.
type Store struct {
	BasePath string
	Format   Format
}

// Option configures a Store.
type Option func(*Store)

// WithFormat selects JSON (default) or YAML files.
func WithFormat(format Format) Option {
	return func(s *Store) {
		s.Format = format
	}
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".formwork/forms".
func New(basePath string, opts ...Option) *Store {
	if basePath == "" {
		basePath = filepath.Join(".formwork", "forms")
	}
	s := &Store{BasePath: basePath, Format: FormatJSON}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) path(formID string) (string, error) {
	if formID == "" {
		return "", errors.New("formID cannot be empty")
	}
	if strings.ContainsAny(formID, `/\`) || formID == "." || formID == ".." {
		return "", fmt.Errorf("invalid formID %q", formID)
	}
	return filepath.Join(s.BasePath, formID+s.Format.Ext()), nil
}

// Save writes the definition atomically: temp file in the same directory, fsync, rename.
func (s *Store) Save(ctx context.Context, formID string, def *domain.Definition) error {
	dest, err := s.path(formID)
	if err != nil {
		return err
	}
	data, err := Encode(def, s.Format)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0o755); err != nil {
		return fmt.Errorf("failed to ensure form directory: %w", err)
	}

	tmp, err := os.CreateTemp(s.BasePath, ".tmp-"+formID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows refuses to rename an open file.
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		// Windows also refuses to rename over an existing file.
		if _, statErr := os.Stat(dest); statErr == nil {
			if err := os.Remove(dest); err != nil {
				return fmt.Errorf("failed to replace form file: %w", err)
			}
			err = os.Rename(tmpPath, dest)
		}
		if err != nil {
			return fmt.Errorf("failed to rename temp file: %w", err)
		}
	}
	return nil
}

// Load reads and decodes a form file.
func (s *Store) Load(ctx context.Context, formID string) (*domain.Definition, error) {
	path, err := s.path(formID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrFormNotFound
		}
		return nil, fmt.Errorf("failed to read form file: %w", err)
	}

	def, err := Decode(data, s.Format)
	if err != nil {
		return nil, fmt.Errorf("form %q: %w", formID, err)
	}
	return &def, nil
}

// Delete removes the form file.
func (s *Store) Delete(ctx context.Context, formID string) error {
	path, err := s.path(formID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete form file: %w", err)
	}
	return nil
}

// List returns the IDs of every form file of the store's format.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list forms: %w", err)
	}

	ext := s.Format.Ext()
	forms := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".tmp-") || filepath.Ext(name) != ext {
			continue
		}
		forms = append(forms, strings.TrimSuffix(name, ext))
	}
	slices.Sort(forms)
	return forms, nil
}
