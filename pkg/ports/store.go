package ports

import (
	"context"

	"github.com/aretw0/formwork/pkg/domain"
)

// DefinitionStore defines the interface for persisting form documents.
type DefinitionStore interface {
	// Save persists the definition for a given form ID, replacing any previous version.
	Save(ctx context.Context, formID string, def *domain.Definition) error

	// Load retrieves the definition for a given form ID.
	// Returns domain.ErrFormNotFound if the form does not exist.
	Load(ctx context.Context, formID string) (*domain.Definition, error)

	// Delete removes the definition for a given form ID. Deleting a missing form is not an error.
	Delete(ctx context.Context, formID string) error

	// List returns the IDs of every stored form.
	List(ctx context.Context) ([]string, error)
}
