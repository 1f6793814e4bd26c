package ports

import (
	"context"

	"github.com/aretw0/formwork/pkg/domain"
)

// TemplateInfo describes a template without its body.
type TemplateInfo struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

// Template is a named fragment of components ready to be inserted with AddTree.
type Template struct {
	TemplateInfo
	Components []*domain.Component `json:"components"`
}

// TemplateLibrary exposes reusable component fragments.
type TemplateLibrary interface {
	// ListTemplates returns the available templates ordered by ID.
	ListTemplates(ctx context.Context) ([]TemplateInfo, error)

	// GetTemplate returns a template. Returns domain.ErrTemplateNotFound if it does not exist.
	GetTemplate(ctx context.Context, id string) (*Template, error)
}
