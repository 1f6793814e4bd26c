package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/formwork/pkg/adapters/file"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/ports"
	"github.com/aretw0/loam"
)

// Library adapts a Loam vault to ports.TemplateLibrary.
//
// A template is a markdown note: front matter carries TemplateMetadata and the body holds
// the component fragment as JSON or YAML, optionally inside a fenced code block. The body
// may be a bare component list or a full definition.
type Library struct {
	Repo *loam.TypedRepository[TemplateMetadata]
}

// New creates a new Loam template library.
func New(repo *loam.TypedRepository[TemplateMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes a read-only Loam repository at path.
func Open(path string) (*Library, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid template path: %w", err)
	}
	repo, err := loam.Init(abs, loam.WithReadOnly(true), loam.WithVersioning(false))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[TemplateMetadata](repo)), nil
}

type entry struct {
	info    ports.TemplateInfo
	content string
}

func (l *Library) entries(ctx context.Context) ([]entry, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string, len(docs))
	out := make([]entry, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)
		if prev, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: template '%s' is defined in both '%s' and '%s'", id, prev, doc.ID)
		}
		seen[id] = doc.ID

		title := doc.Data.Title
		if title == "" {
			title = id
		}
		out = append(out, entry{
			info: ports.TemplateInfo{
				ID:          id,
				Title:       title,
				Description: doc.Data.Description,
				Tags:        doc.Data.Tags,
			},
			content: doc.Content,
		})
	}
	slices.SortFunc(out, func(a, b entry) int { return strings.Compare(a.info.ID, b.info.ID) })
	return out, nil
}

// ListTemplates implements ports.TemplateLibrary.
func (l *Library) ListTemplates(ctx context.Context) ([]ports.TemplateInfo, error) {
	entries, err := l.entries(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]ports.TemplateInfo, len(entries))
	for i, e := range entries {
		infos[i] = e.info
	}
	return infos, nil
}

// GetTemplate implements ports.TemplateLibrary.
func (l *Library) GetTemplate(ctx context.Context, id string) (*ports.Template, error) {
	entries, err := l.entries(ctx)
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if e.info.ID != trimExtension(id) {
			continue
		}
		components, err := parseBody(e.content)
		if err != nil {
			return nil, fmt.Errorf("template %s: %w", e.info.ID, err)
		}
		return &ports.Template{TemplateInfo: e.info, Components: components}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrTemplateNotFound, id)
}

// parseBody extracts the fragment from a note body.
func parseBody(content string) ([]*domain.Component, error) {
	body := strings.TrimSpace(content)
	format := file.FormatJSON
	if strings.HasPrefix(body, "```") {
		lang, rest, _ := strings.Cut(body, "\n")
		end := strings.LastIndex(rest, "```")
		if end < 0 {
			return nil, fmt.Errorf("unterminated code fence")
		}
		body = strings.TrimSpace(rest[:end])
		switch strings.TrimSpace(strings.TrimPrefix(lang, "```")) {
		case "yaml", "yml":
			format = file.FormatYAML
		}
	}
	if body == "" {
		return nil, fmt.Errorf("empty template body")
	}

	def, err := file.Decode([]byte(body), format)
	if err != nil {
		return nil, err
	}
	return def.Components, nil
}

func trimExtension(id string) string {
	return filepath.ToSlash(strings.TrimSuffix(id, filepath.Ext(id)))
}
