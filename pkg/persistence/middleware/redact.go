package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/ports"
	"github.com/aretw0/formwork/pkg/tree"
)

// Mask replaces redacted property values.
const Mask = "***"

type redactMiddleware struct {
	next     ports.DefinitionStore
	patterns []*regexp.Regexp
}

// NewRedactMiddleware creates a middleware that masks component property values
// whose keys match any of the patterns, at any depth, before they are stored.
// The in-memory document is never modified.
func NewRedactMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redact pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.DefinitionStore) ports.DefinitionStore {
		return &redactMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *redactMiddleware) Save(ctx context.Context, formID string, def *domain.Definition) error {
	cloned := def.DeepCopy()
	tree.Walk(cloned.Components, func(c *domain.Component) bool {
		maskMap(c.Properties, m.patterns)
		return true
	})
	return m.next.Save(ctx, formID, cloned)
}

func (m *redactMiddleware) Load(ctx context.Context, formID string) (*domain.Definition, error) {
	return m.next.Load(ctx, formID)
}

func (m *redactMiddleware) Delete(ctx context.Context, formID string) error {
	return m.next.Delete(ctx, formID)
}

func (m *redactMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func maskMap(props map[string]any, patterns []*regexp.Regexp) {
	for k, v := range props {
		masked := false
		for _, p := range patterns {
			if p.MatchString(k) {
				props[k] = Mask
				masked = true
				break
			}
		}
		if masked {
			continue
		}

		switch sub := v.(type) {
		case map[string]any:
			maskMap(sub, patterns)
		case []any:
			for _, item := range sub {
				if m, ok := item.(map[string]any); ok {
					maskMap(m, patterns)
				}
			}
		}
	}
}
