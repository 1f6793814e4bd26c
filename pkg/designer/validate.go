package designer

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/schema"
)

// Issue is one structural problem found in a definition.
type Issue struct {
	ID      string `json:"id,omitempty"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	if i.ID == "" {
		return fmt.Sprintf("%s: %s", i.Rule, i.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", i.Rule, i.Message, i.ID)
}

// Validate checks a definition as it would be handed to Load, without normalizing it.
// Load repairs every reported issue except unknown kinds, which are kept verbatim, and
// mistyped properties, which are kept as they are.
func Validate(def domain.Definition) []Issue {
	return ValidateKinds(def, schema.Defaults())
}

// ValidateKinds is Validate with property types taken from kinds.
func ValidateKinds(def domain.Definition, kinds schema.Kinds) []Issue {
	v := validator{seen: make(map[string]bool), kinds: kinds}
	if def.CanvasSize.Width <= 0 || def.CanvasSize.Height <= 0 {
		v.add("", "canvas", "canvas size must be positive")
	}
	if def.Zoom < 0 || def.Zoom > MaxZoom {
		v.add("", "zoom", fmt.Sprintf("zoom %g outside [%g, %g]", def.Zoom, MinZoom, MaxZoom))
	}
	v.list(def.Components, nil, true)
	return v.issues
}

type validator struct {
	seen   map[string]bool
	kinds  schema.Kinds
	issues []Issue
}

func (v *validator) add(id, rule, msg string) {
	v.issues = append(v.issues, Issue{ID: id, Rule: rule, Message: msg})
}

func (v *validator) id(id, what string) {
	switch {
	case id == "":
		v.add("", "id", what+" without id")
	case v.seen[id]:
		v.add(id, "unique", "id used more than once")
	}
	v.seen[id] = true
}

func (v *validator) list(list []*domain.Component, owner *domain.Component, root bool) {
	for _, c := range list {
		if c == nil {
			v.add("", "nil", "nil component")
			continue
		}
		v.id(c.ID, "component")
		if !c.Kind.Valid() {
			v.add(c.ID, "kind", fmt.Sprintf("unknown kind %q", c.Kind))
		}
		if c.Size.Width < 0 || c.Size.Height < 0 {
			v.add(c.ID, "size", "negative size")
		}
		if c.ParentID != "" && !root {
			v.add(c.ID, "parent", "parent reference on a nested component")
		}
		v.column(c, owner)
		v.slots(c)
		v.properties(c)
		v.list(c.Children, c, false)
		for _, s := range c.Slots() {
			if s != nil {
				v.list(s.Children, nil, false)
			}
		}
	}
}

func (v *validator) column(c, owner *domain.Component) {
	if c.Column == nil {
		return
	}
	if owner == nil || owner.Kind != domain.KindSection {
		v.add(c.ID, "column", "column tag outside a Section")
		return
	}
	if *c.Column < 0 {
		v.add(c.ID, "column", "negative column")
		return
	}
	if n, ok := columns(owner); ok && *c.Column >= n {
		v.add(c.ID, "column", fmt.Sprintf("column %d outside section of %d columns", *c.Column, n))
	}
}

func (v *validator) slots(c *domain.Component) {
	for _, k := range []struct {
		kind  domain.Kind
		slots []*domain.Slot
	}{
		{domain.KindAccordion, c.Panels},
		{domain.KindStepper, c.Steps},
		{domain.KindTabs, c.Tabs},
	} {
		if len(k.slots) > 0 && c.Kind != k.kind {
			v.add(c.ID, "slots", fmt.Sprintf("%s carries %s entries", c.Kind, k.kind.SlotKey()))
		}
	}
	for _, s := range c.Slots() {
		if s == nil {
			v.add(c.ID, "nil", "nil slot")
			continue
		}
		v.id(s.ID, kindSlotName(c.Kind))
	}
}

func (v *validator) properties(c *domain.Component) {
	if !c.Kind.Valid() {
		return
	}
	for _, e := range schema.ValidationErrors(schema.Check(v.kinds.ForKind(c.Kind), c.Properties)) {
		v.add(c.ID, "property", fmt.Sprintf("%s: %s", e.Key, e.Reason))
	}
}

func kindSlotName(k domain.Kind) string {
	switch k {
	case domain.KindAccordion:
		return "panel"
	case domain.KindStepper:
		return "step"
	}
	return "tab"
}

// columns reads a Section's column count from its properties.
func columns(section *domain.Component) (int, bool) {
	switch n := section.Properties[domain.PropColumns].(type) {
	case int:
		return n, n > 0
	case float64:
		return int(n), n > 0
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		return parsed, err == nil && parsed > 0
	}
	return 0, false
}
