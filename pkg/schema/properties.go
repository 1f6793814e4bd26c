package schema

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"

	"github.com/aretw0/formwork/pkg/domain"
)

// Kinds maps component kinds to the schema of their own properties.
type Kinds map[domain.Kind]Schema

// common applies to every kind.
var common = Schema{
	"label":       String(),
	"title":       String(),
	"text":        String(),
	"placeholder": String(),
	"opacity":     Float(),
	"tabIndex":    Int(),
}

var layout = OneOf(domain.LayoutAbsolute, domain.LayoutFlex, domain.LayoutGrid)

var defaults = Kinds{
	domain.KindSection:   {domain.PropColumns: Count()},
	domain.KindContainer: {domain.PropLayout: layout, domain.PropIsGroup: Bool()},
	domain.KindCard:      {domain.PropLayout: layout},
	domain.KindFlex:      {domain.PropLayout: layout},
	domain.KindInput:     {"required": Bool(), "inputType": String(), "maxLength": Int()},
	domain.KindTextArea:  {"rows": Count(), "maxLength": Int()},
	domain.KindCheckbox:  {"checked": Bool()},
	domain.KindSelect:    {"multiple": Bool(), "options": Slice(String())},
	domain.KindImage:     {"src": String(), "alt": String()},
}

// Defaults returns the built-in per-kind schemas.
func Defaults() Kinds {
	out := make(Kinds, len(defaults))
	for k, s := range defaults {
		out[k] = maps.Clone(s)
	}
	return out
}

// Merge returns k with the overrides applied key by key on top.
func (k Kinds) Merge(overrides Kinds) Kinds {
	out := make(Kinds, len(k)+len(overrides))
	for kind, s := range k {
		out[kind] = maps.Clone(s)
	}
	for kind, s := range overrides {
		if out[kind] == nil {
			out[kind] = make(Schema, len(s))
		}
		maps.Copy(out[kind], s)
	}
	return out
}

// ForKind returns the property schema of a kind: the common properties plus the
// kind's own. Unknown kinds get the common schema.
func (k Kinds) ForKind(kind domain.Kind) Schema {
	out := maps.Clone(common)
	maps.Copy(out, k[kind])
	return out
}

// All returns the full schema of every known kind.
func (k Kinds) All() map[domain.Kind]Schema {
	out := make(map[domain.Kind]Schema, len(domain.Kinds()))
	for _, kind := range domain.Kinds() {
		out[kind] = k.ForKind(kind)
	}
	return out
}

// ForKind returns the built-in schema of a kind.
func ForKind(kind domain.Kind) Schema {
	return Kinds(defaults).ForKind(kind)
}

// All returns the built-in schema of every known kind.
func All() map[domain.Kind]Schema {
	return Kinds(defaults).All()
}

// LoadKinds reads per-kind overrides from a JSON file shaped like
// {"Select": {"options": "[string]"}, "Input": {"maxLength": "int"}}
// and merges them over the defaults. An empty path yields the defaults.
func LoadKinds(path string) (Kinds, error) {
	if path == "" {
		return Defaults(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file: %w", err)
	}
	var overrides Kinds
	if err := json.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	for kind := range overrides {
		if !kind.Valid() {
			return nil, fmt.Errorf("schema file %s: unknown kind %q", path, kind)
		}
	}
	return Defaults().Merge(overrides), nil
}
