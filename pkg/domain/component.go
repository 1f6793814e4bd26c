package domain

// Kind identifies the variant of a Component.
type Kind string

// Component kinds understood by the designer.
const (
	KindButton    Kind = "Button"
	KindText      Kind = "Text"
	KindLabel     Kind = "Label"
	KindInput     Kind = "Input"
	KindTextArea  Kind = "TextArea"
	KindSelect    Kind = "Select"
	KindCheckbox  Kind = "Checkbox"
	KindImage     Kind = "Image"
	KindDivider   Kind = "Divider"
	KindSection   Kind = "Section"
	KindAccordion Kind = "Accordion"
	KindStepper   Kind = "MultiInstanceStepper"
	KindTabs      Kind = "Page"
	KindContainer Kind = "Container"
	KindCard      Kind = "Card"
	KindFlex      Kind = "Flex"
)

var knownKinds = map[Kind]bool{
	KindButton: true, KindText: true, KindLabel: true, KindInput: true, KindTextArea: true,
	KindSelect: true, KindCheckbox: true, KindImage: true, KindDivider: true, KindSection: true,
	KindAccordion: true, KindStepper: true, KindTabs: true, KindContainer: true, KindCard: true,
	KindFlex: true,
}

// Kinds returns every known kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		KindButton, KindText, KindLabel, KindInput, KindTextArea, KindSelect, KindCheckbox,
		KindImage, KindDivider, KindSection, KindAccordion, KindStepper, KindTabs,
		KindContainer, KindCard, KindFlex,
	}
}

// Valid reports whether k belongs to the closed set of component kinds.
func (k Kind) Valid() bool {
	return knownKinds[k]
}

// SlotKey returns the property key under which the kind stores its nested collection,
// or "" when the kind has none.
func (k Kind) SlotKey() string {
	switch k {
	case KindAccordion:
		return PropPanels
	case KindStepper:
		return PropSteps
	case KindTabs:
		return PropTabs
	}
	return ""
}

// HasSlots reports whether components of this kind own a nested collection.
func (k Kind) HasSlots() bool {
	return k.SlotKey() != ""
}

// Point is a position on the canvas, relative to the owning container.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Size is the measured extent of a component.
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Slot is one entry of a nested collection: an accordion panel, a stepper step or a tab.
// Its ID shares the identifier space of components.
type Slot struct {
	ID       string
	Title    string
	Children []*Component
}

// Component is the atomic editable unit of a form.
//
// Components are treated as immutable values once they are part of a forest: every
// operation that changes one produces a copy along the modified path and leaves the
// original untouched, so subtrees may be shared between successive forests.
type Component struct {
	ID       string
	Kind     Kind
	Position Point
	Size     Size

	// Properties is the open attribute bag (styling, behaviour flags).
	// Nested collections are not stored here in memory; they live in the typed slot fields.
	Properties map[string]any

	Children []*Component

	// Column is set only for children of a Section, naming the grid column they occupy.
	Column *int

	Locked bool
	Hidden bool

	// Slot collections. Only the one matching Kind.SlotKey is meaningful.
	Panels []*Slot
	Steps  []*Slot
	Tabs   []*Slot

	// ParentID is only read from legacy flat definitions and cleared on load.
	ParentID string
}

// Slots returns the nested collection owned by the component's kind.
func (c *Component) Slots() []*Slot {
	switch c.Kind {
	case KindAccordion:
		return c.Panels
	case KindStepper:
		return c.Steps
	case KindTabs:
		return c.Tabs
	}
	return nil
}

// SetSlots replaces the nested collection owned by the component's kind.
// It is a no-op for kinds without slots.
func (c *Component) SetSlots(slots []*Slot) {
	switch c.Kind {
	case KindAccordion:
		c.Panels = slots
	case KindStepper:
		c.Steps = slots
	case KindTabs:
		c.Tabs = slots
	}
}

// Slot returns the slot with the given id.
func (c *Component) Slot(id string) (*Slot, bool) {
	for _, s := range c.Slots() {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// IsGroup reports whether the component is a synthetic group container.
func (c *Component) IsGroup() bool {
	if c.Kind != KindContainer {
		return false
	}
	v, _ := c.Properties[PropIsGroup].(bool)
	return v
}

// IsFlowLayout reports whether the component lays its children out by flow rather than by
// absolute position.
func (c *Component) IsFlowLayout() bool {
	switch c.Kind {
	case KindSection, KindCard, KindFlex:
		return true
	case KindContainer:
		layout, _ := c.Properties[PropLayout].(string)
		return layout == LayoutFlex || layout == LayoutGrid
	}
	return false
}

// Copy returns a copy of c that owns its slices and property map but shares descendants.
func (c *Component) Copy() *Component {
	cp := *c
	if c.Properties != nil {
		cp.Properties = make(map[string]any, len(c.Properties))
		for k, v := range c.Properties {
			cp.Properties[k] = v
		}
	}
	if c.Children != nil {
		cp.Children = append([]*Component(nil), c.Children...)
	}
	if c.Column != nil {
		col := *c.Column
		cp.Column = &col
	}
	cp.Panels = copySlots(c.Panels)
	cp.Steps = copySlots(c.Steps)
	cp.Tabs = copySlots(c.Tabs)
	return &cp
}

// DeepCopy returns a fully independent copy of the subtree rooted at c, ids included.
func (c *Component) DeepCopy() *Component {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Properties = CopyProperties(c.Properties)
	cp.Children = DeepCopyForest(c.Children)
	if c.Column != nil {
		col := *c.Column
		cp.Column = &col
	}
	cp.Panels = deepCopySlots(c.Panels)
	cp.Steps = deepCopySlots(c.Steps)
	cp.Tabs = deepCopySlots(c.Tabs)
	return &cp
}

// DeepCopyForest deep copies every component of a forest. A nil forest stays nil.
func DeepCopyForest(forest []*Component) []*Component {
	if forest == nil {
		return nil
	}
	out := make([]*Component, len(forest))
	for i, c := range forest {
		out[i] = c.DeepCopy()
	}
	return out
}

// CopyProperties deep copies a property bag, descending into nested maps and slices.
// An empty bag copies to nil, the form Load gives it.
func CopyProperties(props map[string]any) map[string]any {
	if len(props) == 0 {
		return nil
	}
	return copyMap(props)
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return copyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = copyValue(e)
		}
		return out
	case []string:
		return append([]string(nil), val...)
	}
	return v
}

func copySlots(slots []*Slot) []*Slot {
	if slots == nil {
		return nil
	}
	out := make([]*Slot, len(slots))
	copy(out, slots)
	return out
}

func deepCopySlots(slots []*Slot) []*Slot {
	if slots == nil {
		return nil
	}
	out := make([]*Slot, len(slots))
	for i, s := range slots {
		out[i] = &Slot{ID: s.ID, Title: s.Title, Children: DeepCopyForest(s.Children)}
	}
	return out
}

// IntPtr is a convenience for building Column tags.
func IntPtr(v int) *int {
	return &v
}
