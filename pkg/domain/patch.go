package domain

// ComponentPatch carries partial changes to a component's own fields. It never moves the
// component nor touches its children or slots.
type ComponentPatch struct {
	Position *Point `json:"position,omitempty" mapstructure:"position"`
	Size     *Size  `json:"size,omitempty" mapstructure:"size"`

	// Properties are merged key by key. A nil value deletes the key.
	Properties map[string]any `json:"properties,omitempty" mapstructure:"properties"`

	Column *int  `json:"column,omitempty" mapstructure:"column"`
	Locked *bool `json:"locked,omitempty" mapstructure:"locked"`
	Hidden *bool `json:"hidden,omitempty" mapstructure:"hidden"`
}

// IsEmpty reports whether the patch carries no change.
func (p ComponentPatch) IsEmpty() bool {
	return p.Position == nil && p.Size == nil && len(p.Properties) == 0 &&
		p.Column == nil && p.Locked == nil && p.Hidden == nil
}

// Apply returns a copy of c with the patch merged in. Slot-collection keys are ignored in
// Properties since slots are edited through dedicated commands.
func (p ComponentPatch) Apply(c *Component) *Component {
	next := c.Copy()
	if p.Position != nil {
		next.Position = *p.Position
	}
	if p.Size != nil {
		next.Size = *p.Size
	}
	if len(p.Properties) > 0 {
		if next.Properties == nil {
			next.Properties = make(map[string]any, len(p.Properties))
		}
		slotKey := c.Kind.SlotKey()
		for k, v := range p.Properties {
			if k == slotKey && slotKey != "" {
				continue
			}
			if v == nil {
				delete(next.Properties, k)
				continue
			}
			next.Properties[k] = v
		}
		if len(next.Properties) == 0 {
			next.Properties = nil
		}
	}
	if p.Column != nil {
		col := *p.Column
		next.Column = &col
	}
	if p.Locked != nil {
		next.Locked = *p.Locked
	}
	if p.Hidden != nil {
		next.Hidden = *p.Hidden
	}
	return next
}
