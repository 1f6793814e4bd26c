package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Definition is the serializable unit exchanged at the load/save boundary.
type Definition struct {
	Version    int          `json:"version"`
	Components []*Component `json:"components"`
	CanvasSize Size         `json:"canvasSize"`
	Zoom       float64      `json:"zoom"`
}

// DefaultDefinition returns the empty document used when a definition is missing or malformed.
func DefaultDefinition() Definition {
	return Definition{
		Version:    DefinitionVersion,
		CanvasSize: Size{Width: DefaultCanvasWidth, Height: DefaultCanvasHeight},
		Zoom:       DefaultZoom,
	}
}

// DeepCopy returns a definition sharing no memory with d.
func (d *Definition) DeepCopy() *Definition {
	if d == nil {
		return nil
	}
	out := *d
	out.Components = DeepCopyForest(d.Components)
	return &out
}

// MarshalJSON always emits the components list, even when empty.
func (d Definition) MarshalJSON() ([]byte, error) {
	type alias Definition
	out := alias(d)
	if out.Components == nil {
		out.Components = []*Component{}
	}
	return json.Marshal(out)
}

// DecodeDefinition strictly decodes a definition. Missing fields take their defaults.
// A bare JSON array is accepted as the legacy component list.
func DecodeDefinition(data []byte) (Definition, error) {
	def := DefaultDefinition()
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return def, fmt.Errorf("empty definition")
	}

	if trimmed[0] == '[' {
		var components []*Component
		if err := json.Unmarshal(trimmed, &components); err != nil {
			return def, fmt.Errorf("failed to decode legacy component list: %w", err)
		}
		def.Components = compactForest(components)
		return def, nil
	}

	var raw struct {
		Version    *int         `json:"version"`
		Components []*Component `json:"components"`
		CanvasSize *Size        `json:"canvasSize"`
		Zoom       *float64     `json:"zoom"`
	}
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return def, fmt.Errorf("failed to decode definition: %w", err)
	}

	if raw.Version != nil && *raw.Version > 0 {
		def.Version = *raw.Version
	}
	def.Components = compactForest(raw.Components)
	if raw.CanvasSize != nil && raw.CanvasSize.Width > 0 && raw.CanvasSize.Height > 0 {
		def.CanvasSize = *raw.CanvasSize
	}
	if raw.Zoom != nil && *raw.Zoom > 0 {
		def.Zoom = *raw.Zoom
	}
	return def, nil
}

// ParseDefinition decodes a definition and never fails: unrecognized input yields the
// default empty document.
func ParseDefinition(data []byte) Definition {
	def, err := DecodeDefinition(data)
	if err != nil {
		return DefaultDefinition()
	}
	return def
}

func compactForest(forest []*Component) []*Component {
	out := forest[:0:0]
	for _, c := range forest {
		if c != nil {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

type wireComponent struct {
	ID         string         `json:"id"`
	Type       Kind           `json:"type"`
	Position   Point          `json:"position"`
	Size       Size           `json:"size"`
	Properties map[string]any `json:"properties,omitempty"`
	Children   []*Component   `json:"children,omitempty"`
	Column     *int           `json:"column,omitempty"`
	Locked     bool           `json:"locked,omitempty"`
	Hidden     bool           `json:"hidden,omitempty"`
	ParentID   string         `json:"parentId,omitempty"`
}

type wireSlot struct {
	ID       string       `json:"id"`
	Title    string       `json:"title,omitempty"`
	Label    string       `json:"label,omitempty"`
	Children []*Component `json:"children"`
}

// MarshalJSON folds the typed slot collection back into the property bag under the
// kind-specific key.
func (c Component) MarshalJSON() ([]byte, error) {
	w := wireComponent{
		ID:       c.ID,
		Type:     c.Kind,
		Position: c.Position,
		Size:     c.Size,
		Children: c.Children,
		Column:   c.Column,
		Locked:   c.Locked,
		Hidden:   c.Hidden,
		ParentID: c.ParentID,
	}

	props := make(map[string]any, len(c.Properties)+1)
	for k, v := range c.Properties {
		props[k] = v
	}
	if key := c.Kind.SlotKey(); key != "" {
		delete(props, key)
		if slots := c.Slots(); slots != nil {
			wire := make([]wireSlot, len(slots))
			for i, s := range slots {
				ws := wireSlot{ID: s.ID, Children: s.Children}
				if ws.Children == nil {
					ws.Children = []*Component{}
				}
				if c.Kind == KindTabs {
					ws.Label = s.Title
				} else {
					ws.Title = s.Title
				}
				wire[i] = ws
			}
			props[key] = wire
		}
	}
	if len(props) > 0 {
		w.Properties = props
	}
	return json.Marshal(w)
}

// UnmarshalJSON extracts the kind-specific nested collection out of the property bag.
func (c *Component) UnmarshalJSON(data []byte) error {
	var w struct {
		wireComponent
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*c = Component{
		ID:       w.ID,
		Kind:     w.Type,
		Position: w.Position,
		Size:     w.Size,
		Children: compactForest(w.Children),
		Column:   w.Column,
		Locked:   w.Locked,
		Hidden:   w.Hidden,
		ParentID: w.ParentID,
	}

	slotKey := c.Kind.SlotKey()
	props := make(map[string]any, len(w.Properties))
	for key, raw := range w.Properties {
		if key == slotKey {
			var wire []wireSlot
			if err := json.Unmarshal(raw, &wire); err != nil {
				return fmt.Errorf("property %s: %w", key, err)
			}
			slots := make([]*Slot, len(wire))
			for i, ws := range wire {
				title := ws.Title
				if title == "" {
					title = ws.Label
				}
				slots[i] = &Slot{ID: ws.ID, Title: title, Children: compactForest(ws.Children)}
			}
			c.SetSlots(slots)
			continue
		}
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			return fmt.Errorf("property %s: %w", key, err)
		}
		props[key] = v
	}
	if len(props) > 0 {
		c.Properties = props
	}
	return nil
}
