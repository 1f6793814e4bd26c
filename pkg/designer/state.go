package designer

import (
	"slices"

	"github.com/aretw0/formwork/pkg/domain"
)

// State is a snapshot of the document and its transient editing state, as consumed by a
// canvas renderer.
type State struct {
	Document   domain.Definition `json:"document"`
	Selection  Selection         `json:"selection"`
	Hover      string            `json:"hover,omitempty"`
	Drag       *DragPayload      `json:"drag,omitempty"`
	DropTarget *DropTarget       `json:"dropTarget,omitempty"`
	SnapGuides []SnapGuide       `json:"snapGuides,omitempty"`
	Grid       GridSettings      `json:"grid"`
}

// State returns a snapshot. The document shares component values with the store.
func (s *Store) State() State {
	st := State{
		Document:   s.definition(),
		Selection:  s.Selection(),
		Hover:      s.hover,
		SnapGuides: slices.Clone(s.guides),
		Grid:       s.grid,
	}
	if s.drag != nil {
		d := *s.drag
		st.Drag = &d
	}
	if s.drop != nil {
		d := *s.drop
		st.DropTarget = &d
	}
	return st
}
