package designer

import (
	"slices"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
)

// DragPayload is what an in-progress drag carries: an existing component, or the data of a
// new component dragged from a palette.
type DragPayload struct {
	ComponentID string            `json:"componentId,omitempty" mapstructure:"componentId"`
	Component   *domain.Component `json:"component,omitempty" mapstructure:"-"`
}

// DropTarget is the list and index a drop would land on.
type DropTarget struct {
	Target domain.ContainerTarget `json:"target" mapstructure:"target"`
	Index  int                    `json:"index" mapstructure:"index"`
}

// SnapGuide is an alignment hint line drawn by the renderer while dragging.
type SnapGuide struct {
	Axis     Axis    `json:"axis" mapstructure:"axis"`
	Position float64 `json:"position" mapstructure:"position"`
}

// BeginDrag records the drag payload. Dragging an unknown or locked component is refused.
func (s *Store) BeginDrag(payload DragPayload) bool {
	switch {
	case payload.ComponentID != "":
		c, ok := tree.Find(s.forest, payload.ComponentID)
		if !ok {
			return s.skip("beginDrag", "unknown component", "id", payload.ComponentID)
		}
		if c.Locked {
			return s.skip("beginDrag", "locked", "id", payload.ComponentID)
		}
		payload.Component = nil
	case payload.Component == nil || !payload.Component.Kind.Valid():
		return s.skip("beginDrag", "empty payload")
	}
	s.change("beginDrag", func() {
		s.drag = &payload
	})
	return true
}

// SetHover records the hovered component. An empty id clears it.
func (s *Store) SetHover(id string) bool {
	if id != "" {
		if _, ok := tree.Find(s.forest, id); !ok {
			return s.skip("setHover", "unknown component", "id", id)
		}
	}
	if s.hover == id {
		return false
	}
	s.change("setHover", func() {
		s.hover = id
	})
	return true
}

// SetDropTarget records where the current drag would land. A nil target clears it.
func (s *Store) SetDropTarget(target *domain.ContainerTarget, index int) bool {
	if target == nil {
		if s.drop == nil {
			return false
		}
		s.change("setDropTarget", func() {
			s.drop = nil
		})
		return true
	}
	if _, ok := tree.ChildrenFor(s.forest, *target); !ok {
		return s.skip("setDropTarget", "target does not resolve", "target", *target)
	}
	s.change("setDropTarget", func() {
		s.drop = &DropTarget{Target: *target, Index: index}
	})
	return true
}

// SetSnapGuides replaces the snap guide hints.
func (s *Store) SetSnapGuides(guides []SnapGuide) bool {
	if len(guides) == 0 && len(s.guides) == 0 {
		return false
	}
	s.change("setSnapGuides", func() {
		s.guides = slices.Clone(guides)
	})
	return true
}

// CancelDrag abandons the drag and clears every drag transient. The forest is untouched.
func (s *Store) CancelDrag() bool {
	if s.drag == nil && s.drop == nil && len(s.guides) == 0 {
		return false
	}
	s.change("cancelDrag", s.clearDrag)
	return true
}

// Drop commits the drag payload onto the current drop target: an existing component is
// relocated with MoveTo and a palette component is added. Drag transients are cleared in
// every case. It returns the id of the dropped component.
func (s *Store) Drop() (string, bool) {
	payload, drop := s.drag, s.drop
	if payload == nil || drop == nil {
		s.skip("drop", "no drag in progress")
		return "", false
	}
	s.clearDrag()

	var id string
	if payload.ComponentID != "" {
		if s.MoveTo(payload.ComponentID, drop.Target, drop.Index) {
			id = payload.ComponentID
		}
	} else {
		id = s.Add(payload.Component, drop.Target, drop.Index)
	}
	if id == "" {
		// The drag still ended; listeners hear about it with an unchanged document.
		s.change("drop", func() {})
		return "", false
	}
	return id, true
}

func (s *Store) clearDrag() {
	s.drag = nil
	s.drop = nil
	s.guides = nil
}
