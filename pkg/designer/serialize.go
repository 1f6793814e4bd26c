package designer

import (
	"github.com/aretw0/formwork/pkg/domain"
)

// Save returns the live document as an independent definition.
func (s *Store) Save() domain.Definition {
	return domain.Definition{
		Version:    domain.DefinitionVersion,
		Components: domain.DeepCopyForest(s.forest),
		CanvasSize: s.canvas,
		Zoom:       s.zoom,
	}
}

// Load replaces the whole document and clears selection, hover and drag state.
//
// The definition is normalized on the way in: missing or empty ids and ids already used
// elsewhere in the document are regenerated; a legacy flat list whose entries carry parent
// references is nested (entries whose parent does not exist, or whose parent chain loops
// back to themselves, stay at the root); column tags outside Sections are dropped; canvas
// size and zoom fall back to their defaults.
func (s *Store) Load(def domain.Definition) {
	forest := domain.DeepCopyForest(def.Components)
	forest = s.uniqueIDs(forest, make(map[string]bool))
	forest = nestLegacy(forest)
	forest = normalize(forest, "")

	canvas := def.CanvasSize
	if canvas.Width <= 0 || canvas.Height <= 0 {
		canvas = domain.Size{Width: domain.DefaultCanvasWidth, Height: domain.DefaultCanvasHeight}
	}
	zoom := def.Zoom
	if zoom <= 0 {
		zoom = domain.DefaultZoom
	}

	s.change("load", func() {
		s.forest = forest
		s.canvas = canvas
		s.zoom = clampZoom(zoom)
		s.selected = nil
		s.primary = ""
		s.hover = ""
		s.clearDrag()
	})
}

// uniqueIDs assigns fresh ids to empty and repeated ids, components and slots alike.
// The first occurrence in document order keeps its id. Nil entries are dropped.
func (s *Store) uniqueIDs(forest []*domain.Component, seen map[string]bool) []*domain.Component {
	var out []*domain.Component
	for _, c := range forest {
		if c == nil {
			continue
		}
		if c.ID == "" || seen[c.ID] {
			c.ID = s.newID()
		}
		seen[c.ID] = true
		c.Children = s.uniqueIDs(c.Children, seen)
		for _, sl := range c.Slots() {
			if sl.ID == "" || seen[sl.ID] {
				sl.ID = s.newID()
			}
			seen[sl.ID] = true
		}
		for _, sl := range c.Slots() {
			sl.Children = s.uniqueIDs(sl.Children, seen)
		}
		out = append(out, c)
	}
	return out
}

// nestLegacy re-parents root entries that carry a parent reference. The reference may name a
// component or a panel, step or tab. The forest is owned by the caller and edited in place.
func nestLegacy(forest []*domain.Component) []*domain.Component {
	legacy := false
	for _, c := range forest {
		if c.ParentID != "" {
			legacy = true
			break
		}
	}
	if !legacy {
		return forest
	}

	// rootOf maps every id (components and slots) to the root entry whose subtree holds it.
	rootOf := make(map[string]string)
	components := make(map[string]*domain.Component)
	slots := make(map[string]*domain.Slot)
	var index func(list []*domain.Component, root string)
	index = func(list []*domain.Component, root string) {
		for _, c := range list {
			r := root
			if r == "" {
				r = c.ID
			}
			rootOf[c.ID] = r
			components[c.ID] = c
			index(c.Children, r)
			for _, sl := range c.Slots() {
				rootOf[sl.ID] = r
				slots[sl.ID] = sl
				index(sl.Children, r)
			}
		}
	}
	index(forest, "")

	parent := make(map[string]string, len(forest))
	for _, c := range forest {
		parent[c.ID] = c.ParentID
	}

	var roots []*domain.Component
	for _, c := range forest {
		p := c.ParentID
		if p == "" || rootOf[p] == "" || loops(c.ID, p, parent, rootOf) {
			parent[c.ID] = ""
			roots = append(roots, c)
			continue
		}
		if sl, ok := slots[p]; ok {
			sl.Children = append(sl.Children, c)
		} else {
			owner := components[p]
			owner.Children = append(owner.Children, c)
		}
	}
	return roots
}

// loops reports whether attaching id under parentID would make id its own ancestor.
func loops(id, parentID string, parent, rootOf map[string]string) bool {
	seen := make(map[string]bool)
	for p := parentID; p != ""; {
		r := rootOf[p]
		if r == id {
			return true
		}
		if seen[r] {
			// A loop among other entries; it is broken when those entries are placed.
			return false
		}
		seen[r] = true
		p = parent[r]
	}
	return false
}

// normalize clears parent references and stray column tags and turns empty collections
// into nil.
func normalize(list []*domain.Component, owner domain.Kind) []*domain.Component {
	if len(list) == 0 {
		return nil
	}
	for _, c := range list {
		c.ParentID = ""
		if owner != domain.KindSection {
			c.Column = nil
		}
		if len(c.Properties) == 0 {
			c.Properties = nil
		}
		c.Children = normalize(c.Children, c.Kind)
		slots := c.Slots()
		c.Panels, c.Steps, c.Tabs = nil, nil, nil
		if len(slots) > 0 {
			for _, sl := range slots {
				sl.Children = normalize(sl.Children, "")
			}
			c.SetSlots(slots)
		}
	}
	return list
}
