package designer

import (
	"slices"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
)

// Select makes id the sole selection.
func (s *Store) Select(id string) bool {
	if _, ok := tree.Find(s.forest, id); !ok {
		return s.skip("select", "unknown component", "id", id)
	}
	s.change("select", func() {
		s.selected = []string{id}
		s.primary = id
	})
	return true
}

// SetSelection replaces the selection. Unknown and repeated ids are dropped. The primary
// defaults to the last selected id when primary is empty or not part of ids.
func (s *Store) SetSelection(ids []string, primary string) bool {
	var next []string
	for _, id := range ids {
		if slices.Contains(next, id) {
			continue
		}
		if _, ok := tree.Find(s.forest, id); ok {
			next = append(next, id)
		}
	}
	if !slices.Contains(next, primary) {
		primary = ""
		if len(next) > 0 {
			primary = next[len(next)-1]
		}
	}
	s.change("setSelection", func() {
		s.selected = next
		s.primary = primary
	})
	return true
}

// Toggle adds id to the selection, or removes it when already selected. Toggling in makes id
// the primary; toggling out the primary promotes the last remaining selected id.
func (s *Store) Toggle(id string) bool {
	if i := slices.Index(s.selected, id); i >= 0 {
		s.change("toggle", func() {
			s.selected = slices.Delete(slices.Clone(s.selected), i, i+1)
			if s.primary == id {
				s.primary = ""
				if n := len(s.selected); n > 0 {
					s.primary = s.selected[n-1]
				}
			}
		})
		return true
	}
	if _, ok := tree.Find(s.forest, id); !ok {
		return s.skip("toggle", "unknown component", "id", id)
	}
	s.change("toggle", func() {
		s.selected = append(slices.Clone(s.selected), id)
		s.primary = id
	})
	return true
}

// AddToSelection appends id to the selection if absent and makes it the primary.
func (s *Store) AddToSelection(id string) bool {
	if _, ok := tree.Find(s.forest, id); !ok {
		return s.skip("addToSelection", "unknown component", "id", id)
	}
	s.change("addToSelection", func() {
		if !slices.Contains(s.selected, id) {
			s.selected = append(slices.Clone(s.selected), id)
		}
		s.primary = id
	})
	return true
}

// ClearSelection empties the selection.
func (s *Store) ClearSelection() bool {
	if len(s.selected) == 0 {
		return false
	}
	s.change("clearSelection", func() {
		s.selected = nil
		s.primary = ""
	})
	return true
}

// SelectAll selects every root-level component in document order.
func (s *Store) SelectAll() bool {
	if len(s.forest) == 0 {
		return s.skip("selectAll", "empty document")
	}
	s.change("selectAll", func() {
		s.selected = make([]string, len(s.forest))
		for i, c := range s.forest {
			s.selected[i] = c.ID
		}
		s.primary = s.selected[len(s.selected)-1]
	})
	return true
}

// selectedComponents resolves the selection in selection order.
func (s *Store) selectedComponents() []*domain.Component {
	out := make([]*domain.Component, 0, len(s.selected))
	for _, id := range s.selected {
		if c, ok := tree.Find(s.forest, id); ok {
			out = append(out, c)
		}
	}
	return out
}
