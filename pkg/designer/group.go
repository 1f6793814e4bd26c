package designer

import (
	"math"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
)

// Group wraps the selection in a new group container placed at the members' bounding box.
// All members must share one absolute parent target. Members keep their stacking order and
// their positions are translated into the container's coordinate space. The container takes
// the list position of the earliest member and becomes the sole selection.
func (s *Store) Group() string {
	if len(s.selected) < 2 {
		s.skip("group", "fewer than two selected")
		return ""
	}
	groups := s.selectionGroups()
	if len(groups) != 1 {
		s.skip("group", "selection spans several parents")
		return ""
	}
	g := groups[0]
	if g.flow() {
		s.skip("group", "flow-layout parent", "target", g.target)
		return ""
	}
	if len(g.members) < 2 {
		s.skip("group", "fewer than two selected")
		return ""
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	selected := make(map[string]bool, len(g.members))
	for _, m := range g.members {
		selected[m.ID] = true
		minX = min(minX, m.Position.X)
		minY = min(minY, m.Position.Y)
		maxX = max(maxX, m.Position.X+m.Size.Width)
		maxY = max(maxY, m.Position.Y+m.Size.Height)
	}

	container := &domain.Component{
		ID:         s.newID(),
		Kind:       domain.KindContainer,
		Position:   domain.Point{X: minX, Y: minY},
		Size:       domain.Size{Width: maxX - minX, Height: maxY - minY},
		Properties: map[string]any{domain.PropIsGroup: true},
	}
	forest, ok := tree.ReplaceChildren(s.forest, g.target, func(list []*domain.Component) []*domain.Component {
		out := make([]*domain.Component, 0, len(list))
		for _, c := range list {
			if !selected[c.ID] {
				out = append(out, c)
				continue
			}
			if len(container.Children) == 0 {
				out = append(out, container)
			}
			child := c.Copy()
			child.Position = domain.Point{X: c.Position.X - minX, Y: c.Position.Y - minY}
			child.Column = nil
			container.Children = append(container.Children, child)
		}
		return out
	})
	if !ok {
		s.skip("group", "target does not resolve", "target", g.target)
		return ""
	}
	s.change("group", func() {
		s.forest = forest
		s.selected = []string{container.ID}
		s.primary = container.ID
	})
	return container.ID
}

// Ungroup dissolves every selected group container. Its children take its place in the
// parent list with their positions translated back by the group's offset; inside a Section
// they also take the group's column. The former children
// become the selection, the last one re-inserted being primary.
func (s *Store) Ungroup() bool {
	forest := s.forest
	var released []string
	dissolved := 0
	for _, id := range s.selected {
		loc, ok := tree.Locate(forest, id)
		if !ok || !loc.Component.IsGroup() {
			continue
		}
		group := loc.Component
		var column *int
		if group.Column != nil && loc.Parent != nil && loc.Parent.Kind == domain.KindSection && !loc.Target.IsSlot() {
			column = group.Column
		}
		next, ok := tree.ReplaceChildren(forest, loc.Target, func(list []*domain.Component) []*domain.Component {
			out := make([]*domain.Component, 0, len(list)+len(group.Children))
			for _, c := range list {
				if c.ID != group.ID {
					out = append(out, c)
					continue
				}
				for _, child := range group.Children {
					moved := child.Copy()
					moved.Position = domain.Point{
						X: child.Position.X + group.Position.X,
						Y: child.Position.Y + group.Position.Y,
					}
					moved.Column = nil
					if column != nil {
						moved.Column = domain.IntPtr(*column)
					}
					out = append(out, moved)
					released = append(released, moved.ID)
				}
			}
			return out
		})
		if ok {
			forest = next
			dissolved++
		}
	}
	if dissolved == 0 {
		return s.skip("ungroup", "no group selected")
	}
	s.change("ungroup", func() {
		s.forest = forest
		s.selected = released
		s.primary = ""
		if len(released) > 0 {
			s.primary = released[len(released)-1]
		}
	})
	return true
}
