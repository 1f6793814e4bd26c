package designer

import (
	"cmp"
	"math"
	"slices"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
)

// AlignMode selects the edge or center line used by Align.
type AlignMode string

const (
	AlignLeft   AlignMode = "left"
	AlignCenter AlignMode = "center"
	AlignRight  AlignMode = "right"
	AlignTop    AlignMode = "top"
	AlignMiddle AlignMode = "middle"
	AlignBottom AlignMode = "bottom"
)

// SizeMode selects the dimensions copied by MatchSizes.
type SizeMode string

const (
	SizeWidth  SizeMode = "width"
	SizeHeight SizeMode = "height"
	SizeBoth   SizeMode = "size"
)

// Axis selects the direction of Distribute and EqualizeSpacing.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Snap rounds v to the nearest multiple of size. A non-positive size returns v unchanged.
func Snap(v, size float64) float64 {
	if size <= 0 {
		return v
	}
	return math.Round(v/size) * size
}

func (s *Store) snap(v float64) float64 {
	if !s.grid.Snap {
		return v
	}
	return Snap(v, s.grid.Size)
}

func (s *Store) snapPoint(p domain.Point) domain.Point {
	return domain.Point{X: s.snap(p.X), Y: s.snap(p.Y)}
}

// siblingGroup is the part of the selection that shares one parent target.
type siblingGroup struct {
	target  domain.ContainerTarget
	parent  *domain.Component
	members []*domain.Component
}

// flow reports whether the group lives in a parent that ignores absolute positions.
func (g siblingGroup) flow() bool {
	return g.parent != nil && g.parent.IsFlowLayout()
}

func (g siblingGroup) unlocked() []*domain.Component {
	var out []*domain.Component
	for _, c := range g.members {
		if !c.Locked {
			out = append(out, c)
		}
	}
	return out
}

// selectionGroups partitions the selection by parent target, in order of first appearance.
// Members keep selection order.
func (s *Store) selectionGroups() []*siblingGroup {
	var groups []*siblingGroup
	index := make(map[string]*siblingGroup)
	for _, id := range s.selected {
		loc, ok := tree.Locate(s.forest, id)
		if !ok {
			continue
		}
		key := loc.Target.Key()
		g, ok := index[key]
		if !ok {
			g = &siblingGroup{target: loc.Target, parent: loc.Parent}
			index[key] = g
			groups = append(groups, g)
		}
		g.members = append(g.members, loc.Component)
	}
	return groups
}

// anchorOf returns the primary when it belongs to members, otherwise the last member.
func (s *Store) anchorOf(members []*domain.Component) *domain.Component {
	for _, c := range members {
		if c.ID == s.primary {
			return c
		}
	}
	return members[len(members)-1]
}

// placeAll writes the given positions and commits when at least one component moved.
func (s *Store) placeAll(command string, positions map[string]domain.Point) bool {
	forest := s.forest
	moved := false
	for id, p := range positions {
		forest, _ = tree.Replace(forest, id, func(c *domain.Component) *domain.Component {
			if c.Position == p {
				return nil
			}
			moved = true
			next := c.Copy()
			next.Position = p
			return next
		})
	}
	if !moved {
		return s.skip(command, "nothing to move")
	}
	return s.commit(command, forest)
}

// Align lines up the selected siblings of every parent target against that target's anchor.
// Locked members count as anchors but never move; members of flow-layout parents are ignored.
func (s *Store) Align(mode AlignMode) bool {
	switch mode {
	case AlignLeft, AlignCenter, AlignRight, AlignTop, AlignMiddle, AlignBottom:
	default:
		return s.skip("align", "unknown mode", "mode", mode)
	}
	positions := make(map[string]domain.Point)
	for _, g := range s.selectionGroups() {
		if g.flow() || len(g.members) < 2 {
			continue
		}
		a := s.anchorOf(g.members)
		for _, m := range g.members {
			if m.ID == a.ID || m.Locked {
				continue
			}
			p := m.Position
			switch mode {
			case AlignLeft:
				p.X = s.snap(a.Position.X)
			case AlignCenter:
				p.X = s.snap(a.Position.X + a.Size.Width/2 - m.Size.Width/2)
			case AlignRight:
				p.X = s.snap(a.Position.X + a.Size.Width - m.Size.Width)
			case AlignTop:
				p.Y = s.snap(a.Position.Y)
			case AlignMiddle:
				p.Y = s.snap(a.Position.Y + a.Size.Height/2 - m.Size.Height/2)
			case AlignBottom:
				p.Y = s.snap(a.Position.Y + a.Size.Height - m.Size.Height)
			}
			positions[m.ID] = p
		}
	}
	return s.placeAll("align", positions)
}

// MatchSizes copies the anchor's width, height or both onto every other unlocked selected
// component. The anchor is the primary, or the last selected component.
func (s *Store) MatchSizes(mode SizeMode) bool {
	members := s.selectedComponents()
	if len(members) < 2 {
		return s.skip("matchSizes", "fewer than two selected")
	}
	switch mode {
	case SizeWidth, SizeHeight, SizeBoth:
	default:
		return s.skip("matchSizes", "unknown mode", "mode", mode)
	}
	a := s.anchorOf(members)
	forest := s.forest
	changed := false
	for _, m := range members {
		if m.ID == a.ID || m.Locked {
			continue
		}
		size := m.Size
		if mode == SizeWidth || mode == SizeBoth {
			size.Width = a.Size.Width
		}
		if mode == SizeHeight || mode == SizeBoth {
			size.Height = a.Size.Height
		}
		if size == m.Size {
			continue
		}
		changed = true
		forest, _ = tree.Replace(forest, m.ID, func(c *domain.Component) *domain.Component {
			next := c.Copy()
			next.Size = size
			return next
		})
	}
	if !changed {
		return s.skip("matchSizes", "sizes already match")
	}
	return s.commit("matchSizes", forest)
}

// span projects a component onto an axis: leading edge and extent.
func span(c *domain.Component, axis Axis) (lead, extent float64) {
	if axis == Vertical {
		return c.Position.Y, c.Size.Height
	}
	return c.Position.X, c.Size.Width
}

func withLead(p domain.Point, axis Axis, lead float64) domain.Point {
	if axis == Vertical {
		p.Y = lead
	} else {
		p.X = lead
	}
	return p
}

// distributable returns the unlocked members of every absolute sibling group with at least
// three of them.
func (s *Store) distributable() [][]*domain.Component {
	var out [][]*domain.Component
	for _, g := range s.selectionGroups() {
		if g.flow() {
			continue
		}
		if members := g.unlocked(); len(members) >= 3 {
			out = append(out, members)
		}
	}
	return out
}

// Distribute spaces the centers of every group of three or more unlocked siblings evenly
// between the two extreme members, which stay in place.
func (s *Store) Distribute(axis Axis) bool {
	if axis != Horizontal && axis != Vertical {
		return s.skip("distribute", "unknown axis", "axis", axis)
	}
	positions := make(map[string]domain.Point)
	for _, members := range s.distributable() {
		center := func(c *domain.Component) float64 {
			lead, extent := span(c, axis)
			return lead + extent/2
		}
		sorted := slices.Clone(members)
		slices.SortStableFunc(sorted, func(a, b *domain.Component) int {
			return cmp.Compare(center(a), center(b))
		})
		n := len(sorted)
		first, last := center(sorted[0]), center(sorted[n-1])
		total := last - first
		if total == 0 {
			continue
		}
		for i := 1; i < n-1; i++ {
			c := sorted[i]
			_, extent := span(c, axis)
			target := first + total*float64(i)/float64(n-1)
			positions[c.ID] = withLead(c.Position, axis, s.snap(target-extent/2))
		}
	}
	return s.placeAll("distribute", positions)
}

// EqualizeSpacing keeps the outer members of every group of three or more unlocked siblings
// and places the interior members edge to edge with one uniform gap.
func (s *Store) EqualizeSpacing(axis Axis) bool {
	if axis != Horizontal && axis != Vertical {
		return s.skip("equalizeSpacing", "unknown axis", "axis", axis)
	}
	positions := make(map[string]domain.Point)
	for _, members := range s.distributable() {
		sorted := slices.Clone(members)
		slices.SortStableFunc(sorted, func(a, b *domain.Component) int {
			la, _ := span(a, axis)
			lb, _ := span(b, axis)
			return cmp.Compare(la, lb)
		})
		n := len(sorted)
		firstLead, firstExtent := span(sorted[0], axis)
		lastLead, _ := span(sorted[n-1], axis)
		inner := lastLead - (firstLead + firstExtent)
		for _, c := range sorted[1 : n-1] {
			_, extent := span(c, axis)
			inner -= extent
		}
		gap := inner / float64(n-1)
		cursor := firstLead + firstExtent + gap
		for _, c := range sorted[1 : n-1] {
			_, extent := span(c, axis)
			positions[c.ID] = withLead(c.Position, axis, s.snap(cursor))
			cursor += extent + gap
		}
	}
	return s.placeAll("equalizeSpacing", positions)
}
