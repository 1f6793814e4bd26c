package tree

import "github.com/aretw0/formwork/pkg/domain"

// Location describes where a component currently lives.
type Location struct {
	Component *domain.Component
	// Parent is the component owning Target, nil for the root list.
	Parent *domain.Component
	Target domain.ContainerTarget
	// Index is the position of Component within Target's list.
	Index int
}

// Find returns the component with the given id, searching children and every nested
// collection depth-first.
func Find(forest []*domain.Component, id string) (*domain.Component, bool) {
	loc, ok := Locate(forest, id)
	if !ok {
		return nil, false
	}
	return loc.Component, true
}

// Locate returns the component with the given id together with its owning target and index.
//
// Children of a Section are reported under the plain ChildrenOf target with their absolute
// index; GridColumn is an addressing view over that same list.
func Locate(forest []*domain.Component, id string) (Location, bool) {
	if id == "" {
		return Location{}, false
	}
	return locateIn(forest, nil, domain.Root(), id)
}

func locateIn(list []*domain.Component, parent *domain.Component, target domain.ContainerTarget, id string) (Location, bool) {
	for i, c := range list {
		if c.ID == id {
			return Location{Component: c, Parent: parent, Target: target, Index: i}, true
		}
		if loc, ok := locateIn(c.Children, c, domain.ChildrenOf(c.ID), id); ok {
			return loc, true
		}
		for _, s := range c.Slots() {
			st, _ := domain.SlotTarget(c.Kind, c.ID, s.ID)
			if loc, ok := locateIn(s.Children, c, st, id); ok {
				return loc, true
			}
		}
	}
	return Location{}, false
}

// Walk visits every component depth-first in document order. Returning false from fn stops
// the walk.
func Walk(forest []*domain.Component, fn func(c *domain.Component) bool) {
	walk(forest, fn)
}

func walk(forest []*domain.Component, fn func(c *domain.Component) bool) bool {
	for _, c := range forest {
		if !fn(c) {
			return false
		}
		if !walk(c.Children, fn) {
			return false
		}
		for _, s := range c.Slots() {
			if !walk(s.Children, fn) {
				return false
			}
		}
	}
	return true
}

// ComponentIDs returns the id of every component in document order.
func ComponentIDs(forest []*domain.Component) []string {
	var out []string
	Walk(forest, func(c *domain.Component) bool {
		out = append(out, c.ID)
		return true
	})
	return out
}

// IDs returns every identifier in the forest: components and nested-collection entries.
func IDs(forest []*domain.Component) []string {
	var out []string
	Walk(forest, func(c *domain.Component) bool {
		out = append(out, c.ID)
		for _, s := range c.Slots() {
			out = append(out, s.ID)
		}
		return true
	})
	return out
}

// Contains reports whether id names root itself, one of its descendants, or one of the
// nested-collection entries inside its subtree.
func Contains(root *domain.Component, id string) bool {
	if root == nil || id == "" {
		return false
	}
	found := false
	Walk([]*domain.Component{root}, func(c *domain.Component) bool {
		if c.ID == id {
			found = true
			return false
		}
		for _, s := range c.Slots() {
			if s.ID == id {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
