package tree

import "github.com/aretw0/formwork/pkg/domain"

// InsertAt places c into target's list at index. An index outside [0, len] appends.
//
// For a GridColumn target, index is column-local: the component is inserted just before the
// column member currently at that index, or after the column's last member when appending,
// so children of other columns keep their positions. Inserting into any list that is not a
// Section's clears a stale column tag.
func InsertAt(forest []*domain.Component, target domain.ContainerTarget, c *domain.Component, index int) ([]*domain.Component, bool) {
	if c == nil {
		return forest, false
	}

	if target.Kind == domain.TargetGridColumn {
		owner, ok := Find(forest, target.ComponentID)
		if !ok || owner.Kind != domain.KindSection {
			return forest, false
		}
		abs := columnInsertIndex(owner.Children, target.Column, index)
		tagged := withColumn(c, target.Column)
		return ReplaceChildren(forest, domain.ChildrenOf(owner.ID), func(list []*domain.Component) []*domain.Component {
			return insert(list, tagged, abs)
		})
	}

	if c.Column != nil && !ownerIsSection(forest, target) {
		c = c.Copy()
		c.Column = nil
	}
	return ReplaceChildren(forest, target, func(list []*domain.Component) []*domain.Component {
		return insert(list, c, index)
	})
}

func ownerIsSection(forest []*domain.Component, target domain.ContainerTarget) bool {
	if target.Kind != domain.TargetChildren {
		return false
	}
	owner, ok := Find(forest, target.ComponentID)
	return ok && owner.Kind == domain.KindSection
}

func columnInsertIndex(children []*domain.Component, column, index int) int {
	seen := 0
	last := -1
	for i, c := range children {
		if columnOf(c) != column {
			continue
		}
		if seen == index {
			return i
		}
		seen++
		last = i
	}
	if last < 0 {
		return len(children)
	}
	return last + 1
}

func insert(list []*domain.Component, c *domain.Component, index int) []*domain.Component {
	if index < 0 || index > len(list) {
		index = len(list)
	}
	out := make([]*domain.Component, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, c)
	return append(out, list[index:]...)
}

// Extract removes the component with the given id from wherever it lives and returns the
// pruned forest together with the removed component. When the id does not exist the input
// forest is returned unchanged.
func Extract(forest []*domain.Component, id string) ([]*domain.Component, *domain.Component, bool) {
	if id == "" {
		return forest, nil, false
	}
	return extractFrom(forest, id)
}

func extractFrom(forest []*domain.Component, id string) ([]*domain.Component, *domain.Component, bool) {
	for i, c := range forest {
		if c.ID == id {
			out := make([]*domain.Component, 0, len(forest)-1)
			out = append(out, forest[:i]...)
			out = append(out, forest[i+1:]...)
			return compact(out), c, true
		}
		if next, removed, ok := extractWithin(c, id); ok {
			out := copyList(forest)
			out[i] = next
			return out, removed, true
		}
	}
	return forest, nil, false
}

func extractWithin(c *domain.Component, id string) (*domain.Component, *domain.Component, bool) {
	if children, removed, ok := extractFrom(c.Children, id); ok {
		next := c.Copy()
		next.Children = children
		return next, removed, true
	}
	for i, s := range c.Slots() {
		children, removed, ok := extractFrom(s.Children, id)
		if !ok {
			continue
		}
		next := c.Copy()
		next.Slots()[i] = &domain.Slot{ID: s.ID, Title: s.Title, Children: children}
		return next, removed, true
	}
	return c, nil, false
}

// Move extracts the component and inserts it into target at index.
//
// Move cannot tell on its own whether target lies inside the moved subtree: once extracted,
// such a target no longer resolves and the input forest is returned unchanged. Callers that
// need to distinguish that case check Contains against the pre-move forest.
func Move(forest []*domain.Component, id string, target domain.ContainerTarget, index int) ([]*domain.Component, bool) {
	pruned, removed, ok := Extract(forest, id)
	if !ok {
		return forest, false
	}
	next, ok := InsertAt(pruned, target, removed, index)
	if !ok {
		return forest, false
	}
	return next, true
}

// Clone deep copies c, giving the clone, every descendant and every nested-collection entry a
// fresh id from newID. Geometry and properties are copied verbatim.
func Clone(c *domain.Component, newID func() string) *domain.Component {
	next := c.Copy()
	next.ID = newID()
	next.ParentID = ""
	next.Properties = domain.CopyProperties(c.Properties)
	next.Children = cloneForest(c.Children, newID)
	next.Panels, next.Steps, next.Tabs = nil, nil, nil
	if slots := c.Slots(); slots != nil {
		cloned := make([]*domain.Slot, len(slots))
		for i, s := range slots {
			cloned[i] = &domain.Slot{ID: newID(), Title: s.Title, Children: cloneForest(s.Children, newID)}
		}
		next.SetSlots(cloned)
	}
	return next
}

func cloneForest(forest []*domain.Component, newID func() string) []*domain.Component {
	if len(forest) == 0 {
		return nil
	}
	out := make([]*domain.Component, len(forest))
	for i, c := range forest {
		out[i] = Clone(c, newID)
	}
	return out
}

// Replace swaps the component with the given id for fn's result, keeping its location.
// Returning nil from fn leaves the forest unchanged.
func Replace(forest []*domain.Component, id string, fn func(*domain.Component) *domain.Component) ([]*domain.Component, bool) {
	return rewrite(forest, id, func(c *domain.Component) (*domain.Component, bool) {
		next := fn(c)
		if next == nil {
			return c, false
		}
		return next, true
	})
}
