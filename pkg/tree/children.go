package tree

import "github.com/aretw0/formwork/pkg/domain"

// End is the insertion index meaning "append".
const End = -1

// ChildrenFor resolves a target to a copy of its current ordered list.
// For a GridColumn target only the children tagged with that column are returned.
func ChildrenFor(forest []*domain.Component, target domain.ContainerTarget) ([]*domain.Component, bool) {
	if target.IsRoot() {
		return copyList(forest), true
	}
	owner, ok := Find(forest, target.ComponentID)
	if !ok {
		return nil, false
	}
	switch target.Kind {
	case domain.TargetChildren:
		return copyList(owner.Children), true
	case domain.TargetGridColumn:
		if owner.Kind != domain.KindSection {
			return nil, false
		}
		return columnMembers(owner.Children, target.Column), true
	case domain.TargetAccordionPanel, domain.TargetStep, domain.TargetTab:
		if owner.Kind != target.SlotKind() {
			return nil, false
		}
		slot, ok := owner.Slot(target.SlotID)
		if !ok {
			return nil, false
		}
		return copyList(slot.Children), true
	}
	return nil, false
}

// ReplaceChildren applies fn to the list resolved for target and writes the result back into
// the correct nested location. fn receives a private copy and may reorder it freely.
//
// For a GridColumn target the returned subset is spliced back column-aware: it fills the
// positions previously held by that column, surplus members follow the last of those
// positions, children of other columns keep their relative order, and every returned member
// is tagged with the column.
func ReplaceChildren(forest []*domain.Component, target domain.ContainerTarget, fn func([]*domain.Component) []*domain.Component) ([]*domain.Component, bool) {
	if target.IsRoot() {
		return compact(fn(copyList(forest))), true
	}
	return rewrite(forest, target.ComponentID, func(owner *domain.Component) (*domain.Component, bool) {
		return replaceIn(owner, target, fn)
	})
}

func replaceIn(owner *domain.Component, target domain.ContainerTarget, fn func([]*domain.Component) []*domain.Component) (*domain.Component, bool) {
	switch target.Kind {
	case domain.TargetChildren:
		next := owner.Copy()
		next.Children = compact(fn(copyList(owner.Children)))
		return next, true

	case domain.TargetGridColumn:
		if owner.Kind != domain.KindSection {
			return owner, false
		}
		members := fn(columnMembers(owner.Children, target.Column))
		next := owner.Copy()
		next.Children = spliceColumn(owner.Children, target.Column, members)
		return next, true

	case domain.TargetAccordionPanel, domain.TargetStep, domain.TargetTab:
		if owner.Kind != target.SlotKind() {
			return owner, false
		}
		next := owner.Copy()
		slots := next.Slots()
		for i, s := range slots {
			if s.ID != target.SlotID {
				continue
			}
			slots[i] = &domain.Slot{ID: s.ID, Title: s.Title, Children: compact(fn(copyList(s.Children)))}
			return next, true
		}
	}
	return owner, false
}

// rewrite finds the component with the given id anywhere in the forest, replaces it with the
// result of edit, and copies every ancestor on the path.
func rewrite(forest []*domain.Component, id string, edit func(*domain.Component) (*domain.Component, bool)) ([]*domain.Component, bool) {
	for i, c := range forest {
		var next *domain.Component
		var ok bool
		if c.ID == id {
			next, ok = edit(c)
		} else {
			next, ok = rewriteWithin(c, id, edit)
		}
		if !ok {
			if c.ID == id {
				return forest, false
			}
			continue
		}
		out := copyList(forest)
		out[i] = next
		return out, true
	}
	return forest, false
}

func rewriteWithin(c *domain.Component, id string, edit func(*domain.Component) (*domain.Component, bool)) (*domain.Component, bool) {
	if children, ok := rewrite(c.Children, id, edit); ok {
		next := c.Copy()
		next.Children = children
		return next, true
	}
	for i, s := range c.Slots() {
		children, ok := rewrite(s.Children, id, edit)
		if !ok {
			continue
		}
		next := c.Copy()
		next.Slots()[i] = &domain.Slot{ID: s.ID, Title: s.Title, Children: children}
		return next, true
	}
	return c, false
}

func columnOf(c *domain.Component) int {
	if c.Column == nil {
		return 0
	}
	return *c.Column
}

func columnMembers(children []*domain.Component, column int) []*domain.Component {
	var out []*domain.Component
	for _, c := range children {
		if columnOf(c) == column {
			out = append(out, c)
		}
	}
	return out
}

func withColumn(c *domain.Component, column int) *domain.Component {
	if c.Column != nil && *c.Column == column {
		return c
	}
	next := c.Copy()
	next.Column = domain.IntPtr(column)
	return next
}

func spliceColumn(all []*domain.Component, column int, members []*domain.Component) []*domain.Component {
	out := make([]*domain.Component, 0, len(all)+len(members))
	used := 0
	tail := -1
	for _, c := range all {
		if columnOf(c) != column {
			out = append(out, c)
			continue
		}
		if used < len(members) {
			out = append(out, withColumn(members[used], column))
			used++
		}
		tail = len(out)
	}
	if used < len(members) {
		rest := make([]*domain.Component, 0, len(members)-used+len(out))
		for _, c := range members[used:] {
			rest = append(rest, withColumn(c, column))
		}
		if tail < 0 {
			tail = len(out)
		}
		rest = append(rest, out[tail:]...)
		out = append(out[:tail], rest...)
	}
	return compact(out)
}

func copyList(list []*domain.Component) []*domain.Component {
	if list == nil {
		return nil
	}
	out := make([]*domain.Component, len(list))
	copy(out, list)
	return out
}

// compact normalizes empty lists to nil so that equal documents compare equal.
func compact(list []*domain.Component) []*domain.Component {
	if len(list) == 0 {
		return nil
	}
	return list
}
