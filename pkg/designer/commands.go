package designer

import (
	"fmt"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
)

// Add inserts a copy of data into target at index and makes it the sole selection.
// The component and everything nested in it receive fresh ids. Components of a kind that owns
// a nested collection start with one entry when data carries none.
// It returns the new id, or "" when the kind is unknown or the target does not resolve.
func (s *Store) Add(data *domain.Component, target domain.ContainerTarget, index int) string {
	if data == nil || !data.Kind.Valid() {
		s.skip("add", "unknown kind")
		return ""
	}
	c := tree.Clone(data, s.newID)
	if c.Kind.HasSlots() && len(c.Slots()) == 0 {
		c.SetSlots([]*domain.Slot{{ID: s.newID(), Title: defaultSlotTitle(c.Kind, 1)}})
	}
	forest, ok := tree.InsertAt(s.forest, target, c, index)
	if !ok {
		s.skip("add", "target does not resolve", "target", target)
		return ""
	}
	s.change("add", func() {
		s.forest = forest
		s.selected = []string{c.ID}
		s.primary = c.ID
	})
	return c.ID
}

// AddTree inserts copies of a fragment (a template or pasted subtree list) into target
// starting at index, regenerating every id. All inserted roots become selected.
func (s *Store) AddTree(fragment []*domain.Component, target domain.ContainerTarget, index int) []string {
	if _, ok := tree.ChildrenFor(s.forest, target); !ok {
		s.skip("addTree", "target does not resolve", "target", target)
		return nil
	}
	forest := s.forest
	var added []string
	for _, data := range fragment {
		if data == nil {
			continue
		}
		c := tree.Clone(data, s.newID)
		next, ok := tree.InsertAt(forest, target, c, index)
		if !ok {
			continue
		}
		forest = next
		added = append(added, c.ID)
		if index >= 0 {
			index++
		}
	}
	if len(added) == 0 {
		s.skip("addTree", "empty fragment")
		return nil
	}
	s.change("addTree", func() {
		s.forest = forest
		s.selected = added
		s.primary = added[len(added)-1]
	})
	return added
}

// Remove deletes the component and its subtree.
func (s *Store) Remove(id string) bool {
	forest, _, ok := tree.Extract(s.forest, id)
	if !ok {
		return s.skip("remove", "unknown component", "id", id)
	}
	return s.commit("remove", forest)
}

// RemoveMany deletes every listed component. Ids that do not resolve, including those already
// removed together with an ancestor, are ignored.
func (s *Store) RemoveMany(ids []string) bool {
	forest := s.forest
	removed := 0
	for _, id := range ids {
		next, _, ok := tree.Extract(forest, id)
		if !ok {
			continue
		}
		forest = next
		removed++
	}
	if removed == 0 {
		return s.skip("removeMany", "no component resolved")
	}
	return s.commit("removeMany", forest)
}

// Update merges patch into the component's own fields. A column change is only honoured for
// children of a Section.
func (s *Store) Update(id string, patch domain.ComponentPatch) bool {
	loc, ok := tree.Locate(s.forest, id)
	if !ok {
		return s.skip("update", "unknown component", "id", id)
	}
	if patch.Column != nil && (loc.Parent == nil || loc.Parent.Kind != domain.KindSection || loc.Target.IsSlot()) {
		patch.Column = nil
	}
	if patch.IsEmpty() {
		return s.skip("update", "empty patch", "id", id)
	}
	forest, _ := tree.Replace(s.forest, id, patch.Apply)
	return s.commit("update", forest)
}

// Move sets the component's position, snapped to the grid when snapping is enabled.
// Locked components do not move.
func (s *Store) Move(id string, position domain.Point) bool {
	c, ok := tree.Find(s.forest, id)
	if !ok {
		return s.skip("move", "unknown component", "id", id)
	}
	if c.Locked {
		return s.skip("move", "locked", "id", id)
	}
	position = s.snapPoint(position)
	if c.Position == position {
		return false
	}
	return s.commit("move", s.setPosition(id, position))
}

// Resize writes the measured size verbatim. Resizing never snaps.
func (s *Store) Resize(id string, size domain.Size) bool {
	c, ok := tree.Find(s.forest, id)
	if !ok {
		return s.skip("resize", "unknown component", "id", id)
	}
	if c.Locked {
		return s.skip("resize", "locked", "id", id)
	}
	size.Width = max(size.Width, 0)
	size.Height = max(size.Height, 0)
	if c.Size == size {
		return false
	}
	forest, _ := tree.Replace(s.forest, id, func(c *domain.Component) *domain.Component {
		next := c.Copy()
		next.Size = size
		return next
	})
	return s.commit("resize", forest)
}

// MoveTo relocates the component into target at index. Index is read against target's list
// as it is before the move. Moving a component into its own subtree is rejected.
func (s *Store) MoveTo(id string, target domain.ContainerTarget, index int) bool {
	loc, ok := tree.Locate(s.forest, id)
	if !ok {
		return s.skip("moveTo", "unknown component", "id", id)
	}
	if !target.IsRoot() && tree.Contains(loc.Component, target.ComponentID) {
		return s.skip("moveTo", "target inside moved subtree", "id", id, "target", target)
	}
	if _, ok := tree.ChildrenFor(s.forest, target); !ok {
		return s.skip("moveTo", "target does not resolve", "target", target)
	}
	if at, ok := indexIn(s.forest, target, id); ok && index > at {
		index--
	}
	forest, ok := tree.Move(s.forest, id, target, index)
	if !ok {
		return s.skip("moveTo", "insert failed", "id", id, "target", target)
	}
	return s.commit("moveTo", forest)
}

// indexIn reports the position of id within the list target resolves to. Grid column
// targets count only that column's members.
func indexIn(forest []*domain.Component, target domain.ContainerTarget, id string) (int, bool) {
	list, ok := tree.ChildrenFor(forest, target)
	if !ok {
		return 0, false
	}
	for i, c := range list {
		if c.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Duplicate clones the component beside the original and selects the clone. Root-level
// clones are nudged by the duplicate offset.
func (s *Store) Duplicate(id string) string {
	loc, ok := tree.Locate(s.forest, id)
	if !ok {
		s.skip("duplicate", "unknown component", "id", id)
		return ""
	}
	clone := tree.Clone(loc.Component, s.newID)
	if loc.Target.IsRoot() {
		clone.Position.X += s.duplicateOffset
		clone.Position.Y += s.duplicateOffset
	}
	forest, ok := tree.InsertAt(s.forest, loc.Target, clone, loc.Index+1)
	if !ok {
		s.skip("duplicate", "insert failed", "id", id)
		return ""
	}
	s.change("duplicate", func() {
		s.forest = forest
		s.selected = []string{clone.ID}
		s.primary = clone.ID
	})
	return clone.ID
}

// AddSlot appends a new panel, step or tab to the component and returns its id.
// An empty title gets a numbered default.
func (s *Store) AddSlot(componentID, title string) string {
	c, ok := tree.Find(s.forest, componentID)
	if !ok || !c.Kind.HasSlots() {
		s.skip("addSlot", "component has no nested collection", "id", componentID)
		return ""
	}
	if title == "" {
		title = defaultSlotTitle(c.Kind, len(c.Slots())+1)
	}
	slot := &domain.Slot{ID: s.newID(), Title: title}
	forest, _ := tree.Replace(s.forest, componentID, func(c *domain.Component) *domain.Component {
		next := c.Copy()
		next.SetSlots(append(next.Slots(), slot))
		return next
	})
	s.commit("addSlot", forest)
	return slot.ID
}

// RemoveSlot deletes a panel, step or tab together with its children.
func (s *Store) RemoveSlot(componentID, slotID string) bool {
	c, ok := tree.Find(s.forest, componentID)
	if !ok {
		return s.skip("removeSlot", "unknown component", "id", componentID)
	}
	if _, ok := c.Slot(slotID); !ok {
		return s.skip("removeSlot", "unknown slot", "id", componentID, "slot", slotID)
	}
	forest, _ := tree.Replace(s.forest, componentID, func(c *domain.Component) *domain.Component {
		next := c.Copy()
		var slots []*domain.Slot
		for _, sl := range next.Slots() {
			if sl.ID != slotID {
				slots = append(slots, sl)
			}
		}
		next.SetSlots(slots)
		return next
	})
	return s.commit("removeSlot", forest)
}

// RenameSlot sets the title (or tab label) of a panel, step or tab.
func (s *Store) RenameSlot(componentID, slotID, title string) bool {
	c, ok := tree.Find(s.forest, componentID)
	if !ok {
		return s.skip("renameSlot", "unknown component", "id", componentID)
	}
	slot, ok := c.Slot(slotID)
	if !ok {
		return s.skip("renameSlot", "unknown slot", "id", componentID, "slot", slotID)
	}
	if slot.Title == title {
		return false
	}
	forest, _ := tree.Replace(s.forest, componentID, func(c *domain.Component) *domain.Component {
		next := c.Copy()
		slots := next.Slots()
		for i, sl := range slots {
			if sl.ID == slotID {
				slots[i] = &domain.Slot{ID: sl.ID, Title: title, Children: sl.Children}
			}
		}
		return next
	})
	return s.commit("renameSlot", forest)
}

// SetGrid changes the grid size and snapping. Existing positions are not re-snapped.
func (s *Store) SetGrid(size float64, snap bool) bool {
	if size <= 0 {
		return s.skip("setGrid", "non-positive grid size")
	}
	s.change("setGrid", func() {
		s.grid = GridSettings{Size: size, Snap: snap}
	})
	return true
}

// SetCanvasSize changes the canvas size.
func (s *Store) SetCanvasSize(size domain.Size) bool {
	if size.Width <= 0 || size.Height <= 0 {
		return s.skip("setCanvasSize", "non-positive canvas size")
	}
	if s.canvas == size {
		return false
	}
	s.change("setCanvasSize", func() {
		s.canvas = size
	})
	return true
}

// SetZoom changes the zoom factor, clamped to [MinZoom, MaxZoom].
func (s *Store) SetZoom(zoom float64) bool {
	if zoom <= 0 {
		return s.skip("setZoom", "non-positive zoom")
	}
	zoom = clampZoom(zoom)
	if s.zoom == zoom {
		return false
	}
	s.change("setZoom", func() {
		s.zoom = zoom
	})
	return true
}

// ToggleLock locks the whole selection when any member is unlocked, otherwise unlocks it.
func (s *Store) ToggleLock() bool {
	return s.toggleFlag("toggleLock",
		func(c *domain.Component) bool { return c.Locked },
		func(c *domain.Component, v bool) { c.Locked = v })
}

// ToggleHidden hides the whole selection when any member is visible, otherwise shows it.
func (s *Store) ToggleHidden() bool {
	return s.toggleFlag("toggleHidden",
		func(c *domain.Component) bool { return c.Hidden },
		func(c *domain.Component, v bool) { c.Hidden = v })
}

func (s *Store) toggleFlag(command string, get func(*domain.Component) bool, set func(*domain.Component, bool)) bool {
	members := s.selectedComponents()
	if len(members) == 0 {
		return s.skip(command, "empty selection")
	}
	value := false
	for _, c := range members {
		if !get(c) {
			value = true
			break
		}
	}
	forest := s.forest
	for _, m := range members {
		forest, _ = tree.Replace(forest, m.ID, func(c *domain.Component) *domain.Component {
			next := c.Copy()
			set(next, value)
			return next
		})
	}
	return s.commit(command, forest)
}

func (s *Store) setPosition(id string, p domain.Point) []*domain.Component {
	forest, _ := tree.Replace(s.forest, id, func(c *domain.Component) *domain.Component {
		next := c.Copy()
		next.Position = p
		return next
	})
	return forest
}

func defaultSlotTitle(kind domain.Kind, n int) string {
	switch kind {
	case domain.KindAccordion:
		return fmt.Sprintf("Panel %d", n)
	case domain.KindStepper:
		return fmt.Sprintf("Step %d", n)
	}
	return fmt.Sprintf("Tab %d", n)
}
