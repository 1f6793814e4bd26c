package designer_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStore returns a store with predictable ids n1, n2, ...
func newStore(opts ...designer.Option) *designer.Store {
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
	return designer.New(append([]designer.Option{designer.WithIDGenerator(gen)}, opts...)...)
}

func box(id string, x, y, w, h float64) *domain.Component {
	return &domain.Component{
		ID:       id,
		Kind:     domain.KindButton,
		Position: domain.Point{X: x, Y: y},
		Size:     domain.Size{Width: w, Height: h},
	}
}

func container(id string, kind domain.Kind, children ...*domain.Component) *domain.Component {
	return &domain.Component{ID: id, Kind: kind, Children: children}
}

func loaded(components ...*domain.Component) *designer.Store {
	s := newStore()
	s.Load(domain.Definition{Components: components})
	return s
}

func get(t *testing.T, s *designer.Store, id string) *domain.Component {
	t.Helper()
	c, ok := s.Component(id)
	require.True(t, ok, "component %s not found", id)
	return c
}

func rootIDs(s *designer.Store) []string {
	var out []string
	for _, c := range s.Forest() {
		out = append(out, c.ID)
	}
	return out
}

func childIDs(t *testing.T, s *designer.Store, id string) []string {
	t.Helper()
	var ids []string
	for _, c := range get(t, s, id).Children {
		ids = append(ids, c.ID)
	}
	return ids
}

func TestNew_Defaults(t *testing.T) {
	s := designer.New()
	assert.Empty(t, s.Forest())
	assert.Equal(t, domain.Size{Width: 800, Height: 600}, s.CanvasSize())
	assert.Equal(t, 1.0, s.Zoom())
	assert.Equal(t, designer.GridSettings{Size: 10}, s.Grid())

	id := s.Add(&domain.Component{Kind: domain.KindButton}, domain.Root(), tree.End)
	assert.Len(t, id, 36, "default ids are UUIDs")
}

func TestAdd(t *testing.T) {
	t.Run("root append selects the new component", func(t *testing.T) {
		s := newStore()
		a := s.Add(&domain.Component{Kind: domain.KindButton}, domain.Root(), tree.End)
		b := s.Add(&domain.Component{Kind: domain.KindText}, domain.Root(), 0)

		assert.Equal(t, "n1", a)
		assert.Equal(t, "n2", b)
		assert.Equal(t, []string{"n2", "n1"}, rootIDs(s))
		assert.Equal(t, designer.Selection{IDs: []string{"n2"}, Primary: "n2"}, s.Selection())
	})

	t.Run("data ids are never reused", func(t *testing.T) {
		s := loaded(box("a", 0, 0, 10, 10))
		id := s.Add(box("a", 0, 0, 10, 10), domain.Root(), tree.End)
		assert.NotEqual(t, "a", id)
		assert.Len(t, s.Forest(), 2)
	})

	t.Run("kinds with nested collections get a first entry", func(t *testing.T) {
		s := newStore()
		id := s.Add(&domain.Component{Kind: domain.KindAccordion}, domain.Root(), tree.End)
		c := get(t, s, id)
		require.Len(t, c.Panels, 1)
		assert.Equal(t, "Panel 1", c.Panels[0].Title)
		assert.NotEqual(t, id, c.Panels[0].ID)
	})

	t.Run("into a grid column", func(t *testing.T) {
		s := loaded(container("sec", domain.KindSection))
		id := s.Add(box("", 0, 0, 1, 1), domain.GridColumn("sec", 2), tree.End)
		c := get(t, s, id)
		require.NotNil(t, c.Column)
		assert.Equal(t, 2, *c.Column)
	})

	t.Run("rejected", func(t *testing.T) {
		s := newStore()
		assert.Empty(t, s.Add(nil, domain.Root(), tree.End))
		assert.Empty(t, s.Add(&domain.Component{Kind: "Spinner"}, domain.Root(), tree.End))
		assert.Empty(t, s.Add(box("", 0, 0, 1, 1), domain.ChildrenOf("missing"), tree.End))
		assert.Empty(t, s.Forest())
	})
}

func TestAddTree(t *testing.T) {
	s := loaded(box("a", 0, 0, 10, 10), box("z", 0, 0, 10, 10))
	fragment := []*domain.Component{
		container("g", domain.KindContainer, box("a", 1, 1, 1, 1)),
		box("b", 5, 5, 5, 5),
	}

	ids := s.AddTree(fragment, domain.Root(), 1)
	require.Len(t, ids, 2)
	assert.Equal(t, []string{"a", ids[0], ids[1], "z"}, rootIDs(s))
	assert.Equal(t, ids, s.Selection().IDs)
	assertUniqueIDs(t, s)

	assert.Nil(t, s.AddTree(fragment, domain.ChildrenOf("missing"), tree.End))
}

func TestRemove_PrunesSelection(t *testing.T) {
	s := loaded(box("a", 0, 0, 1, 1), box("b", 0, 0, 1, 1), box("c", 0, 0, 1, 1))
	s.SetSelection([]string{"a", "b", "c"}, "b")

	require.True(t, s.Remove("b"))
	assert.Equal(t, designer.Selection{IDs: []string{"a", "c"}, Primary: "a"}, s.Selection())

	require.True(t, s.RemoveMany([]string{"a", "missing"}))
	assert.Equal(t, designer.Selection{IDs: []string{"c"}, Primary: "c"}, s.Selection())

	assert.False(t, s.Remove("missing"))
	assert.False(t, s.RemoveMany([]string{"missing"}))
}

func TestRemove_Subtree(t *testing.T) {
	s := loaded(container("g", domain.KindContainer, box("a", 0, 0, 1, 1)), box("b", 0, 0, 1, 1))
	s.SetSelection([]string{"a", "b"}, "a")
	s.SetHover("a")

	require.True(t, s.Remove("g"))
	assert.Equal(t, []string{"b"}, rootIDs(s))
	assert.Equal(t, designer.Selection{IDs: []string{"b"}, Primary: "b"}, s.Selection())
	assert.Empty(t, s.State().Hover)

	require.True(t, s.Remove("b"))
	assert.Equal(t, designer.Selection{}, s.Selection())
}

func TestUpdate(t *testing.T) {
	s := loaded(
		&domain.Component{ID: "a", Kind: domain.KindButton, Properties: map[string]any{"label": "Save", "color": "red"}},
		&domain.Component{ID: "sec", Kind: domain.KindSection, Children: []*domain.Component{box("in", 0, 0, 1, 1)}},
	)

	require.True(t, s.Update("a", domain.ComponentPatch{
		Properties: map[string]any{"label": "Send", "color": nil},
		Size:       &domain.Size{Width: 80, Height: 24},
		Column:     domain.IntPtr(1),
	}))
	a := get(t, s, "a")
	assert.Equal(t, map[string]any{"label": "Send"}, a.Properties)
	assert.Equal(t, domain.Size{Width: 80, Height: 24}, a.Size)
	assert.Nil(t, a.Column, "column tags only apply inside a Section")

	require.True(t, s.Update("in", domain.ComponentPatch{Column: domain.IntPtr(1)}))
	assert.Equal(t, 1, *get(t, s, "in").Column)

	assert.False(t, s.Update("a", domain.ComponentPatch{Column: domain.IntPtr(3)}), "patch reduced to nothing")
	assert.False(t, s.Update("missing", domain.ComponentPatch{Locked: new(bool)}))
}

func TestMoveAndResize(t *testing.T) {
	t.Run("snap disabled writes verbatim", func(t *testing.T) {
		s := loaded(box("a", 0, 0, 10, 10))
		require.True(t, s.Move("a", domain.Point{X: 42.5, Y: 17}))
		assert.Equal(t, domain.Point{X: 42.5, Y: 17}, get(t, s, "a").Position)
	})

	t.Run("snap enabled rounds to the grid", func(t *testing.T) {
		s := newStore(designer.WithGrid(designer.GridSettings{Size: 10, Snap: true}))
		s.Load(domain.Definition{Components: []*domain.Component{box("a", 0, 0, 10, 10)}})

		require.True(t, s.Move("a", domain.Point{X: 42, Y: 17}))
		assert.Equal(t, domain.Point{X: 40, Y: 20}, get(t, s, "a").Position)
		assert.False(t, s.Move("a", domain.Point{X: 38, Y: 22}), "same snapped point")

		require.True(t, s.Resize("a", domain.Size{Width: 33, Height: 17}))
		assert.Equal(t, domain.Size{Width: 33, Height: 17}, get(t, s, "a").Size, "resize never snaps")
	})

	t.Run("locked components stay put", func(t *testing.T) {
		locked := box("a", 5, 5, 10, 10)
		locked.Locked = true
		s := loaded(locked)
		assert.False(t, s.Move("a", domain.Point{X: 50, Y: 50}))
		assert.False(t, s.Resize("a", domain.Size{Width: 50, Height: 50}))
		assert.Equal(t, domain.Point{X: 5, Y: 5}, get(t, s, "a").Position)
	})

	t.Run("negative sizes clamp to zero", func(t *testing.T) {
		s := loaded(box("a", 0, 0, 10, 10))
		require.True(t, s.Resize("a", domain.Size{Width: -4, Height: 3}))
		assert.Equal(t, domain.Size{Width: 0, Height: 3}, get(t, s, "a").Size)
	})
}

func TestSnap_Idempotent(t *testing.T) {
	for _, size := range []float64{1, 5, 8, 10, 12.5} {
		for _, v := range []float64{-37.2, -5, 0, 0.4, 4.99, 5, 17, 42.5, 1234.56} {
			once := designer.Snap(v, size)
			assert.Equal(t, once, designer.Snap(once, size), "size=%v v=%v", size, v)
		}
	}
	assert.Equal(t, 42.5, designer.Snap(42.5, 0))
}

func TestSelection(t *testing.T) {
	s := loaded(box("a", 0, 0, 1, 1), box("b", 0, 0, 1, 1), box("c", 0, 0, 1, 1))

	require.True(t, s.Select("a"))
	assert.Equal(t, designer.Selection{IDs: []string{"a"}, Primary: "a"}, s.Selection())
	assert.False(t, s.Select("missing"))

	require.True(t, s.Toggle("b"))
	assert.Equal(t, designer.Selection{IDs: []string{"a", "b"}, Primary: "b"}, s.Selection())

	require.True(t, s.Toggle("c"))
	require.True(t, s.Toggle("c"))
	assert.Equal(t, designer.Selection{IDs: []string{"a", "b"}, Primary: "b"}, s.Selection(),
		"toggling out the primary promotes the last remaining id")

	require.True(t, s.Toggle("a"))
	assert.Equal(t, designer.Selection{IDs: []string{"b"}, Primary: "b"}, s.Selection())

	require.True(t, s.AddToSelection("a"))
	require.True(t, s.AddToSelection("b"))
	assert.Equal(t, designer.Selection{IDs: []string{"b", "a"}, Primary: "b"}, s.Selection())

	require.True(t, s.SetSelection([]string{"c", "missing", "a", "c"}, ""))
	assert.Equal(t, designer.Selection{IDs: []string{"c", "a"}, Primary: "a"}, s.Selection())

	require.True(t, s.SetSelection([]string{"c", "a"}, "c"))
	assert.Equal(t, "c", s.Selection().Primary)

	require.True(t, s.SelectAll())
	assert.Equal(t, designer.Selection{IDs: []string{"a", "b", "c"}, Primary: "c"}, s.Selection())

	require.True(t, s.ClearSelection())
	assert.False(t, s.ClearSelection())
	assert.Empty(t, s.Selection().IDs)
}

func TestDuplicate(t *testing.T) {
	acc := &domain.Component{
		ID:   "acc",
		Kind: domain.KindAccordion,
		Panels: []*domain.Slot{
			{ID: "p1", Title: "One", Children: []*domain.Component{box("inner", 3, 4, 5, 6)}},
		},
		Position: domain.Point{X: 100, Y: 100},
	}
	s := loaded(acc, box("b", 0, 0, 1, 1))

	clone := s.Duplicate("acc")
	require.NotEmpty(t, clone)
	assert.Equal(t, []string{"acc", clone, "b"}, rootIDs(s))
	assert.Equal(t, designer.Selection{IDs: []string{clone}, Primary: clone}, s.Selection())

	c := get(t, s, clone)
	assert.Equal(t, domain.Point{X: 120, Y: 120}, c.Position, "root clones are nudged")
	require.Len(t, c.Panels, 1)
	assert.Equal(t, "One", c.Panels[0].Title)
	assert.NotEqual(t, "p1", c.Panels[0].ID)
	require.Len(t, c.Panels[0].Children, 1)
	assert.NotEqual(t, "inner", c.Panels[0].Children[0].ID)
	assertUniqueIDs(t, s)

	nested := s.Duplicate("inner")
	loc, ok := s.Locate(nested)
	require.True(t, ok)
	assert.Equal(t, domain.AccordionPanel("acc", "p1"), loc.Target)
	assert.Equal(t, 1, loc.Index)
	assert.Equal(t, domain.Point{X: 3, Y: 4}, loc.Component.Position, "nested clones keep their position")

	assert.Empty(t, s.Duplicate("missing"))
}

func TestDuplicate_KeepsColumn(t *testing.T) {
	s := loaded(container("sec", domain.KindSection,
		&domain.Component{ID: "x", Kind: domain.KindInput, Column: domain.IntPtr(1)},
		&domain.Component{ID: "y", Kind: domain.KindInput, Column: domain.IntPtr(0)},
	))
	clone := s.Duplicate("x")

	col, ok := tree.ChildrenFor(s.Forest(), domain.GridColumn("sec", 1))
	require.True(t, ok)
	require.Len(t, col, 2)
	assert.Equal(t, "x", col[0].ID)
	assert.Equal(t, clone, col[1].ID)
}

func TestMoveTo(t *testing.T) {
	build := func() *designer.Store {
		return loaded(
			container("g", domain.KindContainer, box("a", 0, 0, 1, 1), container("inner", domain.KindContainer)),
			box("b", 0, 0, 1, 1),
			&domain.Component{ID: "tabs", Kind: domain.KindTabs, Tabs: []*domain.Slot{{ID: "t1", Title: "One"}}},
			container("sec", domain.KindSection),
		)
	}

	t.Run("into a container", func(t *testing.T) {
		s := build()
		require.True(t, s.MoveTo("b", domain.ChildrenOf("g"), 0))
		loc, _ := s.Locate("b")
		assert.Equal(t, domain.ChildrenOf("g"), loc.Target)
		assert.Equal(t, 0, loc.Index)
	})

	t.Run("into a tab", func(t *testing.T) {
		s := build()
		require.True(t, s.MoveTo("a", domain.TabPanel("tabs", "t1"), tree.End))
		loc, _ := s.Locate("a")
		assert.Equal(t, domain.TabPanel("tabs", "t1"), loc.Target)
	})

	t.Run("into a grid column", func(t *testing.T) {
		s := build()
		require.True(t, s.MoveTo("b", domain.GridColumn("sec", 1), tree.End))
		assert.Equal(t, 1, *get(t, s, "b").Column)

		require.True(t, s.MoveTo("b", domain.Root(), tree.End))
		assert.Nil(t, get(t, s, "b").Column, "column tag is dropped outside a Section")
	})

	t.Run("within the same list the index is read before the move", func(t *testing.T) {
		s := build()
		require.True(t, s.MoveTo("g", domain.Root(), 2))
		assert.Equal(t, []string{"b", "g", "tabs", "sec"}, rootIDs(s))
	})

	t.Run("within the same grid column", func(t *testing.T) {
		col := func(id string) *domain.Component {
			c := box(id, 0, 0, 1, 1)
			c.Column = domain.IntPtr(0)
			return c
		}
		sec := container("sec", domain.KindSection, col("a"), col("b"), col("c"))
		sec.Properties = map[string]any{domain.PropColumns: 2.0}
		s := loaded(sec)

		require.True(t, s.MoveTo("a", domain.GridColumn("sec", 0), 2))
		assert.Equal(t, []string{"b", "a", "c"}, childIDs(t, s, "sec"))

		plain := loaded(sec)
		require.True(t, plain.MoveTo("a", domain.ChildrenOf("sec"), 2))
		assert.Equal(t, childIDs(t, s, "sec"), childIDs(t, plain, "sec"))
	})

	t.Run("into its own subtree is rejected", func(t *testing.T) {
		s := build()
		before := s.Forest()
		assert.False(t, s.MoveTo("g", domain.ChildrenOf("g"), tree.End))
		assert.False(t, s.MoveTo("g", domain.ChildrenOf("inner"), tree.End))
		assert.False(t, s.MoveTo("tabs", domain.TabPanel("tabs", "t1"), tree.End))
		assert.Equal(t, before, s.Forest())
	})

	t.Run("unresolved target is rejected", func(t *testing.T) {
		s := build()
		assert.False(t, s.MoveTo("b", domain.TabPanel("tabs", "nope"), tree.End))
		assert.False(t, s.MoveTo("missing", domain.Root(), tree.End))
	})
}

func TestSlots(t *testing.T) {
	s := loaded(&domain.Component{ID: "st", Kind: domain.KindStepper, Steps: []*domain.Slot{
		{ID: "s1", Title: "Details", Children: []*domain.Component{box("f", 0, 0, 1, 1)}},
	}}, box("btn", 0, 0, 1, 1))

	id := s.AddSlot("st", "")
	require.NotEmpty(t, id)
	st := get(t, s, "st")
	require.Len(t, st.Steps, 2)
	assert.Equal(t, "Step 2", st.Steps[1].Title)

	assert.Empty(t, s.AddSlot("btn", "x"))

	require.True(t, s.RenameSlot("st", id, "Review"))
	assert.Equal(t, "Review", get(t, s, "st").Steps[1].Title)
	assert.False(t, s.RenameSlot("st", id, "Review"))

	s.Select("f")
	require.True(t, s.RemoveSlot("st", "s1"))
	assert.Empty(t, s.Selection().IDs)
	_, ok := s.Component("f")
	assert.False(t, ok)
	assert.False(t, s.RemoveSlot("st", "s1"))
}

func TestCanvasSettings(t *testing.T) {
	s := newStore()
	require.True(t, s.SetGrid(8, true))
	assert.Equal(t, designer.GridSettings{Size: 8, Snap: true}, s.Grid())
	assert.False(t, s.SetGrid(0, true))

	require.True(t, s.SetCanvasSize(domain.Size{Width: 1024, Height: 768}))
	assert.False(t, s.SetCanvasSize(domain.Size{Width: 0, Height: 768}))
	assert.Equal(t, domain.Size{Width: 1024, Height: 768}, s.CanvasSize())

	require.True(t, s.SetZoom(10))
	assert.Equal(t, designer.MaxZoom, s.Zoom())
	require.True(t, s.SetZoom(0.01))
	assert.Equal(t, designer.MinZoom, s.Zoom())
	assert.False(t, s.SetZoom(-1))
}

func TestToggleLockAndHidden(t *testing.T) {
	locked := box("a", 0, 0, 1, 1)
	locked.Locked = true
	s := loaded(locked, box("b", 0, 0, 1, 1))

	assert.False(t, s.ToggleLock(), "empty selection")

	s.SetSelection([]string{"a", "b"}, "")
	require.True(t, s.ToggleLock())
	assert.True(t, get(t, s, "a").Locked)
	assert.True(t, get(t, s, "b").Locked)

	require.True(t, s.ToggleLock())
	assert.False(t, get(t, s, "a").Locked)
	assert.False(t, get(t, s, "b").Locked)

	require.True(t, s.ToggleHidden())
	assert.True(t, get(t, s, "a").Hidden)
	assert.True(t, get(t, s, "b").Hidden)
	require.True(t, s.ToggleHidden())
	assert.False(t, get(t, s, "b").Hidden)
}

func TestListener(t *testing.T) {
	var changes []designer.Change
	s := newStore(designer.WithListener(func(c designer.Change) {
		changes = append(changes, c)
	}))
	id := s.Add(box("", 0, 0, 10, 10), domain.Root(), tree.End)
	s.Move(id, domain.Point{X: 5, Y: 5})
	s.Move("missing", domain.Point{})

	require.Len(t, changes, 2)
	assert.Equal(t, "add", changes[0].Command)
	assert.Equal(t, "move", changes[1].Command)

	diff := domain.Diff("form", &changes[1].Previous, &changes[1].Current)
	require.NotNil(t, diff)
	assert.Equal(t, []string{id}, diff.Changed)
	assert.Empty(t, diff.Added)
}

func assertUniqueIDs(t *testing.T, s *designer.Store) {
	t.Helper()
	seen := map[string]bool{}
	for _, id := range tree.IDs(s.Forest()) {
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}
