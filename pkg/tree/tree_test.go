package tree_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(id string, kind domain.Kind) *domain.Component {
	return &domain.Component{ID: id, Kind: kind, Size: domain.Size{Width: 100, Height: 30}}
}

func inColumn(c *domain.Component, col int) *domain.Component {
	c.Column = domain.IntPtr(col)
	return c
}

// sampleForest builds a document exercising every kind of child list.
func sampleForest() []*domain.Component {
	return []*domain.Component{
		leaf("b1", domain.KindButton),
		{
			ID:   "s1",
			Kind: domain.KindSection,
			Children: []*domain.Component{
				inColumn(leaf("t1", domain.KindText), 0),
				inColumn(leaf("t2", domain.KindText), 1),
				inColumn(leaf("t3", domain.KindText), 0),
			},
		},
		{
			ID:   "a1",
			Kind: domain.KindAccordion,
			Panels: []*domain.Slot{
				{ID: "p1", Title: "First", Children: []*domain.Component{leaf("i1", domain.KindInput)}},
				{ID: "p2", Title: "Second"},
			},
		},
		{
			ID:   "st1",
			Kind: domain.KindStepper,
			Steps: []*domain.Slot{
				{ID: "step1", Title: "One", Children: []*domain.Component{
					{ID: "c1", Kind: domain.KindContainer, Children: []*domain.Component{leaf("b2", domain.KindButton)}},
				}},
			},
		},
		{
			ID:   "tb1",
			Kind: domain.KindTabs,
			Tabs: []*domain.Slot{
				{ID: "tab1", Title: "General"},
				{ID: "tab2", Title: "Advanced", Children: []*domain.Component{leaf("l1", domain.KindLabel)}},
			},
		},
	}
}

func ids(list []*domain.Component) []string {
	out := make([]string, 0, len(list))
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func counter(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func TestFind(t *testing.T) {
	forest := sampleForest()

	tests := []struct {
		id    string
		found bool
	}{
		{"b1", true},
		{"t2", true},
		{"i1", true},
		{"b2", true},
		{"l1", true},
		{"p1", false}, // slot ids are not components
		{"missing", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			c, ok := tree.Find(forest, tt.id)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.id, c.ID)
			}
		})
	}
}

func TestLocate(t *testing.T) {
	forest := sampleForest()

	tests := []struct {
		id     string
		target domain.ContainerTarget
		index  int
		parent string
	}{
		{"b1", domain.Root(), 0, ""},
		{"tb1", domain.Root(), 4, ""},
		{"t3", domain.ChildrenOf("s1"), 2, "s1"},
		{"i1", domain.AccordionPanel("a1", "p1"), 0, "a1"},
		{"c1", domain.StepOf("st1", "step1"), 0, "st1"},
		{"b2", domain.ChildrenOf("c1"), 0, "c1"},
		{"l1", domain.TabPanel("tb1", "tab2"), 0, "tb1"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			loc, ok := tree.Locate(forest, tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.target, loc.Target)
			assert.Equal(t, tt.index, loc.Index)
			if tt.parent == "" {
				assert.Nil(t, loc.Parent)
			} else {
				require.NotNil(t, loc.Parent)
				assert.Equal(t, tt.parent, loc.Parent.ID)
			}
		})
	}

	_, ok := tree.Locate(forest, "missing")
	assert.False(t, ok)
}

func TestChildrenFor(t *testing.T) {
	forest := sampleForest()

	tests := []struct {
		name   string
		target domain.ContainerTarget
		want   []string
		ok     bool
	}{
		{"root", domain.Root(), []string{"b1", "s1", "a1", "st1", "tb1"}, true},
		{"zero value is root", domain.ContainerTarget{}, []string{"b1", "s1", "a1", "st1", "tb1"}, true},
		{"plain children", domain.ChildrenOf("s1"), []string{"t1", "t2", "t3"}, true},
		{"grid column 0", domain.GridColumn("s1", 0), []string{"t1", "t3"}, true},
		{"grid column 1", domain.GridColumn("s1", 1), []string{"t2"}, true},
		{"empty grid column", domain.GridColumn("s1", 5), []string{}, true},
		{"panel", domain.AccordionPanel("a1", "p1"), []string{"i1"}, true},
		{"empty panel", domain.AccordionPanel("a1", "p2"), []string{}, true},
		{"tab", domain.TabPanel("tb1", "tab2"), []string{"l1"}, true},
		{"step", domain.StepOf("st1", "step1"), []string{"c1"}, true},
		{"missing component", domain.ChildrenOf("nope"), nil, false},
		{"missing slot", domain.AccordionPanel("a1", "nope"), nil, false},
		{"slot kind mismatch", domain.TabPanel("a1", "p1"), nil, false},
		{"grid column on non-section", domain.GridColumn("c1", 0), nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, ok := tree.ChildrenFor(forest, tt.target)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, ids(list))
			}
		})
	}
}

func TestReplaceChildren_GridColumnSplice(t *testing.T) {
	forest := sampleForest()

	next, ok := tree.ReplaceChildren(forest, domain.GridColumn("s1", 0), func(list []*domain.Component) []*domain.Component {
		list[0], list[1] = list[1], list[0]
		return append(list, leaf("t4", domain.KindText))
	})
	require.True(t, ok)

	section, _ := tree.Find(next, "s1")
	assert.Equal(t, []string{"t3", "t2", "t1", "t4"}, ids(section.Children))
	for _, c := range section.Children {
		require.NotNil(t, c.Column)
	}
	col0, _ := tree.ChildrenFor(next, domain.GridColumn("s1", 0))
	assert.Equal(t, []string{"t3", "t1", "t4"}, ids(col0))
	t4, _ := tree.Find(next, "t4")
	assert.Equal(t, 0, *t4.Column)

	// Input untouched.
	original, _ := tree.Find(forest, "s1")
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(original.Children))
}

func TestInsertAt(t *testing.T) {
	t.Run("Append By Default", func(t *testing.T) {
		next, ok := tree.InsertAt(sampleForest(), domain.Root(), leaf("n", domain.KindButton), tree.End)
		require.True(t, ok)
		assert.Equal(t, []string{"b1", "s1", "a1", "st1", "tb1", "n"}, ids(next))
	})

	t.Run("At Index", func(t *testing.T) {
		next, ok := tree.InsertAt(sampleForest(), domain.Root(), leaf("n", domain.KindButton), 1)
		require.True(t, ok)
		assert.Equal(t, []string{"b1", "n", "s1", "a1", "st1", "tb1"}, ids(next))
	})

	t.Run("Into Empty Panel", func(t *testing.T) {
		next, ok := tree.InsertAt(sampleForest(), domain.AccordionPanel("a1", "p2"), leaf("n", domain.KindButton), 0)
		require.True(t, ok)
		list, _ := tree.ChildrenFor(next, domain.AccordionPanel("a1", "p2"))
		assert.Equal(t, []string{"n"}, ids(list))
	})

	t.Run("Grid Column Is Column Local", func(t *testing.T) {
		next, ok := tree.InsertAt(sampleForest(), domain.GridColumn("s1", 0), leaf("n", domain.KindText), 1)
		require.True(t, ok)
		section, _ := tree.Find(next, "s1")
		assert.Equal(t, []string{"t1", "t2", "n", "t3"}, ids(section.Children))
		n, _ := tree.Find(next, "n")
		require.NotNil(t, n.Column)
		assert.Equal(t, 0, *n.Column)
	})

	t.Run("Grid Column Append After Last Member", func(t *testing.T) {
		next, ok := tree.InsertAt(sampleForest(), domain.GridColumn("s1", 1), leaf("n", domain.KindText), tree.End)
		require.True(t, ok)
		section, _ := tree.Find(next, "s1")
		assert.Equal(t, []string{"t1", "t2", "n", "t3"}, ids(section.Children))
	})

	t.Run("Clears Column Outside Sections", func(t *testing.T) {
		next, ok := tree.InsertAt(sampleForest(), domain.Root(), inColumn(leaf("n", domain.KindText), 2), tree.End)
		require.True(t, ok)
		n, _ := tree.Find(next, "n")
		assert.Nil(t, n.Column)
	})

	t.Run("Unknown Target Is No-op", func(t *testing.T) {
		forest := sampleForest()
		next, ok := tree.InsertAt(forest, domain.ChildrenOf("nope"), leaf("n", domain.KindText), 0)
		assert.False(t, ok)
		assert.Equal(t, forest, next)
	})
}

func TestExtract(t *testing.T) {
	forest := sampleForest()
	snapshot := domain.DeepCopyForest(forest)

	next, removed, ok := tree.Extract(forest, "b2")
	require.True(t, ok)
	assert.Equal(t, "b2", removed.ID)
	_, found := tree.Find(next, "b2")
	assert.False(t, found)
	container, _ := tree.Find(next, "c1")
	assert.Empty(t, container.Children)

	// The input forest is never mutated.
	assert.Equal(t, snapshot, forest)

	same, removed, ok := tree.Extract(forest, "missing")
	assert.False(t, ok)
	assert.Nil(t, removed)
	assert.Equal(t, forest, same)
}

func TestExtractInsertInverse(t *testing.T) {
	forest := sampleForest()
	for _, id := range tree.ComponentIDs(forest) {
		t.Run(id, func(t *testing.T) {
			loc, ok := tree.Locate(forest, id)
			require.True(t, ok)

			pruned, removed, ok := tree.Extract(forest, id)
			require.True(t, ok)
			restored, ok := tree.InsertAt(pruned, loc.Target, removed, loc.Index)
			require.True(t, ok)

			assert.Equal(t, forest, restored)
		})
	}
}

func TestMove(t *testing.T) {
	t.Run("Into Tab", func(t *testing.T) {
		next, ok := tree.Move(sampleForest(), "b1", domain.TabPanel("tb1", "tab1"), 0)
		require.True(t, ok)
		loc, _ := tree.Locate(next, "b1")
		assert.Equal(t, domain.TabPanel("tb1", "tab1"), loc.Target)
		assert.Equal(t, []string{"s1", "a1", "st1", "tb1"}, ids(next))
	})

	t.Run("Into Own Descendant Is No-op", func(t *testing.T) {
		forest := sampleForest()
		next, ok := tree.Move(forest, "st1", domain.ChildrenOf("c1"), 0)
		assert.False(t, ok)
		assert.Equal(t, forest, next)
	})

	t.Run("Missing Id Is No-op", func(t *testing.T) {
		forest := sampleForest()
		next, ok := tree.Move(forest, "nope", domain.Root(), 0)
		assert.False(t, ok)
		assert.Equal(t, forest, next)
	})
}

func TestClone(t *testing.T) {
	forest := sampleForest()
	original := forest[3] // stepper with nested container

	clone := tree.Clone(original, counter("new"))

	sourceIDs := map[string]bool{}
	for _, id := range tree.IDs(forest) {
		sourceIDs[id] = true
	}
	cloneIDs := tree.IDs([]*domain.Component{clone})
	require.Len(t, cloneIDs, len(tree.IDs([]*domain.Component{original})))
	for _, id := range cloneIDs {
		assert.False(t, sourceIDs[id], "clone reuses id %s", id)
	}

	assert.Equal(t, original.Position, clone.Position)
	assert.Equal(t, "One", clone.Steps[0].Title)
	assert.Equal(t, domain.KindButton, clone.Steps[0].Children[0].Children[0].Kind)
}

func TestContains(t *testing.T) {
	forest := sampleForest()
	stepper := forest[3]

	assert.True(t, tree.Contains(stepper, "st1"))
	assert.True(t, tree.Contains(stepper, "b2"))
	assert.True(t, tree.Contains(stepper, "step1"))
	assert.False(t, tree.Contains(stepper, "b1"))
	assert.False(t, tree.Contains(nil, "b1"))
}

func TestIDs(t *testing.T) {
	got := tree.IDs(sampleForest())
	assert.Equal(t, []string{
		"b1", "s1", "t1", "t2", "t3", "a1", "p1", "p2", "i1", "st1", "step1", "c1", "b2",
		"tb1", "tab1", "tab2", "l1",
	}, got)
}

func TestReplace(t *testing.T) {
	forest := sampleForest()

	next, ok := tree.Replace(forest, "i1", func(c *domain.Component) *domain.Component {
		cp := c.Copy()
		cp.Position = domain.Point{X: 5, Y: 6}
		return cp
	})
	require.True(t, ok)
	moved, _ := tree.Find(next, "i1")
	assert.Equal(t, domain.Point{X: 5, Y: 6}, moved.Position)
	original, _ := tree.Find(forest, "i1")
	assert.Equal(t, domain.Point{}, original.Position)

	same, ok := tree.Replace(forest, "i1", func(*domain.Component) *domain.Component { return nil })
	assert.False(t, ok)
	assert.Equal(t, forest, same)
}
