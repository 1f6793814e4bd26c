package designer_test

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/stretchr/testify/require"
)

var paletteKinds = []domain.Kind{
	domain.KindButton, domain.KindInput, domain.KindContainer, domain.KindSection,
	domain.KindAccordion, domain.KindStepper, domain.KindTabs, domain.KindCard,
}

// targets lists every list a component could be dropped into.
func targets(forest []*domain.Component) []domain.ContainerTarget {
	out := []domain.ContainerTarget{domain.Root()}
	tree.Walk(forest, func(c *domain.Component) bool {
		out = append(out, domain.ChildrenOf(c.ID))
		if c.Kind == domain.KindSection {
			out = append(out, domain.GridColumn(c.ID, 0), domain.GridColumn(c.ID, 1))
		}
		for _, s := range c.Slots() {
			t, _ := domain.SlotTarget(c.Kind, c.ID, s.ID)
			out = append(out, t)
		}
		return true
	})
	return out
}

// randomProperties returns nil, an empty bag, or a bag with plain and nested values.
func randomProperties(r *rand.Rand) map[string]any {
	switch r.Intn(4) {
	case 0:
		return nil
	case 1:
		return map[string]any{}
	case 2:
		return map[string]any{"label": fmt.Sprintf("field %d", r.Intn(10))}
	}
	return map[string]any{"style": map[string]any{}, "tags": []any{"a", map[string]any{}}}
}

// randomStep applies one random command.
func randomStep(r *rand.Rand, s *designer.Store) {
	ids := tree.ComponentIDs(s.Forest())
	pick := func() string {
		if len(ids) == 0 {
			return "missing"
		}
		return ids[r.Intn(len(ids))]
	}
	point := func() domain.Point {
		return domain.Point{X: float64(r.Intn(400)), Y: float64(r.Intn(300))}
	}

	switch r.Intn(15) {
	case 0, 1, 2:
		ts := targets(s.Forest())
		s.Add(&domain.Component{
			Kind:       paletteKinds[r.Intn(len(paletteKinds))],
			Position:   point(),
			Size:       domain.Size{Width: float64(10 + r.Intn(100)), Height: float64(10 + r.Intn(60))},
			Properties: randomProperties(r),
		}, ts[r.Intn(len(ts))], r.Intn(4)-1)
	case 14:
		s.Update(pick(), domain.ComponentPatch{Properties: map[string]any{"label": nil, "style": nil}})
	case 3:
		s.Remove(pick())
	case 4:
		s.Duplicate(pick())
	case 5:
		ts := targets(s.Forest())
		s.MoveTo(pick(), ts[r.Intn(len(ts))], r.Intn(4)-1)
	case 6:
		var sel []string
		for _, id := range ids {
			if r.Intn(3) == 0 {
				sel = append(sel, id)
			}
		}
		s.SetSelection(sel, "")
	case 7:
		s.Group()
	case 8:
		s.Ungroup()
	case 9:
		s.AddSlot(pick(), "")
	case 10:
		s.ReorderZ([]designer.ZOrder{designer.BringForward, designer.SendBackward, designer.BringToFront, designer.SendToBack}[r.Intn(4)])
	case 11:
		s.Align([]designer.AlignMode{designer.AlignLeft, designer.AlignCenter, designer.AlignBottom}[r.Intn(3)])
		s.Distribute(designer.Horizontal)
	case 12:
		s.Toggle(pick())
		s.Move(pick(), point())
	case 13:
		s.RemoveMany([]string{pick(), pick()})
	}
}

func checkInvariants(t *testing.T, s *designer.Store, step int) {
	t.Helper()
	forest := s.Forest()

	seen := map[string]bool{}
	for _, id := range tree.IDs(forest) {
		require.False(t, seen[id], "step %d: duplicate id %s", step, id)
		seen[id] = true
	}

	sel := s.Selection()
	for _, id := range sel.IDs {
		_, ok := tree.Find(forest, id)
		require.True(t, ok, "step %d: dangling selection %s", step, id)
	}
	if sel.Primary != "" {
		require.True(t, slices.Contains(sel.IDs, sel.Primary), "step %d: primary outside selection", step)
	}

	tree.Walk(forest, func(c *domain.Component) bool {
		for _, child := range c.Children {
			if child.Column != nil {
				require.Equal(t, domain.KindSection, c.Kind, "step %d: column tag outside a Section on %s", step, child.ID)
			}
		}
		return true
	})
	for _, c := range forest {
		require.Nil(t, c.Column, "step %d: column tag at root on %s", step, c.ID)
	}
}

func TestProperties_RandomCommandSequences(t *testing.T) {
	for seed := int64(1); seed <= 25; seed++ {
		r := rand.New(rand.NewSource(seed))
		s := newStore()
		for step := 0; step < 150; step++ {
			randomStep(r, s)
			checkInvariants(t, s, step)
		}

		saved := s.Save()
		reloaded := newStore()
		reloaded.Load(saved)
		require.Equal(t, saved, reloaded.Save(), "seed %d: round trip", seed)
		require.Equal(t, s.Forest(), reloaded.Forest(), "seed %d: reloaded forest", seed)
		require.Empty(t, designer.Validate(saved), "seed %d", seed)
	}
}

func TestProperties_ExtractInsertInverse(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	s := newStore()
	for i := 0; i < 120; i++ {
		randomStep(r, s)
	}
	forest := s.Forest()
	for _, id := range tree.ComponentIDs(forest) {
		loc, ok := tree.Locate(forest, id)
		require.True(t, ok)
		pruned, removed, ok := tree.Extract(forest, id)
		require.True(t, ok)
		restored, ok := tree.InsertAt(pruned, loc.Target, removed, loc.Index)
		require.True(t, ok)
		require.Equal(t, forest, restored, "id %s", id)
	}
}

func TestProperties_GroupUngroupInverse(t *testing.T) {
	for seed := int64(1); seed <= 30; seed++ {
		r := rand.New(rand.NewSource(seed))
		n := 2 + r.Intn(4)
		var comps []*domain.Component
		var ids []string
		for i := 0; i < n; i++ {
			id := string(rune('a' + i))
			comps = append(comps, box(id, float64(r.Intn(500)), float64(r.Intn(500)), float64(1+r.Intn(80)), float64(1+r.Intn(80))))
			ids = append(ids, id)
		}
		s := loaded(comps...)
		before := map[string]domain.Point{}
		for _, c := range comps {
			before[c.ID] = c.Position
		}

		s.SetSelection(ids, "")
		require.NotEmpty(t, s.Group())
		require.True(t, s.Ungroup())

		for id, want := range before {
			loc, ok := s.Locate(id)
			require.True(t, ok)
			require.True(t, loc.Target.IsRoot())
			require.Equal(t, want, loc.Component.Position, "seed %d id %s", seed, id)
		}
	}
}

func TestProperties_CloneDisjoint(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	s := newStore()
	for i := 0; i < 100; i++ {
		randomStep(r, s)
	}
	existing := map[string]bool{}
	for _, id := range tree.IDs(s.Forest()) {
		existing[id] = true
	}
	n := 0
	gen := func() string {
		n++
		return fmt.Sprintf("clone-%d", n)
	}
	for _, c := range s.Forest() {
		clone := tree.Clone(c, gen)
		for _, id := range tree.IDs([]*domain.Component{clone}) {
			require.False(t, existing[id], "clone reuses %s", id)
			existing[id] = true
		}
	}
}
