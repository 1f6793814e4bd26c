package designer_test

import (
	"testing"

	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrag_ExistingComponent(t *testing.T) {
	s := loaded(box("a", 0, 0, 1, 1), container("g", domain.KindContainer))

	require.True(t, s.BeginDrag(designer.DragPayload{ComponentID: "a"}))
	target := domain.ChildrenOf("g")
	require.True(t, s.SetDropTarget(&target, 0))
	require.True(t, s.SetSnapGuides([]designer.SnapGuide{{Axis: designer.Horizontal, Position: 40}}))

	before := s.Forest()
	st := s.State()
	require.NotNil(t, st.Drag)
	assert.Equal(t, "a", st.Drag.ComponentID)
	assert.Equal(t, &designer.DropTarget{Target: target, Index: 0}, st.DropTarget)
	assert.Equal(t, before, s.Forest(), "transients never touch the forest")

	id, ok := s.Drop()
	require.True(t, ok)
	assert.Equal(t, "a", id)
	loc, _ := s.Locate("a")
	assert.Equal(t, target, loc.Target)

	st = s.State()
	assert.Nil(t, st.Drag)
	assert.Nil(t, st.DropTarget)
	assert.Empty(t, st.SnapGuides)
}

func TestDrag_PaletteComponent(t *testing.T) {
	s := newStore()
	require.True(t, s.BeginDrag(designer.DragPayload{Component: &domain.Component{Kind: domain.KindImage}}))
	root := domain.Root()
	require.True(t, s.SetDropTarget(&root, 0))

	id, ok := s.Drop()
	require.True(t, ok)
	assert.Equal(t, domain.KindImage, get(t, s, id).Kind)
	assert.Equal(t, []string{id}, s.Selection().IDs)
}

func TestDrag_Refused(t *testing.T) {
	locked := box("l", 0, 0, 1, 1)
	locked.Locked = true
	s := loaded(locked, container("g", domain.KindContainer, box("child", 0, 0, 1, 1)))

	assert.False(t, s.BeginDrag(designer.DragPayload{ComponentID: "l"}))
	assert.False(t, s.BeginDrag(designer.DragPayload{ComponentID: "missing"}))
	assert.False(t, s.BeginDrag(designer.DragPayload{}))

	missing := domain.ChildrenOf("missing")
	assert.False(t, s.SetDropTarget(&missing, 0))

	_, ok := s.Drop()
	assert.False(t, ok, "no drag in progress")

	require.True(t, s.BeginDrag(designer.DragPayload{ComponentID: "g"}))
	inside := domain.ChildrenOf("child")
	require.True(t, s.SetDropTarget(&inside, 0))
	_, ok = s.Drop()
	assert.False(t, ok, "cannot drop into own subtree")
	assert.Nil(t, s.State().Drag, "the drag is consumed anyway")
}

func TestDrop_RefusedNotifiesListeners(t *testing.T) {
	var changes []designer.Change
	s := newStore(designer.WithListener(func(c designer.Change) {
		changes = append(changes, c)
	}))
	s.Load(domain.Definition{
		CanvasSize: domain.Size{Width: 800, Height: 600},
		Zoom:       1,
		Components: []*domain.Component{container("g", domain.KindContainer, box("child", 0, 0, 1, 1))},
	})
	changes = nil

	require.True(t, s.BeginDrag(designer.DragPayload{ComponentID: "g"}))
	inside := domain.ChildrenOf("child")
	require.True(t, s.SetDropTarget(&inside, 0))
	_, ok := s.Drop()
	require.False(t, ok)

	var commands []string
	for _, c := range changes {
		commands = append(commands, c.Command)
		assert.Equal(t, c.Previous, c.Current, c.Command)
	}
	assert.Equal(t, []string{"beginDrag", "setDropTarget", "drop"}, commands)
	assert.Nil(t, s.State().Drag)
	assert.Nil(t, s.State().DropTarget)
}

func TestCancelDrag(t *testing.T) {
	s := loaded(box("a", 0, 0, 1, 1))
	assert.False(t, s.CancelDrag())

	require.True(t, s.BeginDrag(designer.DragPayload{ComponentID: "a"}))
	root := domain.Root()
	s.SetDropTarget(&root, 0)
	before := s.Save()

	require.True(t, s.CancelDrag())
	assert.Nil(t, s.State().Drag)
	assert.Nil(t, s.State().DropTarget)
	assert.Equal(t, before, s.Save())
}

func TestHover(t *testing.T) {
	s := loaded(box("a", 0, 0, 1, 1))
	require.True(t, s.SetHover("a"))
	assert.False(t, s.SetHover("a"))
	assert.False(t, s.SetHover("missing"))
	assert.Equal(t, "a", s.State().Hover)
	require.True(t, s.SetHover(""))
	assert.Empty(t, s.State().Hover)
}
