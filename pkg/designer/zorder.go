package designer

import (
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
)

// ZOrder selects the stacking change applied by ReorderZ. The end of a list is the front.
type ZOrder string

const (
	BringToFront ZOrder = "bringToFront"
	SendToBack   ZOrder = "sendToBack"
	BringForward ZOrder = "bringForward"
	SendBackward ZOrder = "sendBackward"
)

// ReorderZ restacks the selected members within each of their parent target lists.
//
// BringForward and SendBackward make one pass per invocation. A selected member swaps with its
// neighbour in the direction of travel only when that neighbour is unselected; the pass starts
// at the leading end so that a contiguous selected run advances one slot as a block.
func (s *Store) ReorderZ(mode ZOrder) bool {
	switch mode {
	case BringToFront, SendToBack, BringForward, SendBackward:
	default:
		return s.skip("reorderZ", "unknown mode", "mode", mode)
	}
	forest := s.forest
	changed := false
	for _, g := range s.selectionGroups() {
		selected := make(map[string]bool, len(g.members))
		for _, m := range g.members {
			selected[m.ID] = true
		}
		next, _ := tree.ReplaceChildren(forest, g.target, func(list []*domain.Component) []*domain.Component {
			out := restack(list, selected, mode)
			for i := range out {
				if out[i] != list[i] {
					changed = true
					break
				}
			}
			return out
		})
		forest = next
	}
	if !changed {
		return s.skip("reorderZ", "order unchanged", "mode", mode)
	}
	return s.commit("reorderZ", forest)
}

func restack(list []*domain.Component, selected map[string]bool, mode ZOrder) []*domain.Component {
	out := make([]*domain.Component, 0, len(list))
	switch mode {
	case BringToFront, SendToBack:
		var picked, rest []*domain.Component
		for _, c := range list {
			if selected[c.ID] {
				picked = append(picked, c)
			} else {
				rest = append(rest, c)
			}
		}
		if mode == BringToFront {
			return append(append(out, rest...), picked...)
		}
		return append(append(out, picked...), rest...)

	case BringForward:
		out = append(out, list...)
		for i := len(out) - 2; i >= 0; i-- {
			if selected[out[i].ID] && !selected[out[i+1].ID] {
				out[i], out[i+1] = out[i+1], out[i]
			}
		}

	case SendBackward:
		out = append(out, list...)
		for i := 1; i < len(out); i++ {
			if selected[out[i].ID] && !selected[out[i-1].ID] {
				out[i], out[i-1] = out[i-1], out[i]
			}
		}
	}
	return out
}
