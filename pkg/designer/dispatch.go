package designer

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/mitchellh/mapstructure"
)

// Command is a named command with loosely typed arguments, as received from HTTP or MCP
// clients.
type Command struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// Result reports the outcome of an applied command.
type Result struct {
	Applied bool     `json:"applied"`
	ID      string   `json:"id,omitempty"`
	IDs     []string `json:"ids,omitempty"`
}

type handler func(s *Store, args map[string]any) (Result, error)

var handlers = map[string]handler{
	"add": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			Component any
			Target    domain.ContainerTarget
			Index     *int
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		c, err := toComponent(in.Component)
		if err != nil {
			return Result{}, err
		}
		id := s.Add(c, in.Target, indexOr(in.Index))
		return Result{Applied: id != "", ID: id}, nil
	},
	"addTree": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			Components []any
			Target     domain.ContainerTarget
			Index      *int
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		fragment := make([]*domain.Component, 0, len(in.Components))
		for _, raw := range in.Components {
			c, err := toComponent(raw)
			if err != nil {
				return Result{}, err
			}
			fragment = append(fragment, c)
		}
		ids := s.AddTree(fragment, in.Target, indexOr(in.Index))
		return Result{Applied: len(ids) > 0, IDs: ids}, nil
	},
	"remove": withID(func(s *Store, id string) bool { return s.Remove(id) }),
	"removeMany": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ IDs []string }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.RemoveMany(in.IDs)}, nil
	},
	"update": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			ID    string
			Patch domain.ComponentPatch
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.Update(in.ID, in.Patch), ID: in.ID}, nil
	},
	"move": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			ID       string
			Position domain.Point
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.Move(in.ID, in.Position), ID: in.ID}, nil
	},
	"resize": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			ID   string
			Size domain.Size
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.Resize(in.ID, in.Size), ID: in.ID}, nil
	},
	"moveTo": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			ID     string
			Target domain.ContainerTarget
			Index  *int
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.MoveTo(in.ID, in.Target, indexOr(in.Index)), ID: in.ID}, nil
	},
	"duplicate": func(s *Store, args map[string]any) (Result, error) {
		id, err := idArg(args)
		if err != nil {
			return Result{}, err
		}
		clone := s.Duplicate(id)
		return Result{Applied: clone != "", ID: clone}, nil
	},
	"select":         withID(func(s *Store, id string) bool { return s.Select(id) }),
	"toggle":         withID(func(s *Store, id string) bool { return s.Toggle(id) }),
	"addToSelection": withID(func(s *Store, id string) bool { return s.AddToSelection(id) }),
	"setHover":       withID(func(s *Store, id string) bool { return s.SetHover(id) }),
	"setSelection": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			IDs     []string
			Primary string
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.SetSelection(in.IDs, in.Primary)}, nil
	},
	"clearSelection": noArgs(func(s *Store) bool { return s.ClearSelection() }),
	"selectAll":      noArgs(func(s *Store) bool { return s.SelectAll() }),
	"align": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Mode AlignMode }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.Align(in.Mode)}, nil
	},
	"matchSizes": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Mode SizeMode }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.MatchSizes(in.Mode)}, nil
	},
	"distribute": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Axis Axis }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.Distribute(in.Axis)}, nil
	},
	"equalizeSpacing": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Axis Axis }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.EqualizeSpacing(in.Axis)}, nil
	},
	"reorderZ": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Mode ZOrder }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.ReorderZ(in.Mode)}, nil
	},
	"group": func(s *Store, _ map[string]any) (Result, error) {
		id := s.Group()
		return Result{Applied: id != "", ID: id}, nil
	},
	"ungroup": func(s *Store, _ map[string]any) (Result, error) {
		applied := s.Ungroup()
		r := Result{Applied: applied}
		if applied {
			r.IDs = s.Selection().IDs
		}
		return r, nil
	},
	"toggleLock":   noArgs(func(s *Store) bool { return s.ToggleLock() }),
	"toggleHidden": noArgs(func(s *Store) bool { return s.ToggleHidden() }),
	"addSlot": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			ComponentID string
			Title       string
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		id := s.AddSlot(in.ComponentID, in.Title)
		return Result{Applied: id != "", ID: id}, nil
	},
	"removeSlot": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ ComponentID, SlotID string }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.RemoveSlot(in.ComponentID, in.SlotID)}, nil
	},
	"renameSlot": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ ComponentID, SlotID, Title string }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.RenameSlot(in.ComponentID, in.SlotID, in.Title)}, nil
	},
	"setGrid": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			Size float64
			Snap bool
		}
		in.Size = s.grid.Size
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.SetGrid(in.Size, in.Snap)}, nil
	},
	"setCanvasSize": func(s *Store, args map[string]any) (Result, error) {
		var in domain.Size
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.SetCanvasSize(in)}, nil
	},
	"setZoom": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Zoom float64 }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.SetZoom(in.Zoom)}, nil
	},
	"beginDrag": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			ComponentID string
			Component   any
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		payload := DragPayload{ComponentID: in.ComponentID}
		if in.Component != nil {
			c, err := toComponent(in.Component)
			if err != nil {
				return Result{}, err
			}
			payload.Component = c
		}
		return Result{Applied: s.BeginDrag(payload)}, nil
	},
	"setDropTarget": func(s *Store, args map[string]any) (Result, error) {
		var in struct {
			Target *domain.ContainerTarget
			Index  *int
		}
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.SetDropTarget(in.Target, indexOr(in.Index))}, nil
	},
	"setSnapGuides": func(s *Store, args map[string]any) (Result, error) {
		var in struct{ Guides []SnapGuide }
		if err := decode(args, &in); err != nil {
			return Result{}, err
		}
		return Result{Applied: s.SetSnapGuides(in.Guides)}, nil
	},
	"cancelDrag": noArgs(func(s *Store) bool { return s.CancelDrag() }),
	"drop": func(s *Store, _ map[string]any) (Result, error) {
		id, ok := s.Drop()
		return Result{Applied: ok, ID: id}, nil
	},
	"load": func(s *Store, args map[string]any) (Result, error) {
		raw, err := json.Marshal(args["definition"])
		if err != nil {
			return Result{}, fmt.Errorf("%w: definition: %v", domain.ErrInvalidArguments, err)
		}
		def, err := domain.DecodeDefinition(raw)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
		}
		s.Load(def)
		return Result{Applied: true}, nil
	},
}

// Commands returns the names accepted by Apply, sorted.
func Commands() []string {
	names := make([]string, 0, len(handlers))
	for name := range handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Apply runs a named command. The only errors are boundary errors: ErrUnknownCommand and
// ErrInvalidArguments. A command whose preconditions fail returns Applied false.
func (s *Store) Apply(cmd Command) (Result, error) {
	h, ok := handlers[cmd.Name]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", domain.ErrUnknownCommand, cmd.Name)
	}
	args := cmd.Args
	if args == nil {
		args = map[string]any{}
	}
	return h(s, args)
}

func decode(args map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err)
	}
	return nil
}

// toComponent converts loosely typed component data through its JSON wire form so that
// nested collections land in their typed fields.
func toComponent(v any) (*domain.Component, error) {
	if v == nil {
		return nil, fmt.Errorf("%w: missing component", domain.ErrInvalidArguments)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: component: %v", domain.ErrInvalidArguments, err)
	}
	var c domain.Component
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: component: %v", domain.ErrInvalidArguments, err)
	}
	return &c, nil
}

func idArg(args map[string]any) (string, error) {
	var in struct{ ID string }
	if err := decode(args, &in); err != nil {
		return "", err
	}
	return in.ID, nil
}

func withID(fn func(s *Store, id string) bool) handler {
	return func(s *Store, args map[string]any) (Result, error) {
		id, err := idArg(args)
		if err != nil {
			return Result{}, err
		}
		return Result{Applied: fn(s, id), ID: id}, nil
	}
}

func noArgs(fn func(s *Store) bool) handler {
	return func(s *Store, _ map[string]any) (Result, error) {
		return Result{Applied: fn(s)}, nil
	}
}

func indexOr(index *int) int {
	if index == nil {
		return tree.End
	}
	return *index
}
