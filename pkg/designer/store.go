package designer

import (
	"log/slog"
	"slices"

	"github.com/aretw0/formwork/internal/logging"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/google/uuid"
)

// Default settings applied by New.
const (
	DefaultGridSize        = 10
	DefaultDuplicateOffset = 20
	MinZoom                = 0.1
	MaxZoom                = 4.0
)

// GridSettings controls coordinate snapping.
type GridSettings struct {
	Size float64 `json:"size"`
	Snap bool    `json:"snap"`
}

// Selection is the ordered list of selected component ids plus the primary (anchor) id.
type Selection struct {
	IDs     []string `json:"ids"`
	Primary string   `json:"primary,omitempty"`
}

// Change describes one applied command. Previous and Current share component values with
// the store and must be treated as read-only.
type Change struct {
	Command  string
	Previous domain.Definition
	Current  domain.Definition
}

// Listener is invoked synchronously after every applied command.
type Listener func(Change)

// Store is the live document together with its transient editing state.
type Store struct {
	forest []*domain.Component
	canvas domain.Size
	zoom   float64

	selected []string
	primary  string

	hover  string
	drag   *DragPayload
	drop   *DropTarget
	guides []SnapGuide

	grid            GridSettings
	duplicateOffset float64

	newID     func() string
	logger    *slog.Logger
	listeners []Listener
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a structured logger for skipped commands.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithIDGenerator replaces the default UUID generator for new components and slots.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

// WithGrid sets the initial grid settings.
func WithGrid(grid GridSettings) Option {
	return func(s *Store) {
		s.grid = grid
	}
}

// WithDuplicateOffset sets the nudge applied to root-level duplicates.
func WithDuplicateOffset(offset float64) Option {
	return func(s *Store) {
		s.duplicateOffset = offset
	}
}

// WithCanvas sets the initial canvas size and zoom of the empty document.
func WithCanvas(size domain.Size, zoom float64) Option {
	return func(s *Store) {
		if size.Width > 0 && size.Height > 0 {
			s.canvas = size
		}
		if zoom > 0 {
			s.zoom = clampZoom(zoom)
		}
	}
}

// WithListener registers a change listener.
func WithListener(l Listener) Option {
	return func(s *Store) {
		s.listeners = append(s.listeners, l)
	}
}

// New creates a store holding the empty default document.
func New(opts ...Option) *Store {
	def := domain.DefaultDefinition()
	s := &Store{
		canvas:          def.CanvasSize,
		zoom:            def.Zoom,
		grid:            GridSettings{Size: DefaultGridSize},
		duplicateOffset: DefaultDuplicateOffset,
		newID:           uuid.NewString,
		logger:          logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a change listener after construction.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Forest returns the live forest. Components are immutable values and must not be modified.
func (s *Store) Forest() []*domain.Component {
	return s.forest
}

// Component returns the component with the given id.
func (s *Store) Component(id string) (*domain.Component, bool) {
	return tree.Find(s.forest, id)
}

// Locate returns the location of the component with the given id.
func (s *Store) Locate(id string) (tree.Location, bool) {
	return tree.Locate(s.forest, id)
}

// CanvasSize returns the canvas size.
func (s *Store) CanvasSize() domain.Size { return s.canvas }

// Zoom returns the zoom factor.
func (s *Store) Zoom() float64 { return s.zoom }

// Grid returns the grid settings.
func (s *Store) Grid() GridSettings { return s.grid }

// Selection returns a copy of the current selection.
func (s *Store) Selection() Selection {
	return Selection{IDs: slices.Clone(s.selected), Primary: s.primary}
}

// IsSelected reports whether id is part of the selection.
func (s *Store) IsSelected(id string) bool {
	return slices.Contains(s.selected, id)
}

// definition returns the current document sharing component values with the store.
func (s *Store) definition() domain.Definition {
	return domain.Definition{
		Version:    domain.DefinitionVersion,
		Components: s.forest,
		CanvasSize: s.canvas,
		Zoom:       s.zoom,
	}
}

// change runs fn as one committed transition and notifies listeners.
func (s *Store) change(command string, fn func()) {
	prev := s.definition()
	fn()
	s.prune()
	if len(s.listeners) == 0 {
		return
	}
	c := Change{Command: command, Previous: prev, Current: s.definition()}
	for _, l := range s.listeners {
		l(c)
	}
}

func (s *Store) commit(command string, forest []*domain.Component) bool {
	s.change(command, func() {
		s.forest = forest
	})
	return true
}

// skip logs a rejected command. It always returns false so callers can return it directly.
func (s *Store) skip(command, reason string, args ...any) bool {
	s.logger.Debug("command skipped", append([]any{"command", command, "reason", reason}, args...)...)
	return false
}

// prune drops every transient reference that no longer resolves in the forest.
func (s *Store) prune() {
	if len(s.selected) > 0 {
		present := make(map[string]bool)
		tree.Walk(s.forest, func(c *domain.Component) bool {
			present[c.ID] = true
			return true
		})
		kept := s.selected[:0:0]
		for _, id := range s.selected {
			if present[id] {
				kept = append(kept, id)
			}
		}
		s.selected = kept
		if s.primary != "" && !present[s.primary] {
			s.primary = ""
			if len(kept) > 0 {
				s.primary = kept[0]
			}
		}
	}
	if len(s.selected) == 0 {
		s.selected = nil
		s.primary = ""
	}

	if s.hover != "" {
		if _, ok := tree.Find(s.forest, s.hover); !ok {
			s.hover = ""
		}
	}
	if s.drag != nil && s.drag.ComponentID != "" {
		if _, ok := tree.Find(s.forest, s.drag.ComponentID); !ok {
			s.drag = nil
		}
	}
	if s.drop != nil {
		if _, ok := tree.ChildrenFor(s.forest, s.drop.Target); !ok {
			s.drop = nil
		}
	}
}

func clampZoom(z float64) float64 {
	return min(max(z, MinZoom), MaxZoom)
}
