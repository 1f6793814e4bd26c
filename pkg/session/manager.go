package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/aretw0/formwork/internal/logging"
	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a form's distributed lock.
const DefaultLockTTL = 30 * time.Second

// Listener observes changes applied to any open form.
type Listener func(formID string, change designer.Change)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// liveForm is an open document and whether it differs from the stored copy.
type liveForm struct {
	store *designer.Store
	dirty bool
}

// Manager orchestrates access to open forms.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.DefinitionStore

	mu    sync.Mutex            // guards locks and forms
	locks map[string]*lockEntry // per-form locks
	forms map[string]*liveForm  // open documents

	locker   ports.DistributedLocker
	lockTTL  time.Duration
	autosave bool
	options  []designer.Option
	watchers []Listener
	opened   func(formID string, def *domain.Definition)
	closed   func(formID string)
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithAutosave persists a form after every command that changed its document.
func WithAutosave(enabled bool) Option {
	return func(m *Manager) {
		m.autosave = enabled
	}
}

// WithDesignerOptions is applied to every designer.Store the manager opens.
func WithDesignerOptions(opts ...designer.Option) Option {
	return func(m *Manager) {
		m.options = append(m.options, opts...)
	}
}

// WithListener observes changes on every open form.
func WithListener(l Listener) Option {
	return func(m *Manager) {
		m.watchers = append(m.watchers, l)
	}
}

// WithLifecycle registers callbacks for forms entering and leaving memory.
func WithLifecycle(opened func(formID string, def *domain.Definition), closed func(formID string)) Option {
	return func(m *Manager) {
		m.opened = opened
		m.closed = closed
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Manager persisting through store.
func NewManager(store ports.DefinitionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		forms:   make(map[string]*liveForm),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(formID) after unlocking.
func (m *Manager) acquire(formID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[formID]
	if !exists {
		entry = &lockEntry{}
		m.locks[formID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(formID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[formID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, formID)
	}
}

// WithLock executes fn while holding the local and, if configured, distributed lock of formID.
func (m *Manager) WithLock(ctx context.Context, formID string, fn func(context.Context) error) error {
	entry := m.acquire(formID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(formID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, formID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"form_id", formID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func (m *Manager) live(formID string) (*liveForm, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.forms[formID]
	return f, ok
}

// attach builds a designer store for def and registers it as open. Caller holds the form lock.
func (m *Manager) attach(formID string, def domain.Definition, dirty bool) *liveForm {
	f := &liveForm{dirty: dirty}
	opts := append(slices.Clone(m.options), designer.WithListener(func(c designer.Change) {
		if domain.Diff(formID, &c.Previous, &c.Current) != nil {
			f.dirty = true
		}
		for _, w := range m.watchers {
			w(formID, c)
		}
	}))
	f.store = designer.New(opts...)
	f.store.Load(def)
	f.dirty = dirty

	m.mu.Lock()
	m.forms[formID] = f
	m.mu.Unlock()

	if m.opened != nil {
		saved := f.store.Save()
		m.opened(formID, &saved)
	}
	m.logger.Debug("form opened", "form_id", formID)
	return f
}

// open returns the live form, loading it from the store or creating an empty one.
// Caller holds the form lock.
func (m *Manager) open(ctx context.Context, formID string) (*liveForm, error) {
	if f, ok := m.live(formID); ok {
		return f, nil
	}

	def, err := m.store.Load(ctx, formID)
	switch {
	case err == nil:
		return m.attach(formID, *def, false), nil
	case errors.Is(err, domain.ErrFormNotFound):
		return m.attach(formID, domain.DefaultDefinition(), true), nil
	default:
		return nil, fmt.Errorf("failed to load form %q: %w", formID, err)
	}
}

// Open loads formID into memory, creating an empty document if the store has none.
// It returns the document as loaded.
func (m *Manager) Open(ctx context.Context, formID string) (domain.Definition, error) {
	var def domain.Definition
	err := m.WithLock(ctx, formID, func(ctx context.Context) error {
		f, err := m.open(ctx, formID)
		if err != nil {
			return err
		}
		def = f.store.Save()
		return nil
	})
	return def, err
}

// Replace loads def as the content of formID, discarding any open document.
// Used to create forms from templates or imported files.
func (m *Manager) Replace(ctx context.Context, formID string, def domain.Definition) (domain.Definition, error) {
	var out domain.Definition
	err := m.WithLock(ctx, formID, func(ctx context.Context) error {
		if f, ok := m.live(formID); ok {
			f.store.Load(def)
			f.dirty = true
			out = f.store.Save()
			return m.autosaveLocked(ctx, formID, f)
		}
		f := m.attach(formID, def, true)
		out = f.store.Save()
		return m.autosaveLocked(ctx, formID, f)
	})
	return out, err
}

// Do runs fn against the open document of formID, opening it first if needed.
// Commands issued inside fn are serialized with every other caller of the same form.
func (m *Manager) Do(ctx context.Context, formID string, fn func(*designer.Store) error) error {
	return m.WithLock(ctx, formID, func(ctx context.Context) error {
		f, err := m.open(ctx, formID)
		if err != nil {
			return err
		}
		if err := fn(f.store); err != nil {
			return err
		}
		return m.autosaveLocked(ctx, formID, f)
	})
}

// Apply dispatches a named command to formID.
func (m *Manager) Apply(ctx context.Context, formID string, cmd designer.Command) (designer.Result, error) {
	var res designer.Result
	err := m.Do(ctx, formID, func(s *designer.Store) error {
		var err error
		res, err = s.Apply(cmd)
		return err
	})
	return res, err
}

// State returns a snapshot of the document and its editing state.
func (m *Manager) State(ctx context.Context, formID string) (designer.State, error) {
	var st designer.State
	err := m.Do(ctx, formID, func(s *designer.Store) error {
		st = s.State()
		return nil
	})
	return st, err
}

func (m *Manager) autosaveLocked(ctx context.Context, formID string, f *liveForm) error {
	if !m.autosave || !f.dirty {
		return nil
	}
	return m.saveLocked(ctx, formID, f)
}

func (m *Manager) saveLocked(ctx context.Context, formID string, f *liveForm) error {
	def := f.store.Save()
	if err := m.store.Save(ctx, formID, &def); err != nil {
		return fmt.Errorf("failed to save form %q: %w", formID, err)
	}
	f.dirty = false
	m.logger.Debug("form saved", "form_id", formID, "components", len(def.Components))
	return nil
}

// Save persists the open document of formID. Saving a form that is not open is a no-op.
func (m *Manager) Save(ctx context.Context, formID string) error {
	return m.WithLock(ctx, formID, func(ctx context.Context) error {
		f, ok := m.live(formID)
		if !ok {
			return nil
		}
		return m.saveLocked(ctx, formID, f)
	})
}

// Dirty reports whether the open document of formID has unsaved changes.
func (m *Manager) Dirty(formID string) bool {
	f, ok := m.live(formID)
	if !ok {
		return false
	}
	entry := m.acquire(formID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(formID)
	}()
	return f.dirty
}

// Close drops formID from memory, saving it first when save is set.
func (m *Manager) Close(ctx context.Context, formID string, save bool) error {
	return m.WithLock(ctx, formID, func(ctx context.Context) error {
		f, ok := m.live(formID)
		if !ok {
			return nil
		}
		if save && f.dirty {
			if err := m.saveLocked(ctx, formID, f); err != nil {
				return err
			}
		}
		m.detach(formID)
		return nil
	})
}

func (m *Manager) detach(formID string) {
	m.mu.Lock()
	delete(m.forms, formID)
	m.mu.Unlock()
	if m.closed != nil {
		m.closed(formID)
	}
	m.logger.Debug("form closed", "form_id", formID)
}

// CloseAll saves and closes every open form. Errors are joined.
func (m *Manager) CloseAll(ctx context.Context) error {
	var errs []error
	for _, id := range m.OpenForms() {
		errs = append(errs, m.Close(ctx, id, true))
	}
	return errors.Join(errs...)
}

// OpenForms returns the IDs of forms currently in memory, sorted.
func (m *Manager) OpenForms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.forms))
	for id := range m.forms {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Delete closes formID without saving and removes it from the store.
func (m *Manager) Delete(ctx context.Context, formID string) error {
	return m.WithLock(ctx, formID, func(ctx context.Context) error {
		if _, ok := m.live(formID); ok {
			m.detach(formID)
		}
		return m.store.Delete(ctx, formID)
	})
}

// List returns stored form IDs together with forms open but not yet saved, sorted.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	ids, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}
	ids = append(slices.Clone(ids), m.OpenForms()...)
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// Store returns the underlying definition store.
func (m *Manager) Store() ports.DefinitionStore {
	return m.store
}
