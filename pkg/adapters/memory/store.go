package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/aretw0/formwork/pkg/domain"
)

// Store implements ports.DefinitionStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Definition
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Definition),
	}
}

// Save keeps a private copy of the definition.
func (s *Store) Save(ctx context.Context, formID string, def *domain.Definition) error {
	copied := def.DeepCopy()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[formID] = copied
	return nil
}

// Load returns a copy, so callers can't mutate the stored document through the pointer.
func (s *Store) Load(ctx context.Context, formID string) (*domain.Definition, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	def, ok := s.data[formID]
	if !ok {
		return nil, domain.ErrFormNotFound
	}
	return def.DeepCopy(), nil
}

// Delete removes the definition.
func (s *Store) Delete(ctx context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, formID)
	return nil
}

// List returns stored form IDs in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	forms := make([]string, 0, len(s.data))
	for id := range s.data {
		forms = append(forms, id)
	}
	slices.Sort(forms)
	return forms, nil
}
