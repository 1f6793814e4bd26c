package observability

import (
	"context"
	"errors"

	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/ports"
)

// instrumentedStore counts every call to the wrapped store.
type instrumentedStore struct {
	next    ports.DefinitionStore
	metrics *Metrics
}

// InstrumentStore wraps store so that each operation is recorded in m.
// A missing form on Load counts as "ok".
func InstrumentStore(store ports.DefinitionStore, m *Metrics) ports.DefinitionStore {
	return &instrumentedStore{next: store, metrics: m}
}

func (s *instrumentedStore) Save(ctx context.Context, formID string, def *domain.Definition) error {
	err := s.next.Save(ctx, formID, def)
	s.metrics.StoreOp("save", err)
	return err
}

func (s *instrumentedStore) Load(ctx context.Context, formID string) (*domain.Definition, error) {
	def, err := s.next.Load(ctx, formID)
	if errors.Is(err, domain.ErrFormNotFound) {
		s.metrics.StoreOp("load", nil)
	} else {
		s.metrics.StoreOp("load", err)
	}
	return def, err
}

func (s *instrumentedStore) Delete(ctx context.Context, formID string) error {
	err := s.next.Delete(ctx, formID)
	s.metrics.StoreOp("delete", err)
	return err
}

func (s *instrumentedStore) List(ctx context.Context) ([]string, error) {
	ids, err := s.next.List(ctx)
	s.metrics.StoreOp("list", err)
	return ids, err
}
