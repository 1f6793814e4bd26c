package observability_test

import (
	"context"
	"testing"

	"github.com/aretw0/formwork/pkg/adapters/memory"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/observability"
	"github.com/aretw0/formwork/pkg/ports"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentStore_Contract(t *testing.T) {
	ports.RunDefinitionStoreContract(t, observability.InstrumentStore(memory.NewStore(), observability.NewMetrics()))
}

func TestInstrumentStore_Counts(t *testing.T) {
	m := observability.NewMetrics()
	store := observability.InstrumentStore(memory.NewStore(), m)
	ctx := context.Background()

	def := domain.DefaultDefinition()
	assert.NoError(t, store.Save(ctx, "a", &def))
	_, err := store.Load(ctx, "a")
	assert.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrFormNotFound)

	out := scrape(t, m)
	assert.Contains(t, out, `formwork_store_operations_total{op="save",result="ok"} 1`)
	assert.Contains(t, out, `formwork_store_operations_total{op="load",result="ok"} 2`)
}
