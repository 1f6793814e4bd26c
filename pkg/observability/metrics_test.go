package observability_test

import (
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/domain"
	"github.com/aretw0/formwork/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetrics_RecordsCommands(t *testing.T) {
	m := observability.NewMetrics()
	s := designer.New(designer.WithListener(m.Listener("signup")))
	m.FormOpened("signup", 0)

	id := s.Add(&domain.Component{Kind: domain.KindButton}, domain.Root(), -1)
	require.NotEmpty(t, id)
	s.Add(&domain.Component{Kind: domain.KindInput}, domain.Root(), -1)
	s.Remove(id)
	m.StoreOp("save", nil)
	m.StoreOp("load", errors.New("boom"))

	out := scrape(t, m)
	assert.Contains(t, out, `formwork_commands_total{command="add"} 2`)
	assert.Contains(t, out, `formwork_commands_total{command="remove"} 1`)
	assert.Contains(t, out, `formwork_document_components{form_id="signup"} 1`)
	assert.Contains(t, out, `formwork_open_forms 1`)
	assert.Contains(t, out, `formwork_store_operations_total{op="load",result="error"} 1`)
	assert.Contains(t, out, `formwork_store_operations_total{op="save",result="ok"} 1`)

	m.FormClosed("signup")
	out = scrape(t, m)
	assert.NotContains(t, out, `form_id="signup"`)
	assert.Contains(t, out, `formwork_open_forms 0`)
}
