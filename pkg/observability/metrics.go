package observability

import (
	"net/http"

	"github.com/aretw0/formwork/pkg/designer"
	"github.com/aretw0/formwork/pkg/tree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the designer collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	commands   *prometheus.CounterVec
	components *prometheus.GaugeVec
	storeOps   *prometheus.CounterVec
	openForms  prometheus.Gauge
}

// NewMetrics creates and registers every collector.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formwork_commands_total",
				Help: "Total number of applied designer commands",
			},
			[]string{"command"},
		),
		components: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "formwork_document_components",
				Help: "Number of components in each open form",
			},
			[]string{"form_id"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "formwork_store_operations_total",
				Help: "Definition store operations by kind and outcome",
			},
			[]string{"op", "result"},
		),
		openForms: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "formwork_open_forms",
			Help: "Number of forms currently held in memory",
		}),
	}
	m.registry.MustRegister(m.commands, m.components, m.storeOps, m.openForms)
	return m
}

// Listener returns a change listener that records commands applied to formID.
func (m *Metrics) Listener(formID string) designer.Listener {
	return func(c designer.Change) {
		m.Observe(formID, c)
	}
}

// Observe records one applied command. Its signature matches session.Listener.
func (m *Metrics) Observe(formID string, c designer.Change) {
	m.commands.WithLabelValues(c.Command).Inc()
	m.components.WithLabelValues(formID).Set(float64(len(tree.IDs(c.Current.Components))))
}

// FormOpened records a form being loaded into memory.
func (m *Metrics) FormOpened(formID string, components int) {
	m.openForms.Inc()
	m.components.WithLabelValues(formID).Set(float64(components))
}

// FormClosed records a form leaving memory.
func (m *Metrics) FormClosed(formID string) {
	m.openForms.Dec()
	m.components.DeleteLabelValues(formID)
}

// StoreOp records one persistence call.
func (m *Metrics) StoreOp(op string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
