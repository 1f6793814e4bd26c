/*
Package observability provides Prometheus metrics for the formwork designer.

Metrics are fed by designer change listeners, so any host that opens forms through a
session.Manager can export command counts and document sizes without touching the
document model.
*/
package observability
