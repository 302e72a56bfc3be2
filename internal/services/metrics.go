package services

import (
	"github.com/ortelius/media-provisioner/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics counts backend operation outcomes
type Metrics struct {
	Registry   *prometheus.Registry
	operations *prometheus.CounterVec
	batches    *prometheus.CounterVec
}

// NewMetrics registers the provisioner counters and the runtime collectors on
// a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provisioner",
			Name:      "operations_total",
			Help:      "Backend account operations by backend, operation, status and failure kind.",
		}, []string{"backend", "operation", "status", "kind"}),
		batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "provisioner",
			Name:      "commands_total",
			Help:      "Commands handled by action and result.",
		}, []string{"action", "result"}),
	}
	m.Registry.MustRegister(
		m.operations,
		m.batches,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe counts one outcome; a nil Metrics is a no-op
func (m *Metrics) Observe(o model.Outcome) {
	if m == nil {
		return
	}
	m.operations.WithLabelValues(string(o.Backend), string(o.Operation), string(o.Status), string(o.Kind)).Inc()
}

// ObserveCommand counts a handled command; result is e.g. "complete",
// "partial", "unauthorized" or "usage"
func (m *Metrics) ObserveCommand(action, result string) {
	if m == nil {
		return
	}
	m.batches.WithLabelValues(action, result).Inc()
}
