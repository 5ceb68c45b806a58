package relfs

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// storeMetrics holds one Store's Prometheus collectors, registered on a
// private registry rather than the global default (spec.md carries no
// metrics surface of its own; this is ambient observability modeled on
// shoal's provisioner/metrics package, scoped per-instance so that
// opening more than one Store in a test process never collides on
// double-registration).
type storeMetrics struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	operationSecs  *prometheus.HistogramVec
	migrationSecs  prometheus.Histogram
}

func newStoreMetrics() *storeMetrics {
	registry := prometheus.NewRegistry()

	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gitvfs",
		Subsystem: "relfs",
		Name:      "operations_total",
		Help:      "Total filesystem operations grouped by method and result.",
	}, []string{"op", "result"})

	operationSecs := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gitvfs",
		Subsystem: "relfs",
		Name:      "operation_duration_seconds",
		Help:      "Duration of filesystem operations by method.",
		Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.5, 1, 5},
	}, []string{"op"})

	migrationSecs := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gitvfs",
		Subsystem: "relfs",
		Name:      "schema_migration_duration_seconds",
		Help:      "Duration of the v1-to-v2 schema migration, when it runs.",
		Buckets:   []float64{0.01, 0.1, 0.5, 1, 5, 30, 120},
	})

	registry.MustRegister(operations, operationSecs, migrationSecs)

	return &storeMetrics{
		registry:      registry,
		operations:    operations,
		operationSecs: operationSecs,
		migrationSecs: migrationSecs,
	}
}

// Registry exposes the store's private Prometheus registry, for a
// caller that wants to serve it over its own /metrics endpoint.
func (s *Store) Registry() *prometheus.Registry {
	return s.metrics.registry
}

func (m *storeMetrics) observe(op string, d time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operations.WithLabelValues(op, result).Inc()
	m.operationSecs.WithLabelValues(op).Observe(d.Seconds())
}

func (m *storeMetrics) observeMigration(d time.Duration) {
	m.migrationSecs.Observe(d.Seconds())
}
