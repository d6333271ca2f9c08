package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"numbench/internal/benchmark"
)

// Metrics represents the collection of benchmark Prometheus metrics
type Metrics struct {
	OperationDuration *prometheus.HistogramVec
	OperationSeconds  *prometheus.GaugeVec
	OperationsTotal   *prometheus.CounterVec
	VerifyFailures    *prometheus.CounterVec
	LastRunTimestamp  prometheus.Gauge

	registry *prometheus.Registry
}

// NewMetrics creates all metrics on a private registry.
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.OperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "numbench_operation_duration_seconds",
			Help:    "Wall-clock duration of one benchmarked operation",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 12),
		},
		[]string{"operation", "group"},
	)

	m.OperationSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "numbench_operation_last_seconds",
			Help: "Most recent per-iteration duration of each operation",
		},
		[]string{"operation", "group"},
	)

	m.OperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "numbench_operations_total",
			Help: "Total number of timed operation iterations",
		},
		[]string{"operation", "group"},
	)

	m.VerifyFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "numbench_verify_failures_total",
			Help: "Variants whose result disagreed with the reference",
		},
		[]string{"operation"},
	)

	m.LastRunTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "numbench_last_run_timestamp_seconds",
			Help: "Unix time the last benchmark run finished",
		},
	)

	m.registry.MustRegister(
		m.OperationDuration,
		m.OperationSeconds,
		m.OperationsTotal,
		m.VerifyFailures,
		m.LastRunTimestamp,
	)
	return m
}

// Observe records one benchmark result.
func (m *Metrics) Observe(r benchmark.Result) {
	m.OperationDuration.WithLabelValues(r.Name, r.Group).Observe(r.Seconds)
	m.OperationSeconds.WithLabelValues(r.Name, r.Group).Set(r.Seconds)
	m.OperationsTotal.WithLabelValues(r.Name, r.Group).Add(float64(r.Iterations))
}

// ObserveRun records the completion time of a run.
func (m *Metrics) ObserveRun(run benchmark.Run) {
	m.LastRunTimestamp.Set(float64(run.Timestamp.UnixNano()) / 1e9)
}

// VerifyFailed counts a failed equivalence check.
func (m *Metrics) VerifyFailed(operation string) {
	m.VerifyFailures.WithLabelValues(operation).Inc()
}

// Handler returns the Prometheus HTTP handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile writes the metrics in text exposition format, for node_exporter's
// textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
