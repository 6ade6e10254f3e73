package metrics

import (
	"sort"

	"github.com/prometheus/client_golang/prometheus"
)

// Metric name prefixes used unless overridden.
const (
	DefaultNamespace = "fieldtrials"
	DefaultSubsystem = "analytics"
)

// DefaultLatencyBuckets covers computations in milliseconds, from a cached
// small session up to a multi-second workbook parse.
var DefaultLatencyBuckets = []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 1000, 2500, 5000}

// DefaultHTTPBuckets covers request handling in milliseconds. Uploads and
// dashboard renders dominate the upper buckets.
var DefaultHTTPBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// Option configures a Manager.
type Option func(*Manager)

// WithNamespace overrides DefaultNamespace. Empty values are ignored.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides DefaultSubsystem. Empty values are ignored.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the computation latency buckets.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if b := sortedBuckets(buckets); b != nil {
			m.histogramBuckets = b
		}
	}
}

// WithHTTPBuckets sets the HTTP request duration buckets.
func WithHTTPBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if b := sortedBuckets(buckets); b != nil {
			m.httpBuckets = b
		}
	}
}

// WithPrometheusRegistry registers collectors on registry instead of the default one.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// sortedBuckets returns an ascending copy, or nil when buckets is empty.
// Prometheus panics on unsorted bucket bounds.
func sortedBuckets(buckets []float64) []float64 {
	if len(buckets) == 0 {
		return nil
	}
	out := append([]float64(nil), buckets...)
	sort.Float64s(out)
	return out
}
