package metrics

import (
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
)

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the HTTP latency buckets in milliseconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if b := sortedBuckets(buckets); b != nil {
			m.histogramBuckets = b
		}
	}
}

// WithBackendBuckets sets the backend latency buckets in milliseconds. Backend
// latency includes retries and backoff, so it usually needs a longer tail
// than HTTP latency.
func WithBackendBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if b := sortedBuckets(buckets); b != nil {
			m.backendBuckets = b
		}
	}
}

// WithMetricsEnabled enables or disables metrics collection.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithCustomLabels adds constant labels (e.g. env, region) to all metrics.
// The map is copied.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.customLabels = maps.Clone(labels)
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

// sortedBuckets returns a sorted, de-duplicated copy, or nil when empty.
// Prometheus panics on buckets that are not strictly increasing.
func sortedBuckets(buckets []float64) []float64 {
	if len(buckets) == 0 {
		return nil
	}
	b := slices.Clone(buckets)
	slices.Sort(b)
	return slices.Compact(b)
}
