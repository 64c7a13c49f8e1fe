// Package metrics exposes Prometheus instrumentation for hyperedge builds
// and matching solves. Every Registry owns a private prometheus.Registry so
// tests and embedded callers never collide on the global one.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics of the module.
type Registry struct {
	// Build metrics
	BuildsTotal      prometheus.Counter
	BuildDuration    prometheus.Histogram
	GroupsTotal      prometheus.Gauge
	HyperedgesTotal  prometheus.Gauge
	BuildErrorsTotal prometheus.Counter

	// Solve metrics
	SolvesTotal         *prometheus.CounterVec
	SolveDuration       *prometheus.HistogramVec
	GreedyAttemptsTotal prometheus.Counter

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry.
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initBuildMetrics()
	r.initSolveMetrics()

	return r
}

// Gatherer returns the underlying registry for exposition.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}
