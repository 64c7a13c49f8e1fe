package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.BuildsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kpartite_builds_total",
			Help: "Total number of hyperedge builds",
		},
	)

	r.BuildErrorsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kpartite_build_errors_total",
			Help: "Total number of hyperedge builds that failed",
		},
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kpartite_build_duration_seconds",
			Help:    "Duration of hyperedge builds in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	r.GroupsTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kpartite_groups",
			Help: "Number of groups in the last build",
		},
	)

	r.HyperedgesTotal = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "kpartite_hyperedges",
			Help: "Number of hyperedges produced by the last build",
		},
	)
}

func (r *Registry) initSolveMetrics() {
	r.SolvesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kpartite_solves_total",
			Help: "Total number of matching solves",
		},
		[]string{"strategy", "status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kpartite_solve_duration_seconds",
			Help:    "Matching solve latency in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 30, 120},
		},
		[]string{"strategy"},
	)

	r.GreedyAttemptsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "kpartite_greedy_attempts_total",
			Help: "Total number of greedy attempts run",
		},
	)
}
