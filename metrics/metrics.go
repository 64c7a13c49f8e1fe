package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RecordBuild records a successful hyperedge build. A nil registry is a no-op.
func (r *Registry) RecordBuild(groups, hyperedges int, duration time.Duration) {
	if r == nil {
		return
	}
	r.BuildsTotal.Inc()
	r.BuildDuration.Observe(duration.Seconds())
	r.GroupsTotal.Set(float64(groups))
	r.HyperedgesTotal.Set(float64(hyperedges))
}

// RecordBuildError counts a failed build.
func (r *Registry) RecordBuildError() {
	if r == nil {
		return
	}
	r.BuildErrorsTotal.Inc()
}

// RecordSolve records one matching solve with its outcome.
func (r *Registry) RecordSolve(strategy, status string, duration time.Duration) {
	if r == nil {
		return
	}
	r.SolvesTotal.WithLabelValues(strategy, status).Inc()
	r.SolveDuration.WithLabelValues(strategy).Observe(duration.Seconds())
}

// RecordGreedyAttempts adds n completed greedy attempts.
func (r *Registry) RecordGreedyAttempts(n int) {
	if r == nil {
		return
	}
	r.GreedyAttemptsTotal.Add(float64(n))
}

// WriteTextfile writes the current metrics in the text exposition format,
// for the node_exporter textfile collector.
func (r *Registry) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
