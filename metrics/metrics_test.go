package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	require.NotNil(t, r)
	assert.NotNil(t, r.BuildsTotal)
	assert.NotNil(t, r.SolvesTotal)
	assert.NotNil(t, r.registry)
}

func TestDefaultRegistry(t *testing.T) {
	assert.Same(t, DefaultRegistry(), DefaultRegistry())
}

func TestRecordBuild(t *testing.T) {
	r := NewRegistry()
	r.RecordBuild(3, 12, 20*time.Millisecond)
	r.RecordBuild(3, 7, 10*time.Millisecond)

	var m dto.Metric
	require.NoError(t, r.BuildsTotal.Write(&m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())

	m.Reset()
	require.NoError(t, r.HyperedgesTotal.Write(&m))
	assert.Equal(t, 7.0, m.GetGauge().GetValue())

	m.Reset()
	require.NoError(t, r.BuildDuration.Write(&m))
	assert.Equal(t, uint64(2), m.GetHistogram().GetSampleCount())
}

func TestRecordSolve(t *testing.T) {
	r := NewRegistry()
	r.RecordSolve("assignment", "optimal", time.Millisecond)
	r.RecordSolve("assignment", "optimal", time.Millisecond)
	r.RecordSolve("set_packing", "no_solution", time.Millisecond)
	r.RecordGreedyAttempts(10)

	c, err := r.SolvesTotal.GetMetricWithLabelValues("assignment", "optimal")
	require.NoError(t, err)
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	assert.Equal(t, 2.0, m.GetCounter().GetValue())

	m.Reset()
	require.NoError(t, r.GreedyAttemptsTotal.Write(&m))
	assert.Equal(t, 10.0, m.GetCounter().GetValue())

	families, err := r.Gatherer().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "kpartite_solves_total")
	assert.Contains(t, names, "kpartite_solve_duration_seconds")
}

func TestNilRegistryIsNoop(t *testing.T) {
	var r *Registry
	assert.NotPanics(t, func() {
		r.RecordBuild(2, 1, time.Second)
		r.RecordBuildError()
		r.RecordSolve("greedy", "ok", time.Second)
		r.RecordGreedyAttempts(1)
	})
}

func TestWriteTextfile(t *testing.T) {
	r := NewRegistry()
	r.RecordBuild(2, 5, time.Millisecond)
	path := filepath.Join(t.TempDir(), "kpartite.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "kpartite_hyperedges 5"))
}
