package multiplets_test

import (
	"math"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
	"github.com/katalvlaran/kpartite/metrics"
	"github.com/katalvlaran/kpartite/multiplets"
)

// byWeightThenID is a total order on the two-group hyperedges.
func byWeightThenID() expr.Expr {
	return expr.Fn(func(r frame.Row) (float64, error) {
		w, err := r.Float(multiplets.DefaultWeightColumn)
		if err != nil {
			return 0, err
		}
		id, err := r.Float("id_0")
		if err != nil {
			return 0, err
		}
		return w*100 + id, nil
	})
}

func TestGreedy_SinglePassFollowsPreference(t *testing.T) {
	s := built(t, deEntities(), 20)

	for _, seed := range []int64{seedDet, 7, 42} {
		opts := multiplets.DefaultGreedyOptions()
		opts.Attempts = 1
		opts.Preference = byWeightThenID()
		opts.Seed = seed

		res, err := s.Greedy(opts)
		require.NoError(t, err)
		assert.Equal(t, multiplets.StrategyGreedy, res.Strategy)
		// (2,3) is lightest and blocks both other pairs.
		assert.Equal(t, [][]int64{{2, 3}}, ids(t, s, res.Table))
		assert.Equal(t, 10.0, res.Weight)
	}
}

func TestGreedy_NullPreferenceSortsFirst(t *testing.T) {
	s := built(t, deEntities(), 20)
	pref := expr.Fn(func(r frame.Row) (float64, error) {
		a, _ := r.Float("id_0")
		b, _ := r.Float("id_1")
		if a == 2 && b == 3 {
			return math.NaN(), nil
		}
		return 0, nil
	})

	for seed := int64(1); seed <= 5; seed++ {
		res, err := s.Greedy(multiplets.GreedyOptions{Attempts: 1, Preference: pref, Seed: seed})
		require.NoError(t, err)
		// (2,3) has no preference, is taken first and blocks both other pairs.
		assert.Equal(t, [][]int64{{2, 3}}, ids(t, s, res.Table))
	}
}

func TestGreedy_NilPreferenceWarns(t *testing.T) {
	s, logs := observedSession(t, deEntities())
	_, err := s.BuildHyperedges(multiplets.WithWeight(absDiff()), multiplets.WithFilter(expr.AtMost(20)))
	require.NoError(t, err)

	res, err := s.Greedy(multiplets.GreedyOptions{Attempts: 5, Preference: expr.Of(nil)})
	require.NoError(t, err)
	assert.Positive(t, res.Cardinality)
	assert.Equal(t, 1, logs.FilterMessageSnippet("unsupported type").Len())
}

func TestGreedy_FindsMaximumWithEnoughAttempts(t *testing.T) {
	s := built(t, deEntities(), 20)
	opts := multiplets.DefaultGreedyOptions()
	opts.Attempts = 50

	res, err := s.Greedy(opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cardinality)
	assert.Equal(t, 40.0, res.Weight)
}

func TestGreedy_DeterministicAcrossWorkers(t *testing.T) {
	s := built(t, defEntities(), 50)
	opts := multiplets.DefaultGreedyOptions()
	opts.Attempts = 25
	opts.Seed = 99

	base, err := s.Greedy(opts)
	require.NoError(t, err)
	require.True(t, disjoint(t, s, base.Table))

	for _, workers := range []int{1, 2, 8} {
		opts.Workers = workers
		res, err := s.Greedy(opts)
		require.NoError(t, err)
		assert.True(t, base.Table.Equal(res.Table), "workers=%d", workers)
		assert.Equal(t, base.Weight, res.Weight)
	}
}

func TestGreedy_SetAggregator(t *testing.T) {
	s := built(t, deEntities(), 20)
	opts := multiplets.DefaultGreedyOptions()
	opts.Attempts = 50
	opts.SetAggregator = multiplets.Max

	res, err := s.Greedy(opts)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Cardinality)
	assert.Equal(t, 20.0, res.Weight)
}

func TestGreedy_EmptyInput(t *testing.T) {
	s := built(t, defEntities(), 5)

	res, err := s.Greedy(multiplets.GreedyOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Cardinality)
	assert.Zero(t, res.Weight)
}

func TestGreedyByCardinality(t *testing.T) {
	s := built(t, deEntities(), 20)
	opts := multiplets.DefaultGreedyOptions()
	opts.Attempts = 50

	all, err := s.GreedyByCardinality(0, opts)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, [][]int64{{2, 3}}, ids(t, s, all[1]))
	assert.ElementsMatch(t, [][]int64{{1, 3}, {2, 4}}, ids(t, s, all[2]))

	top, err := s.GreedyByCardinality(1, opts)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Contains(t, top, 2)
}

func TestGreedy_VerboseAndMetrics(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	reg := metrics.NewRegistry()
	s := newSession(t, deEntities(), multiplets.WithLogger(zap.New(core)), multiplets.WithMetrics(reg))
	_, err := s.BuildHyperedges(multiplets.WithWeight(absDiff()), multiplets.WithFilter(expr.AtMost(20)))
	require.NoError(t, err)

	opts := multiplets.DefaultGreedyOptions()
	opts.Attempts = 12
	opts.Verbose = 1
	_, err = s.Greedy(opts)
	require.NoError(t, err)

	improvements := logs.FilterMessage("greedy improvement").All()
	require.NotEmpty(t, improvements)
	assert.Equal(t, int64(0), improvements[0].ContextMap()["attempt"])

	var m dto.Metric
	require.NoError(t, reg.GreedyAttemptsTotal.Write(&m))
	assert.Equal(t, 12.0, m.GetCounter().GetValue())
}
