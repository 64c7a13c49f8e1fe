// Package multiplets_test holds helpers shared across the *_test.go files of
// this package: canonical entity tables, weight expressions and a random
// instance generator used by the property tests.
package multiplets_test

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
	"github.com/katalvlaran/kpartite/multiplets"
)

const (
	// threshold30 is the pair filter used by the three-group scenario.
	threshold30 = 30.0

	// seedDet is a deterministic greedy seed (0 selects the package default).
	seedDet = int64(0)
)

// defEntities is the three-group scenario: two entities in each of D, E, F.
func defEntities() *frame.Table {
	return frame.MustFromRows([]string{"id", "group", "value"},
		[]any{1, "D", 10},
		[]any{2, "D", 20},
		[]any{3, "E", 30},
		[]any{4, "E", 40},
		[]any{5, "F", 50},
		[]any{6, "F", 60},
	)
}

// deEntities is the two-group scenario: D = {1, 2}, E = {3, 4}.
func deEntities() *frame.Table {
	return frame.MustFromRows([]string{"id", "group", "value"},
		[]any{1, "D", 10},
		[]any{2, "D", 20},
		[]any{3, "E", 30},
		[]any{4, "E", 40},
	)
}

// absDiff is |value_A − value_B|.
func absDiff() expr.Expr {
	return expr.Fn(func(r frame.Row) (float64, error) {
		a, err := r.Float("value_A")
		if err != nil {
			return 0, err
		}
		b, err := r.Float("value_B")
		if err != nil {
			return 0, err
		}
		return math.Abs(a - b), nil
	})
}

// newSession builds a session over t, failing the test on error.
func newSession(t *testing.T, tb *frame.Table, opts ...multiplets.Option) *multiplets.Session {
	t.Helper()
	s, err := multiplets.New(tb, "id", "group", opts...)
	require.NoError(t, err)
	return s
}

// observedSession is newSession with a logger recording Warn and above.
func observedSession(t *testing.T, tb *frame.Table) (*multiplets.Session, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.WarnLevel)
	return newSession(t, tb, multiplets.WithLogger(zap.New(core))), logs
}

// built returns a session over tb with hyperedges built from |Δvalue| and
// the given threshold.
func built(t *testing.T, tb *frame.Table, threshold float64, opts ...multiplets.BuildOption) *multiplets.Session {
	t.Helper()
	s := newSession(t, tb)
	opts = append([]multiplets.BuildOption{
		multiplets.WithWeight(absDiff()),
		multiplets.WithFilter(expr.AtMost(threshold)),
	}, opts...)
	_, err := s.BuildHyperedges(opts...)
	require.NoError(t, err)
	return s
}

// ids returns the identifier tuples of a multiplet table, row by row.
func ids(t *testing.T, s *multiplets.Session, tb *frame.Table) [][]int64 {
	t.Helper()
	cols := make([][]frame.Value, s.NumGroups())
	for i, c := range s.IDColumns() {
		col, err := tb.Column(c)
		require.NoError(t, err)
		cols[i] = col
	}
	out := make([][]int64, tb.Height())
	for r := range out {
		out[r] = make([]int64, len(cols))
		for i := range cols {
			out[r][i], _ = cols[i][r].Int()
		}
	}
	return out
}

// disjoint reports whether no identifier occurs in two rows of tb.
func disjoint(t *testing.T, s *multiplets.Session, tb *frame.Table) bool {
	t.Helper()
	seen := make(map[int64]bool)
	for _, tuple := range ids(t, s, tb) {
		for _, id := range tuple {
			if seen[id] {
				return false
			}
			seen[id] = true
		}
	}
	return true
}

// instance is a random k-partite problem with integer values.
type instance struct {
	entities  *frame.Table
	groups    [][]int // values per group, ids assigned in order from 1
	threshold float64
}

// randomInstance draws k groups of 1..maxSize entities with values in
// [0, 50] and a threshold in [5, 40].
func randomInstance(seed int64, k, maxSize int) instance {
	rng := rand.New(rand.NewSource(seed))
	in := instance{threshold: float64(5 + rng.Intn(36))}
	var rows [][]any
	id := 1
	for g := 0; g < k; g++ {
		n := 1 + rng.Intn(maxSize)
		vals := make([]int, n)
		for i := range vals {
			vals[i] = rng.Intn(51)
			rows = append(rows, []any{id, fmt.Sprintf("g%d", g), vals[i]})
			id++
		}
		in.groups = append(in.groups, vals)
	}
	in.entities = frame.MustFromRows([]string{"id", "group", "value"}, rows...)
	return in
}

// bruteForceCount enumerates every k-tuple and counts those whose pairs are
// all within the threshold.
func (in instance) bruteForceCount() int {
	k := len(in.groups)
	pick := make([]int, k)
	var count int
	var rec func(g int)
	rec = func(g int) {
		if g == k {
			count++
			return
		}
		for i, v := range in.groups[g] {
			ok := true
			for h := 0; h < g; h++ {
				if math.Abs(float64(in.groups[h][pick[h]]-v)) > in.threshold {
					ok = false
					break
				}
			}
			if ok {
				pick[g] = i
				rec(g + 1)
			}
		}
	}
	rec(0)
	return count
}

// shifted returns tb with a "_signed" weight column equal to the weight
// column minus shift, so the weights take both signs.
func shifted(t *testing.T, tb *frame.Table, shift float64) *frame.Table {
	t.Helper()
	col, err := tb.Column(multiplets.DefaultWeightColumn)
	require.NoError(t, err)
	out := make([]frame.Value, len(col))
	for i, v := range col {
		f, _ := v.Float()
		out[i] = frame.Float(f - shift)
	}
	res, err := tb.WithColumn("_signed", out)
	require.NoError(t, err)
	return res
}

// bestPacking enumerates every disjoint subset of the rows of tb and returns
// the largest cardinality and, among those, the smallest total of wcol.
func bestPacking(t *testing.T, s *multiplets.Session, tb *frame.Table, wcol string) (int, float64) {
	t.Helper()
	tuples := ids(t, s, tb)
	col, err := tb.Column(wcol)
	require.NoError(t, err)
	w := make([]float64, len(col))
	for i, v := range col {
		w[i], _ = v.Float()
	}

	var (
		bestCard int
		bestW    float64
		used     = make(map[int64]bool)
		rec      func(r, card int, sum float64)
	)
	rec = func(r, card int, sum float64) {
		if r == len(tuples) {
			if card > bestCard || (card == bestCard && sum < bestW) {
				bestCard, bestW = card, sum
			}
			return
		}
		rec(r+1, card, sum)
		for _, id := range tuples[r] {
			if used[id] {
				return
			}
		}
		for _, id := range tuples[r] {
			used[id] = true
		}
		rec(r+1, card+1, sum+w[r])
		for _, id := range tuples[r] {
			used[id] = false
		}
	}
	rec(0, 0, 0)
	return bestCard, bestW
}
