package multiplets

import (
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
)

// GreedyOptions configures the randomized greedy search.
type GreedyOptions struct {
	// Input is the hyperedge table; nil uses the last built one.
	Input *frame.Table
	// WeightColumn defaults to the session weight column.
	WeightColumn string
	// Attempts is the number of independent passes. Default 10.
	Attempts int
	// Preference orders rows ascending before the random tiebreak; smaller
	// values are taken first. Null preferences sort first. Default literal 0.
	Preference expr.Expr
	// SetAggregator scores one attempt from the weights of its rows.
	// Default Sum.
	SetAggregator Aggregator
	// Seed selects the random streams; 0 uses a fixed default.
	Seed int64
	// Workers bounds the attempts run in parallel. Default 1.
	Workers int
	// Verbose > 0 logs every improvement as [attempt, size, weight,
	// weight/size].
	Verbose int
}

// DefaultGreedyOptions returns the defaults documented on GreedyOptions.
func DefaultGreedyOptions() GreedyOptions {
	return GreedyOptions{
		Attempts:      10,
		Preference:    expr.Lit(0),
		SetAggregator: Sum,
		Workers:       1,
	}
}

// attempt is the outcome of one greedy pass.
type attempt struct {
	rows   []int // taken rows in take order
	weight float64
}

// greedyRun holds the per-call data shared read-only by all attempts.
type greedyRun struct {
	n       int
	pref    []frame.Value
	codes   [][]int // codes[pos][row]: dense identifier code per position
	ncodes  []int
	weights []float64
	agg     Aggregator
	seed    int64
}

// Greedy runs the randomized greedy search and returns the attempt with the
// most rows, then the smallest aggregated weight, then the lowest attempt
// number. The result is a heuristic; see Match for exact strategies.
func (s *Session) Greedy(opts GreedyOptions) (Result, error) {
	const op = "Greedy"
	in, runs, err := s.runGreedy(op, opts)
	if err != nil {
		return Result{}, opErr(op, err)
	}

	best := -1
	for i, a := range runs {
		if best < 0 || len(a.rows) > len(runs[best].rows) ||
			(len(a.rows) == len(runs[best].rows) && a.weight < runs[best].weight) {
			best = i
			s.logImprovement(opts.Verbose, i, a)
		}
	}

	return Result{
		Strategy:    StrategyGreedy,
		Table:       in.table.Take(runs[best].rows),
		Cardinality: len(runs[best].rows),
		Weight:      runs[best].weight,
	}, nil
}

// GreedyByCardinality runs the greedy search and returns, for every
// cardinality reached, the lightest set found with that many rows. When
// topK > 0 only the topK largest cardinalities are kept.
func (s *Session) GreedyByCardinality(topK int, opts GreedyOptions) (map[int]*frame.Table, error) {
	const op = "GreedyByCardinality"
	in, runs, err := s.runGreedy(op, opts)
	if err != nil {
		return nil, opErr(op, err)
	}

	bestOf := make(map[int]int)
	for i, a := range runs {
		h := len(a.rows)
		if b, ok := bestOf[h]; !ok || a.weight < runs[b].weight {
			bestOf[h] = i
			s.logImprovement(opts.Verbose, i, a)
		}
	}

	sizes := make([]int, 0, len(bestOf))
	for h := range bestOf {
		sizes = append(sizes, h)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(sizes)))
	if topK > 0 && len(sizes) > topK {
		sizes = sizes[:topK]
	}
	out := make(map[int]*frame.Table, len(sizes))
	for _, h := range sizes {
		out[h] = in.table.Take(runs[bestOf[h]].rows)
	}

	return out, nil
}

func (s *Session) logImprovement(verbose, i int, a attempt) {
	if verbose <= 0 {
		return
	}
	h := len(a.rows)
	s.log.Info("greedy improvement",
		zap.Int("attempt", i),
		zap.Int("size", h),
		zap.Float64("weight", a.weight),
		zap.Float64("weight_per_size", a.weight/float64(h)),
	)
}

// runGreedy prepares the input and runs every attempt, in parallel when
// Workers > 1. Results are indexed by attempt number.
func (s *Session) runGreedy(op string, opts GreedyOptions) (matchInput, []attempt, error) {
	if !s.ready() {
		return matchInput{}, nil, ErrNotInitialized
	}
	def := DefaultGreedyOptions()
	if opts.Attempts <= 0 {
		opts.Attempts = def.Attempts
	}
	if opts.SetAggregator == nil {
		opts.SetAggregator = def.SetAggregator
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	if opts.Preference.IsZero() {
		opts.Preference = def.Preference
	}
	start := time.Now()

	in, err := s.prepare(op, opts.Input, opts.WeightColumn)
	if err != nil {
		return matchInput{}, nil, err
	}
	// Preferences are evaluated once, before any fan-out: Lua-backed
	// expressions are not safe for concurrent use.
	pref, err := s.resolveExpr(op, opts.Preference).Values(in.table)
	if err != nil {
		return matchInput{}, nil, err
	}

	run := greedyRun{
		n:       in.table.Height(),
		pref:    pref,
		weights: in.weights,
		agg:     opts.SetAggregator,
		seed:    opts.Seed,
	}
	if err = run.encodeIDs(in.table, s.IDColumns()); err != nil {
		return matchInput{}, nil, err
	}

	runs := make([]attempt, opts.Attempts)
	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for i := range runs {
		i := i
		g.Go(func() error {
			runs[i] = run.attempt(i)
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return matchInput{}, nil, err
	}

	s.metrics.RecordGreedyAttempts(opts.Attempts)
	s.metrics.RecordSolve(StrategyGreedy.String(), "ok", time.Since(start))

	return in, runs, nil
}

// encodeIDs maps every identifier of every position to a dense code so an
// attempt can track used identifiers in flat slices.
func (r *greedyRun) encodeIDs(t *frame.Table, ids []string) error {
	r.codes = make([][]int, len(ids))
	r.ncodes = make([]int, len(ids))
	for p, c := range ids {
		groups, err := t.GroupBy(c)
		if err != nil {
			return err
		}
		codes := make([]int, t.Height())
		for g, grp := range groups {
			for _, row := range grp.Rows {
				codes[row] = g
			}
		}
		r.codes[p] = codes
		r.ncodes[p] = len(groups)
	}
	return nil
}

// comparePreference orders preference cells ascending with nulls first.
func comparePreference(a, b frame.Value) int {
	switch an, bn := a.IsNull(), b.IsNull(); {
	case an && bn:
		return 0
	case an:
		return -1
	case bn:
		return 1
	}
	return frame.Compare(a, b)
}

// attempt runs one pass: a fresh random tiebreak, a stable sort by
// (preference, tiebreak), then repeatedly take the first remaining row and
// drop every row sharing an identifier with it.
func (r *greedyRun) attempt(i int) attempt {
	rnd := permRange(r.n, attemptRNG(r.seed, i))
	order := make([]int, r.n)
	for k := range order {
		order[k] = k
	}
	sort.SliceStable(order, func(a, b int) bool {
		ra, rb := order[a], order[b]
		if d := comparePreference(r.pref[ra], r.pref[rb]); d != 0 {
			return d < 0
		}
		return rnd[ra] < rnd[rb]
	})

	used := make([][]bool, len(r.codes))
	for p := range used {
		used[p] = make([]bool, r.ncodes[p])
	}
	var (
		taken []int
		ws    []float64
	)
scan:
	for _, row := range order {
		for p := range r.codes {
			if used[p][r.codes[p][row]] {
				continue scan
			}
		}
		for p := range r.codes {
			used[p][r.codes[p][row]] = true
		}
		taken = append(taken, row)
		ws = append(ws, r.weights[row])
	}

	var w float64
	if len(ws) > 0 {
		// A NaN score (all weights null) loses every comparison.
		if w = r.agg(ws); math.IsNaN(w) {
			w = math.Inf(1)
		}
	}
	return attempt{rows: taken, weight: w}
}
