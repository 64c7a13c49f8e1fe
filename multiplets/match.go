package multiplets

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/frame"
)

// Strategy names a matching strategy.
type Strategy int

const (
	// StrategyGreedy is the randomized greedy search.
	StrategyGreedy Strategy = iota
	// StrategySetPacking is the exact binary-program formulation.
	StrategySetPacking
	// StrategyAssignment is the two-group optimal assignment reduction.
	StrategyAssignment
)

// String returns the snake_case strategy name used in logs and metrics.
func (st Strategy) String() string {
	switch st {
	case StrategyGreedy:
		return "greedy"
	case StrategySetPacking:
		return "set_packing"
	case StrategyAssignment:
		return "assignment"
	default:
		return fmt.Sprintf("strategy(%d)", int(st))
	}
}

// MatchOptions configures the exact strategies. The zero value is the
// default.
//
// Input           – hyperedge table; nil uses the last built one.
// WeightColumn    – weight column; "" uses the session weight column. A
// missing column is zero-filled with a warning.
// Multiplier      – assignment only: costs are round(weight × Multiplier);
// 0 means 1. Ignored with a warning by set packing.
// Penalty         – overrides the default offset (set packing) or the cost
// of leaving a pair unmatched (assignment); ≤ 0 keeps the default.
// ForceSetPacking – use set packing even with two groups.
// MaxTime         – set packing deadline; ignored with a warning by the
// assignment reduction.
// Verbose         – > 0 logs solver diagnostics at Info.
type MatchOptions struct {
	Input           *frame.Table
	WeightColumn    string
	Multiplier      float64
	Penalty         float64
	ForceSetPacking bool
	MaxTime         time.Duration
	Verbose         int
}

// Result is a selected multiplet set.
type Result struct {
	Strategy Strategy
	// Table holds the selected rows of the input with all its columns.
	Table *frame.Table
	// Cardinality is Table.Height().
	Cardinality int
	// Weight is the sum of the selected weights for the exact strategies
	// and the set aggregator value for the greedy search.
	Weight float64
}

// Match selects a maximum-cardinality, minimum-weight set of disjoint
// hyperedges. With two groups it uses the assignment reduction unless
// ForceSetPacking is set; with more groups it always uses set packing.
func (s *Session) Match(opts MatchOptions) (Result, error) {
	const op = "Match"
	if !s.ready() {
		return Result{}, opErr(op, ErrNotInitialized)
	}
	if len(s.groups) == 2 && !opts.ForceSetPacking {
		return s.Assignment(opts)
	}
	if len(s.groups) > 2 && opts.ForceSetPacking {
		s.warn(op, "set packing is already mandatory for more than two groups; ForceSetPacking has no effect")
	}
	return s.SetPacking(opts)
}

// matchInput is a validated matching input.
type matchInput struct {
	table   *frame.Table
	weights []float64 // NaN for null
	wcol    string
}

// prepare resolves the input table and weight column shared by all
// strategies.
func (s *Session) prepare(op string, input *frame.Table, wcol string) (matchInput, error) {
	if !s.ready() {
		return matchInput{}, ErrNotInitialized
	}
	t := input
	if t == nil {
		t = s.hyperedges
	}
	if t == nil {
		return matchInput{}, ErrNoHyperedges
	}
	for _, c := range s.IDColumns() {
		if !t.Has(c) {
			return matchInput{}, fmt.Errorf("%w %q in input table", ErrMissingColumn, c)
		}
	}
	if wcol == "" {
		wcol = s.weightCol
	}
	if !t.Has(wcol) {
		s.warn(op, fmt.Sprintf("input has no column %q; using weight 0", wcol), zap.String("column", wcol))
		zeros := make([]frame.Value, t.Height())
		for i := range zeros {
			zeros[i] = frame.Float(0)
		}
		var err error
		if t, err = t.WithColumn(wcol, zeros); err != nil {
			return matchInput{}, err
		}
	}

	col, err := t.Column(wcol)
	if err != nil {
		return matchInput{}, err
	}
	w := make([]float64, len(col))
	for i, v := range col {
		if v.IsNull() {
			w[i] = math.NaN()
			continue
		}
		f, ok := v.Float()
		if !ok {
			return matchInput{}, fmt.Errorf("weight column %q holds %s, not a number", wcol, v.Kind())
		}
		w[i] = f
	}

	return matchInput{table: t, weights: w, wcol: wcol}, nil
}

// exactWeights returns the weights with nulls replaced by 0, warning once
// per call if any were found.
func (s *Session) exactWeights(op string, in matchInput) []float64 {
	out := make([]float64, len(in.weights))
	nulls := 0
	for i, w := range in.weights {
		if math.IsNaN(w) {
			nulls++
			continue
		}
		out[i] = w
	}
	if nulls > 0 {
		s.warn(op, fmt.Sprintf("%d null weights in %q treated as 0", nulls, in.wcol), zap.Int("rows", nulls))
	}
	return out
}

// selectRows builds the Result of an exact strategy.
func selectRows(st Strategy, in matchInput, w []float64, rows []int) Result {
	var total float64
	for _, r := range rows {
		total += w[r]
	}
	return Result{
		Strategy:    st,
		Table:       in.table.Take(rows),
		Cardinality: len(rows),
		Weight:      total,
	}
}
