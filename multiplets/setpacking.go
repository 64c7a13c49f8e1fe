package multiplets

import (
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/bip"
	"github.com/katalvlaran/kpartite/frame"
)

// SetPacking selects hyperedges exactly by solving the binary program
//
//	maximize    Σ (C − w_h) · x_h
//	subject to  Σ_{h ∋ v} x_h ≤ 1   for every identifier v
//
// with C = Penalty if given, else the offset computed by packingOffset. C
// exceeds the weight of any feasible selection measured from the lightest
// row, so the single objective ranks by cardinality first and by total
// weight second, for weights of either sign.
//
// A solve without any selected row is not an error; it is reported as a
// warning. Infeasibility or a timeout without incumbent return
// ErrNoSolution. On timeout with an incumbent, the incumbent is returned.
func (s *Session) SetPacking(opts MatchOptions) (Result, error) {
	const op = "SetPacking"
	if !s.ready() {
		return Result{}, opErr(op, ErrNotInitialized)
	}
	if opts.Multiplier != 0 {
		s.warn(op, "multiplier is ignored by set packing", zap.Float64("multiplier", opts.Multiplier))
	}
	in, err := s.prepare(op, opts.Input, opts.WeightColumn)
	if err != nil {
		return Result{}, opErr(op, err)
	}
	w := s.exactWeights(op, in)
	start := time.Now()

	c := opts.Penalty
	if c <= 0 {
		c = s.packingOffset(w)
	}
	m, err := s.packingModel(in.table, w, c)
	if err != nil {
		return Result{}, opErr(op, err)
	}

	sol, err := bip.Solve(m, bip.Options{TimeLimit: opts.MaxTime, Eps: 1e-9})
	if err != nil {
		return Result{}, opErr(op, err)
	}
	status := strings.ToLower(sol.Status.String())
	s.metrics.RecordSolve(StrategySetPacking.String(), status, time.Since(start))
	if opts.Verbose > 0 {
		s.log.Info("set packing solved",
			zap.Stringer("status", sol.Status),
			zap.Float64("objective", sol.Objective),
			zap.Int64("branches", sol.Stats.Branches),
			zap.Int64("conflicts", sol.Stats.Conflicts),
			zap.Duration("wall_time", sol.Stats.WallTime),
		)
	}

	switch sol.Status {
	case bip.Optimal, bip.Feasible:
	case bip.Timeout:
		return Result{}, opErr(op, fmt.Errorf("%w after %s", ErrTimeout, opts.MaxTime))
	default:
		return Result{}, opErr(op, fmt.Errorf("%w: solver status %s", ErrInfeasible, sol.Status))
	}
	if sol.Status == bip.Feasible {
		s.warn(op, "time limit reached; returning the best solution found", zap.Duration("max_time", opts.MaxTime))
	}

	rows := make([]int, 0, len(sol.Values))
	for r, on := range sol.Values {
		if on {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		s.warn(op, "solution contains zero multiplets")
	}

	return selectRows(StrategySetPacking, in, w, rows), nil
}

// packingOffset is spread × (smallest group size) + 1 + min(0, min(w)),
// with spread = max(w) − min(0, min(w)). It equals the offset of the weights
// shifted to be non-negative, so C − w_h > 0 for every row and C exceeds the
// shifted weight of any feasible selection even when weights are negative.
func (s *Session) packingOffset(w []float64) float64 {
	maxW, minW := 0.0, 0.0
	for i, x := range w {
		if i == 0 || x > maxW {
			maxW = x
		}
		minW = min(minW, x)
	}
	smallest := math.MaxInt
	for _, g := range s.groups {
		smallest = min(smallest, g.Vertices.Height())
	}
	return (maxW-minW)*float64(smallest) + 1 + minW
}

// packingModel creates one variable per row and one disjointness row per
// identifier shared by two or more hyperedges. Identifier membership comes
// from unpivoting the identifier columns against an explicit row index.
func (s *Session) packingModel(t *frame.Table, w []float64, c float64) (*bip.Model, error) {
	m := bip.NewModel()
	vars := make([]bip.Var, t.Height())
	for r := range vars {
		vars[r] = m.AddBinary(fmt.Sprintf("x%d", r))
		if err := m.SetObjective(vars[r], c-w[r]); err != nil {
			return nil, err
		}
	}

	ids := s.IDColumns()
	idx, err := t.Select(ids...)
	if err != nil {
		return nil, err
	}
	if idx, err = idx.WithRowIndex(s.indexCol); err != nil {
		return nil, err
	}
	long, err := idx.Unpivot(ids, s.indexCol, "_group", s.idCol)
	if err != nil {
		return nil, err
	}
	members, err := long.GroupBy(s.idCol)
	if err != nil {
		return nil, err
	}
	rowOf, err := long.Column(s.indexCol)
	if err != nil {
		return nil, err
	}
	for _, g := range members {
		if g.Key[0].IsNull() || len(g.Rows) < 2 {
			continue
		}
		terms := make([]bip.Term, len(g.Rows))
		for n, lr := range g.Rows {
			r, _ := rowOf[lr].Int()
			terms[n] = bip.Term{Var: vars[r], Coef: 1}
		}
		if err = m.AddLessEqual(terms, 1); err != nil {
			return nil, err
		}
	}

	return m, nil
}
