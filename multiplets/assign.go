package multiplets

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/assignment"
	"github.com/katalvlaran/kpartite/frame"
)

// maxUnitCost bounds |round(w × multiplier)| before it reaches the oracle.
const maxUnitCost = 1 << 52

// Assignment selects pairs of a two-group session exactly, by reduction to
// a minimum-cost perfect assignment on n0+n1 nodes per side.
//
// Left nodes are the group-0 vertices (by row index) followed by n1
// dummies; right nodes are the group-1 vertices followed by n0 dummies.
// Arcs:
//   - every candidate pair, at round(w × Multiplier);
//   - |n0−n1| padding dummies on the shorter side, joined to every vertex
//     of the longer group at 0;
//   - the min(n0,n1) remaining dummies per side: vertex↔dummy and
//     dummy↔dummy at ⌈P/2⌉, plus a zero-cost dummy diagonal.
//
// Leaving a pair unmatched thus costs P. P is Penalty when given (in cost
// units), else (spread + 3) × min(n0,n1), where spread = max cost −
// min(0, min cost); with that P one more pair always pays for any change
// in total weight.
//
// An empty candidate table yields no arcs and is reported as infeasible.
//
// Errors: ErrNotApplicable unless there are exactly two groups;
// ErrInfeasible; ErrCostOverflow.
func (s *Session) Assignment(opts MatchOptions) (Result, error) {
	const op = "Assignment"
	if !s.ready() {
		return Result{}, opErr(op, ErrNotInitialized)
	}
	if len(s.groups) != 2 {
		return Result{}, opErr(op, fmt.Errorf("%w: assignment needs exactly two groups, have %d", ErrNotApplicable, len(s.groups)))
	}
	if opts.MaxTime > 0 {
		s.warn(op, "max time is ignored by the assignment reduction", zap.Duration("max_time", opts.MaxTime))
	}
	mult := opts.Multiplier
	if mult == 0 {
		mult = 1
	}
	in, err := s.prepare(op, opts.Input, opts.WeightColumn)
	if err != nil {
		return Result{}, opErr(op, err)
	}
	w := s.exactWeights(op, in)
	start := time.Now()

	pairs, err := s.indexedPairs(op, in.table)
	if err != nil {
		return Result{}, opErr(op, err)
	}
	red, err := s.reduce(pairs, w, mult, opts.Penalty)
	if err != nil {
		return Result{}, opErr(op, err)
	}

	res, err := assignment.Solve(red.n, red.arcs)
	if err != nil {
		return Result{}, opErr(op, err)
	}
	status := strings.ToLower(res.Status.String())
	s.metrics.RecordSolve(StrategyAssignment.String(), status, time.Since(start))
	if opts.Verbose > 0 {
		s.log.Info("assignment solved",
			zap.Stringer("status", res.Status),
			zap.Int64("cost", res.Cost),
			zap.Int("nodes", red.n),
			zap.Int("arcs", len(red.arcs)),
			zap.Int64("penalty", red.penalty),
		)
	}
	switch res.Status {
	case assignment.Optimal:
	case assignment.PossibleOverflow:
		return Result{}, opErr(op, fmt.Errorf("%w: multiplier %g, penalty %d", ErrCostOverflow, mult, red.penalty))
	default:
		return Result{}, opErr(op, fmt.Errorf("%w: oracle status %s", ErrInfeasible, res.Status))
	}

	rows, err := s.matchedRows(pairs, red, res)
	if err != nil {
		return Result{}, opErr(op, err)
	}

	return selectRows(StrategyAssignment, in, w, rows), nil
}

// pairColumns are the index columns attached to candidate pairs.
func (s *Session) pairColumns() (string, string) {
	return s.indexCol + "_0", s.indexCol + "_1"
}

// indexedPairs attaches the row index of both vertices to every candidate
// row. Input rows whose identifiers do not belong to the session are
// dropped with a warning. The input row number is kept in s.indexCol.
func (s *Session) indexedPairs(op string, t *frame.Table) (*frame.Table, error) {
	li, ri := s.pairColumns()
	base, err := t.Select(s.IDColumns()...)
	if err != nil {
		return nil, err
	}
	if base, err = base.WithRowIndex(s.indexCol); err != nil {
		return nil, err
	}
	for g, name := range []string{li, ri} {
		lookup, lerr := s.groups[g].Vertices.Select(s.idCol, s.indexCol)
		if lerr != nil {
			return nil, lerr
		}
		if lookup, lerr = lookup.Rename(map[string]string{s.idCol: s.idColumn(g), s.indexCol: name}); lerr != nil {
			return nil, lerr
		}
		if base, err = frame.LeftJoin(base, lookup, []string{s.idColumn(g)}, []string{s.idColumn(g)}); err != nil {
			return nil, err
		}
	}
	// LeftJoin drops the right key, so the identifier stays from base.
	known, err := base.Filter(func(r frame.Row) (bool, error) {
		a, _ := r.Get(li)
		b, _ := r.Get(ri)
		return !a.IsNull() && !b.IsNull(), nil
	})
	if err != nil {
		return nil, err
	}
	if dropped := base.Height() - known.Height(); dropped > 0 {
		s.warn(op, fmt.Sprintf("%d input rows reference unknown identifiers and were ignored", dropped), zap.Int("rows", dropped))
	}

	return known, nil
}

// reduction is the square assignment instance.
type reduction struct {
	n       int
	n0, n1  int
	arcs    []assignment.Arc
	byPair  map[[2]int]int // (left, right) → input row of the cheapest pair
	penalty int64
}

// reduce builds the arcs of the assignment instance.
func (s *Session) reduce(pairs *frame.Table, w []float64, mult, penalty float64) (reduction, error) {
	li, ri := s.pairColumns()
	n0, n1 := s.groups[0].Vertices.Height(), s.groups[1].Vertices.Height()
	red := reduction{n: n0 + n1, n0: n0, n1: n1, byPair: make(map[[2]int]int)}

	lcol, _ := pairs.Column(li)
	rcol, _ := pairs.Column(ri)
	rowCol, _ := pairs.Column(s.indexCol)
	if len(lcol) == 0 {
		return red, nil
	}

	var (
		maxCost = int64(math.MinInt64)
		minCost = int64(math.MaxInt64)
		costOf  = make(map[[2]int]int64, len(lcol))
	)
	for k := range lcol {
		l, _ := lcol[k].Int()
		r, _ := rcol[k].Int()
		row, _ := rowCol[k].Int()
		x := math.Round(w[row] * mult)
		if math.IsNaN(x) || math.Abs(x) > maxUnitCost {
			return red, fmt.Errorf("%w: weight %g × multiplier %g", ErrCostOverflow, w[row], mult)
		}
		c := int64(x)
		key := [2]int{int(l), int(r)}
		if old, ok := costOf[key]; !ok || c < old {
			costOf[key] = c
			red.byPair[key] = int(row)
		}
		maxCost = max(maxCost, c)
		minCost = min(minCost, c)
	}

	m := int64(min(n0, n1))
	if penalty > 0 {
		if penalty > maxUnitCost {
			return red, fmt.Errorf("%w: penalty %g", ErrCostOverflow, penalty)
		}
		red.penalty = int64(math.Round(penalty))
	} else {
		spread := maxCost - min(0, minCost)
		if spread+3 > math.MaxInt64/m {
			return red, fmt.Errorf("%w: cost spread %d", ErrCostOverflow, spread)
		}
		red.penalty = (spread + 3) * m
	}
	half := (red.penalty + 1) / 2

	keys := make([][2]int, 0, len(costOf))
	for k := range costOf {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a][0] != keys[b][0] {
			return keys[a][0] < keys[b][0]
		}
		return keys[a][1] < keys[b][1]
	})
	for _, k := range keys {
		red.arcs = append(red.arcs, assignment.Arc{Left: k[0], Right: k[1], Cost: costOf[k]})
	}

	// Dummy layout: left dummies n0..N-1, right dummies n1..N-1. The first
	// |n0−n1| dummies of the shorter side pad it to the longer one.
	var leftRest, rightRest int
	if n0 <= n1 {
		d := n1 - n0
		for l := n0; l < n0+d; l++ {
			for r := 0; r < n1; r++ {
				red.arcs = append(red.arcs, assignment.Arc{Left: l, Right: r})
			}
		}
		leftRest, rightRest = n0+d, n1
	} else {
		d := n0 - n1
		for r := n1; r < n1+d; r++ {
			for l := 0; l < n0; l++ {
				red.arcs = append(red.arcs, assignment.Arc{Left: l, Right: r})
			}
		}
		leftRest, rightRest = n0, n1+d
	}
	N := red.n
	for l := 0; l < n0; l++ {
		for r := rightRest; r < N; r++ {
			red.arcs = append(red.arcs, assignment.Arc{Left: l, Right: r, Cost: half})
		}
	}
	for l := leftRest; l < N; l++ {
		for r := 0; r < n1; r++ {
			red.arcs = append(red.arcs, assignment.Arc{Left: l, Right: r, Cost: half})
		}
		for r := rightRest; r < N; r++ {
			c := half
			if l-leftRest == r-rightRest {
				c = 0
			}
			red.arcs = append(red.arcs, assignment.Arc{Left: l, Right: r, Cost: c})
		}
	}

	return red, nil
}

// matchedRows translates the assignment back to input rows: the
// (left, right) index pairs are left-joined against the candidate pairs and
// rows without a candidate (dummy pairings) are dropped.
func (s *Session) matchedRows(pairs *frame.Table, red reduction, res assignment.Result) ([]int, error) {
	li, ri := s.pairColumns()
	b, err := frame.NewBuilder(li, ri)
	if err != nil {
		return nil, err
	}
	for l, r := range res.RightOf {
		if err = b.Append(frame.Int(int64(l)), frame.Int(int64(r))); err != nil {
			return nil, err
		}
	}

	chosen := make(map[int64]bool, len(red.byPair))
	for _, row := range red.byPair {
		chosen[int64(row)] = true
	}
	// One candidate per (left, right): the cheapest, as seen by the oracle.
	candidates, err := pairs.Filter(func(r frame.Row) (bool, error) {
		v, _ := r.Get(s.indexCol)
		row, _ := v.Int()
		return chosen[row], nil
	})
	if err != nil {
		return nil, err
	}
	joined, err := frame.LeftJoin(b.Table(), candidates, []string{li, ri}, []string{li, ri})
	if err != nil {
		return nil, err
	}

	rowCol, err := joined.Column(s.indexCol)
	if err != nil {
		return nil, err
	}
	rows := make([]int, 0, min(red.n0, red.n1))
	for _, v := range rowCol {
		if v.IsNull() {
			continue
		}
		row, _ := v.Int()
		rows = append(rows, int(row))
	}

	return rows, nil
}
