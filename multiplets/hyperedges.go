package multiplets

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
)

// Aggregator folds several weights into one. NaN inputs stand for null.
type Aggregator func(ws []float64) float64

// Sum adds the non-null weights; all null gives 0.
func Sum(ws []float64) float64 {
	var s float64
	for _, w := range ws {
		if !math.IsNaN(w) {
			s += w
		}
	}
	return s
}

// Max returns the largest non-null weight, or NaN.
func Max(ws []float64) float64 {
	m := math.NaN()
	for _, w := range ws {
		if !math.IsNaN(w) && (math.IsNaN(m) || w > m) {
			m = w
		}
	}
	return m
}

// Min returns the smallest non-null weight, or NaN.
func Min(ws []float64) float64 {
	m := math.NaN()
	for _, w := range ws {
		if !math.IsNaN(w) && (math.IsNaN(m) || w < m) {
			m = w
		}
	}
	return m
}

// Mean averages the non-null weights, or NaN.
func Mean(ws []float64) float64 {
	var s float64
	var n int
	for _, w := range ws {
		if !math.IsNaN(w) {
			s += w
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return s / float64(n)
}

// AggregatorByName resolves "sum", "max", "min" or "mean"; "" is Sum.
func AggregatorByName(name string) (Aggregator, bool) {
	switch name {
	case "", "sum":
		return Sum, true
	case "max":
		return Max, true
	case "min":
		return Min, true
	case "mean":
		return Mean, true
	default:
		return nil, false
	}
}

// Edge is the compatible pair table of groups I < J, with columns
// "{id}_I", "{id}_J" and "{weight}_I_J".
type Edge struct {
	I, J  int
	Table *frame.Table
}

// BuildOptions configures BuildHyperedges.
type BuildOptions struct {
	// Weight is evaluated on the combined pair row, where the attributes of
	// the vertex from the lower group carry the suffix "_A" and those of the
	// other vertex "_B". Default: literal 0.
	Weight expr.Expr
	// Filter decides pair compatibility. Default: accept all.
	Filter expr.Filter
	// Aggregator folds the C(k,2) pair weights of a hyperedge. Default: Sum.
	Aggregator Aggregator
	// WeightColumn names the weight column. Default: "_distance".
	WeightColumn string
}

// BuildOption represents a functional option for BuildHyperedges.
type BuildOption func(*BuildOptions)

// DefaultBuildOptions returns the defaults documented on BuildOptions.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		Weight:       expr.Lit(0),
		Filter:       expr.AcceptAll(),
		Aggregator:   Sum,
		WeightColumn: DefaultWeightColumn,
	}
}

// WithWeight sets the pair weight expression.
func WithWeight(e expr.Expr) BuildOption {
	return func(o *BuildOptions) {
		o.Weight = e
	}
}

// WithFilter sets the pair compatibility filter.
func WithFilter(f expr.Filter) BuildOption {
	return func(o *BuildOptions) {
		o.Filter = f
	}
}

// WithAggregator sets the hyperedge weight aggregator; nil keeps Sum.
func WithAggregator(a Aggregator) BuildOption {
	return func(o *BuildOptions) {
		if a != nil {
			o.Aggregator = a
		}
	}
}

// WithWeightColumn renames the weight column.
func WithWeightColumn(name string) BuildOption {
	return func(o *BuildOptions) {
		if name != "" {
			o.WeightColumn = name
		}
	}
}

// BuildHyperedges computes the pairwise edge tables of every group pair and
// intersects them into hyperedges: one identifier per group, every pair
// compatible. The result has columns "{id}_0" … "{id}_{k-1}" and the
// weight column, is sorted by the identifier columns and is retained as the
// default input of the matching strategies.
//
// Complexity: O(Σ|G_i|·|G_j|) pair evaluations plus the size of the partial
// joins, which only ever hold tuples compatible so far.
func (s *Session) BuildHyperedges(opts ...BuildOption) (*frame.Table, error) {
	const op = "BuildHyperedges"
	if !s.ready() {
		return nil, opErr(op, ErrNotInitialized)
	}
	o := DefaultBuildOptions()
	for _, opt := range opts {
		opt(&o)
	}
	start := time.Now()

	out, edges, err := s.buildHyperedges(op, o)
	if err != nil {
		s.metrics.RecordBuildError()
		return nil, opErr(op, err)
	}
	s.edges = edges
	s.hyperedges = out
	s.weightCol = o.WeightColumn

	elapsed := time.Since(start)
	s.metrics.RecordBuild(len(s.groups), out.Height(), elapsed)
	s.log.Info("hyperedges built",
		zap.Stringer("weight", o.Weight),
		zap.Stringer("filter", o.Filter),
		zap.Int("hyperedges", out.Height()),
		zap.Duration("elapsed", elapsed),
	)

	return out, nil
}

func (s *Session) buildHyperedges(op string, o BuildOptions) (*frame.Table, []Edge, error) {
	weight := s.resolveExpr(op, o.Weight)
	k := len(s.groups)
	edges := make([]Edge, 0, k*(k-1)/2)
	for i := 0; i < k-1; i++ {
		for j := i + 1; j < k; j++ {
			e, err := s.pairEdges(i, j, weight, o)
			if err != nil {
				return nil, nil, err
			}
			edges = append(edges, e)
		}
	}

	// Progressive join: the pair (0,j) extends tuples on {id}_0; a pair
	// (i,j) with i ≥ 1 only checks that its two columns, already fixed by
	// earlier joins, are connected.
	var (
		h   = edges[0].Table
		err error
	)
	for _, e := range edges[1:] {
		on := []string{s.idColumn(e.I), s.idColumn(e.J)}[:min(e.I+1, 2)]
		if h, err = frame.InnerJoin(h, e.Table, on); err != nil {
			return nil, nil, err
		}
	}

	wcols := make([]string, len(edges))
	for n, e := range edges {
		wcols[n] = pairWeightColumn(o.WeightColumn, e.I, e.J)
	}
	agg, err := aggregateRows(h, wcols, o.Aggregator)
	if err != nil {
		return nil, nil, err
	}
	ids := s.IDColumns()
	if h, err = h.Select(ids...); err != nil {
		return nil, nil, err
	}
	if h, err = h.WithColumn(o.WeightColumn, agg); err != nil {
		return nil, nil, err
	}
	if h, err = h.SortStable(ids...); err != nil {
		return nil, nil, err
	}

	return h, edges, nil
}

// pairEdges evaluates the weight and filter on the cross product of groups
// i and j.
func (s *Session) pairEdges(i, j int, weight expr.Expr, o BuildOptions) (Edge, error) {
	cross, err := frame.CrossJoin(s.groups[i].Vertices.Suffix("_A"), s.groups[j].Vertices.Suffix("_B"))
	if err != nil {
		return Edge{}, err
	}
	w, err := weight.Values(cross)
	if err != nil {
		return Edge{}, fmt.Errorf("weight on groups %d,%d: %w", i, j, err)
	}
	if cross, err = cross.WithColumn(o.WeightColumn, w); err != nil {
		return Edge{}, err
	}
	kept, err := cross.Filter(func(r frame.Row) (bool, error) {
		x, ferr := r.Float(o.WeightColumn)
		if ferr != nil {
			return false, ferr
		}
		return o.Filter.Keep(r, x)
	})
	if err != nil {
		return Edge{}, fmt.Errorf("filter on groups %d,%d: %w", i, j, err)
	}

	idA, idB := s.idCol+"_A", s.idCol+"_B"
	sel, err := kept.Select(idA, idB, o.WeightColumn)
	if err != nil {
		return Edge{}, err
	}
	t, err := sel.Rename(map[string]string{
		idA:            s.idColumn(i),
		idB:            s.idColumn(j),
		o.WeightColumn: pairWeightColumn(o.WeightColumn, i, j),
	})
	if err != nil {
		return Edge{}, err
	}

	return Edge{I: i, J: j, Table: t}, nil
}

func pairWeightColumn(w string, i, j int) string { return fmt.Sprintf("%s_%d_%d", w, i, j) }

// aggregateRows applies agg across the given columns of every row.
func aggregateRows(t *frame.Table, cols []string, agg Aggregator) ([]frame.Value, error) {
	src := make([][]frame.Value, len(cols))
	for c, name := range cols {
		col, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		src[c] = col
	}
	out := make([]frame.Value, t.Height())
	ws := make([]float64, len(cols))
	for i := range out {
		for c := range src {
			if f, ok := src[c][i].Float(); ok {
				ws[c] = f
			} else {
				ws[c] = math.NaN()
			}
		}
		if x := agg(ws); math.IsNaN(x) {
			out[i] = frame.Null()
		} else {
			out[i] = frame.Float(x)
		}
	}

	return out, nil
}

// Edges returns the pairwise edge tables of the last build, in (i, j)
// order.
func (s *Session) Edges() []Edge {
	if s == nil {
		return nil
	}
	return append([]Edge(nil), s.edges...)
}
