package bip

import (
	"math"
	"sort"
	"time"
)

// entry is one nonzero of the column of a variable.
type entry struct {
	row  int
	coef float64
}

// bbEngine holds all search data. Variables are fixed strictly in the
// order of e.order, so the free variables at depth d are order[d:].
type bbEngine struct {
	// Configuration
	n   int
	eps float64

	// Time budget
	useDeadline bool
	deadline    time.Time
	steps       int // sparse deadline checks counter
	timedOut    bool

	// Model data
	obj       []float64
	inc       [][]entry // per variable: rows it appears in
	rhs       []float64
	packRow   []int  // per variable: packing row used by the bound, or -1
	dominated []bool // setting the variable to 1 can never help

	// Branching order
	order []int

	// Current search state
	val     []int8    // -1 free, 0 or 1
	lhs     []float64 // per row: contribution of variables fixed to 1
	minRest []float64 // per row: Σ of negative coefficients of free variables
	cur     float64

	// Bound scratch
	rowBest  []float64
	rowStamp []int
	stamp    int

	// Incumbent
	best    []bool
	bestObj float64
	found   bool

	stats Stats
}

// deadlineCheck performs a rare deadline test (every 4096 node events).
func (e *bbEngine) deadlineCheck() bool {
	e.steps++
	if !e.useDeadline || (e.steps&4095) != 0 {
		return false
	}

	return time.Now().After(e.deadline)
}

// load copies the model into flat per-variable and per-row arrays.
func (e *bbEngine) load(m *Model) {
	var (
		r, t, v int
		c       float64
	)
	e.n = len(m.obj)
	e.obj = append([]float64(nil), m.obj...)
	e.inc = make([][]entry, e.n)
	e.rhs = make([]float64, len(m.rows))
	e.lhs = make([]float64, len(m.rows))
	e.minRest = make([]float64, len(m.rows))
	for r = range m.rows {
		e.rhs[r] = m.rows[r].rhs
		for t, v = range m.rows[r].vars {
			c = m.rows[r].coefs[t]
			e.inc[v] = append(e.inc[v], entry{row: r, coef: c})
			if c < 0 {
				e.minRest[r] += c
			}
		}
	}

	e.val = make([]int8, e.n)
	for v = range e.val {
		e.val[v] = -1
	}
	e.rowBest = make([]float64, len(m.rows))
	e.rowStamp = make([]int, len(m.rows))
	e.best = make([]bool, e.n)
}

// precompute classifies packing rows, assigns each variable its largest
// packing row, marks dominated variables and builds the branching order.
func (e *bbEngine) precompute(m *Model) {
	var (
		r, v int
		size []int
	)
	isPack := make([]bool, len(m.rows))
	size = make([]int, len(m.rows))
	for r = range m.rows {
		// At most one variable of a row can be 1 when every coefficient is
		// ≥ 1 and the right-hand side is below 2.
		isPack[r] = m.rows[r].rhs < 2 && len(m.rows[r].vars) > 1
		for _, c := range m.rows[r].coefs {
			if c < 1 {
				isPack[r] = false
				break
			}
		}
		size[r] = len(m.rows[r].vars)
	}

	e.packRow = make([]int, e.n)
	e.dominated = make([]bool, e.n)
	for v = 0; v < e.n; v++ {
		e.packRow[v] = -1
		nonneg := true
		for _, en := range e.inc[v] {
			if en.coef < 0 {
				nonneg = false
			}
			if isPack[en.row] && (e.packRow[v] < 0 || size[en.row] > size[e.packRow[v]]) {
				e.packRow[v] = en.row
			}
		}
		e.dominated[v] = nonneg && e.obj[v] <= 0
	}

	e.order = make([]int, e.n)
	for v = range e.order {
		e.order[v] = v
	}
	sort.SliceStable(e.order, func(i, j int) bool {
		return e.obj[e.order[i]] > e.obj[e.order[j]]
	})
}

// rootFeasible reports whether every row can be met with all variables free.
func (e *bbEngine) rootFeasible() bool {
	for r := range e.rhs {
		if e.lhs[r]+e.minRest[r] > e.rhs[r]+e.eps {
			return false
		}
	}
	return true
}

// fix sets v to x and reports whether all rows touching v remain
// satisfiable. State is always updated so unfix can revert it.
func (e *bbEngine) fix(v int, x int8) bool {
	ok := true
	for _, en := range e.inc[v] {
		if en.coef < 0 {
			e.minRest[en.row] -= en.coef
		}
		if x == 1 {
			e.lhs[en.row] += en.coef
		}
		if e.lhs[en.row]+e.minRest[en.row] > e.rhs[en.row]+e.eps {
			ok = false
		}
	}
	e.val[v] = x
	if x == 1 {
		e.cur += e.obj[v]
	}

	return ok
}

// unfix reverts the last fix of v.
func (e *bbEngine) unfix(v int) {
	x := e.val[v]
	for _, en := range e.inc[v] {
		if en.coef < 0 {
			e.minRest[en.row] += en.coef
		}
		if x == 1 {
			e.lhs[en.row] -= en.coef
		}
	}
	if x == 1 {
		e.cur -= e.obj[v]
	}
	e.val[v] = -1
}

// blocked reports whether setting the free variable v to 1 violates a row.
func (e *bbEngine) blocked(v int) bool {
	for _, en := range e.inc[v] {
		if en.coef > 0 && e.lhs[en.row]+en.coef+e.minRest[en.row] > e.rhs[en.row]+e.eps {
			return true
		}
	}
	return false
}

// upperBound bounds the objective still obtainable from order[depth:].
// Unblocked profitable variables contribute their objective; those sharing
// a packing row contribute only the row maximum.
func (e *bbEngine) upperBound(depth int) float64 {
	var (
		ub   float64
		o    float64
		v, r int
	)
	e.stamp++
	for _, v = range e.order[depth:] {
		o = e.obj[v]
		if o <= 0 {
			// order is descending: nothing profitable remains.
			break
		}
		if e.blocked(v) {
			continue
		}
		r = e.packRow[v]
		switch {
		case r < 0:
			ub += o
		case e.rowStamp[r] != e.stamp:
			e.rowStamp[r] = e.stamp
			e.rowBest[r] = o
			ub += o
		case o > e.rowBest[r]:
			ub += o - e.rowBest[r]
			e.rowBest[r] = o
		}
	}

	return ub
}

// record commits the current full assignment as the incumbent.
func (e *bbEngine) record() {
	for v, x := range e.val {
		e.best[v] = x == 1
	}
	e.bestObj = e.cur
	e.found = true
}

// preferred is the value tried first for v.
func (e *bbEngine) preferred(v int) int8 {
	if e.obj[v] > 0 {
		return 1
	}
	return 0
}

// seedIncumbent runs one greedy pass in branching order, taking each
// variable's preferred value when feasible and the other value otherwise.
func (e *bbEngine) seedIncumbent() {
	var (
		d, v int
		x    int8
	)
	for d = 0; d < e.n; d++ {
		v = e.order[d]
		x = e.preferred(v)
		if e.dominated[v] {
			x = 0
		}
		if e.fix(v, x) {
			continue
		}
		e.unfix(v)
		if !e.dominated[v] && e.fix(v, 1-x) {
			continue
		}
		e.unfix(v)
		break
	}
	if d == e.n {
		e.record()
	}
	for d--; d >= 0; d-- {
		e.unfix(e.order[d])
	}
}

// dfs performs the core search: preferred value first, prune by bound.
func (e *bbEngine) dfs(depth int) {
	if e.timedOut {
		return
	}
	if e.deadlineCheck() {
		e.timedOut = true
		return
	}
	if depth == e.n {
		if !e.found || e.cur > e.bestObj+e.eps {
			e.record()
		}
		return
	}
	if e.found && e.cur+e.upperBound(depth) <= e.bestObj+e.eps {
		return
	}

	v := e.order[depth]
	first := e.preferred(v)
	for _, x := range [2]int8{first, 1 - first} {
		if x == 1 && e.dominated[v] {
			continue
		}
		e.stats.Branches++
		if e.fix(v, x) {
			e.dfs(depth + 1)
		} else {
			e.stats.Conflicts++
		}
		e.unfix(v)
		if e.timedOut {
			return
		}
	}
}

// Solve maximizes the model objective over binary assignments.
//
// Errors: ErrNilModel. Infeasibility and timeouts are reported in
// Solution.Status with a nil error.
func Solve(m *Model, opts Options) (Solution, error) {
	if m == nil {
		return Solution{}, ErrNilModel
	}
	start := time.Now()

	var e bbEngine
	e.eps = opts.Eps
	if e.eps < 0 {
		e.eps = 0
	}
	if opts.TimeLimit > 0 {
		e.useDeadline = true
		e.deadline = start.Add(opts.TimeLimit)
	}
	e.load(m)
	e.precompute(m)
	e.bestObj = math.Inf(-1)

	if e.rootFeasible() {
		e.seedIncumbent()
		e.dfs(0)
	}

	sol := Solution{Stats: e.stats}
	sol.Stats.WallTime = time.Since(start)
	switch {
	case e.timedOut && e.found:
		sol.Status = Feasible
	case e.timedOut:
		sol.Status = Timeout
	case e.found:
		sol.Status = Optimal
	default:
		sol.Status = Infeasible
	}
	if e.found {
		sol.Values = e.best
		// Recompute to shed drift accumulated by incremental updates.
		sol.Objective, _ = m.Evaluate(e.best, math.Inf(1))
	}

	return sol, nil
}
