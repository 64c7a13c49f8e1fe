package bip

import (
	"fmt"
	"math"
	"sort"
)

// row is one merged constraint Σ coefs[t]·x[vars[t]] ≤ rhs.
type row struct {
	vars  []int
	coefs []float64
	rhs   float64
}

// Model is a binary integer program under construction. The zero value is
// not usable; call NewModel.
type Model struct {
	names []string
	obj   []float64
	rows  []row
}

// NewModel returns an empty maximization model.
func NewModel() *Model {
	return &Model{}
}

// AddBinary adds a binary variable with objective coefficient 0.
func (m *Model) AddBinary(name string) Var {
	m.names = append(m.names, name)
	m.obj = append(m.obj, 0)
	return Var(len(m.obj) - 1)
}

// NumVars returns the number of variables.
func (m *Model) NumVars() int { return len(m.obj) }

// NumRows returns the number of constraints.
func (m *Model) NumRows() int { return len(m.rows) }

// Name returns the name given to v at creation.
func (m *Model) Name(v Var) string {
	if !m.has(v) {
		return ""
	}
	return m.names[v]
}

// SetObjective sets the objective coefficient of v.
func (m *Model) SetObjective(v Var, c float64) error {
	if !m.has(v) {
		return fmt.Errorf("%w: %d", ErrUnknownVar, v)
	}
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return fmt.Errorf("%w: objective of %q", ErrNotFinite, m.names[v])
	}
	m.obj[v] = c

	return nil
}

// AddLessEqual adds the row Σ terms ≤ rhs. Repeated variables are summed and
// zero coefficients are dropped.
func (m *Model) AddLessEqual(terms []Term, rhs float64) error {
	if math.IsNaN(rhs) || math.IsInf(rhs, 0) {
		return fmt.Errorf("%w: rhs %v", ErrNotFinite, rhs)
	}
	acc := make(map[int]float64, len(terms))
	for _, t := range terms {
		if !m.has(t.Var) {
			return fmt.Errorf("%w: %d", ErrUnknownVar, t.Var)
		}
		if math.IsNaN(t.Coef) || math.IsInf(t.Coef, 0) {
			return fmt.Errorf("%w: coefficient of %q", ErrNotFinite, m.names[t.Var])
		}
		acc[int(t.Var)] += t.Coef
	}

	r := row{rhs: rhs}
	for v, c := range acc {
		if c != 0 {
			r.vars = append(r.vars, v)
		}
	}
	sort.Ints(r.vars)
	r.coefs = make([]float64, len(r.vars))
	for i, v := range r.vars {
		r.coefs[i] = acc[v]
	}
	m.rows = append(m.rows, r)

	return nil
}

// Evaluate returns the objective of values and whether every row holds
// within eps. values must have NumVars entries.
func (m *Model) Evaluate(values []bool, eps float64) (float64, bool) {
	if len(values) != len(m.obj) {
		return 0, false
	}
	var obj float64
	for v, on := range values {
		if on {
			obj += m.obj[v]
		}
	}
	for _, r := range m.rows {
		var lhs float64
		for i, v := range r.vars {
			if values[v] {
				lhs += r.coefs[i]
			}
		}
		if lhs > r.rhs+eps {
			return obj, false
		}
	}

	return obj, true
}

func (m *Model) has(v Var) bool { return v >= 0 && int(v) < len(m.obj) }
