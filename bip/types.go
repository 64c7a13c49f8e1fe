// Package bip solves small binary integer programs of the form
//
//	maximize    Σ c_v · x_v
//	subject to  Σ a_rv · x_v ≤ b_r   for every row r
//	            x_v ∈ {0, 1}
//
// by depth-first branch-and-bound. It is sized for set-packing models
// (rows whose coefficients are all ≥ 1 with right-hand side < 2) and has a
// dedicated bound for them; general coefficients are accepted and handled
// by per-row slack tracking.
//
// Search outline:
//  1. Variables are branched in descending objective order (index tiebreak);
//     each variable tries its objective-preferred value first.
//  2. A greedy pass in the same order seeds the incumbent.
//  3. A node is infeasible when some row can no longer be satisfied even if
//     every free negative coefficient is switched on.
//  4. Upper bound: every free profitable variable that can still be set to
//     one contributes its objective, except that variables sharing a packing
//     row contribute only their maximum. The bound is admissible.
//  5. Optional soft time limit, checked every 4096 nodes; on expiry the best
//     incumbent is returned with Status Feasible (or Timeout if none).
//
// Complexity:
//   - Worst case exponential in the number of variables.
//   - Per node: O(nnz) for the bound, O(deg) for fixing a variable.
//   - Memory: O(n + nnz).
package bip

import (
	"errors"
	"time"
)

// Sentinel errors for malformed models.
var (
	// ErrNilModel is returned by Solve for a nil model.
	ErrNilModel = errors.New("bip: nil model")

	// ErrUnknownVar indicates a variable that was not created by this model.
	ErrUnknownVar = errors.New("bip: unknown variable")

	// ErrNotFinite indicates a NaN or infinite coefficient or right-hand side.
	ErrNotFinite = errors.New("bip: coefficient is not finite")
)

// Status is the outcome of Solve.
type Status int

const (
	// Optimal means the search completed and Values is a maximizer.
	Optimal Status = iota
	// Feasible means the time limit expired with an incumbent in hand.
	Feasible
	// Infeasible means no assignment satisfies every row.
	Infeasible
	// Timeout means the time limit expired before any feasible assignment.
	Timeout
)

// String returns the conventional upper-case status name.
func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Feasible:
		return "FEASIBLE"
	case Infeasible:
		return "INFEASIBLE"
	case Timeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// HasSolution reports whether Values holds a feasible assignment.
func (s Status) HasSolution() bool { return s == Optimal || s == Feasible }

// Var identifies a binary variable of a Model.
type Var int

// Term is one coefficient of a linear row.
type Term struct {
	Var  Var
	Coef float64
}

// Options control the search.
type Options struct {
	// TimeLimit is a soft wall-clock budget; zero or negative disables it.
	TimeLimit time.Duration

	// Eps is the tolerance used for row feasibility and incumbent
	// improvement. Negative values are treated as zero.
	Eps float64
}

// DefaultOptions returns no time limit and Eps = 1e-9.
func DefaultOptions() Options {
	return Options{Eps: 1e-9}
}

// Stats are solve diagnostics.
type Stats struct {
	// Branches counts variable fixings attempted during the search.
	Branches int64
	// Conflicts counts fixings rejected because a row became unsatisfiable.
	Conflicts int64
	// WallTime is the elapsed solve time.
	WallTime time.Duration
}

// Solution is the result of Solve.
type Solution struct {
	Status    Status
	Values    []bool // indexed by Var; valid when Status.HasSolution()
	Objective float64
	Stats     Stats
}

// Value reports the value of v, or false if v is out of range.
func (s Solution) Value(v Var) bool {
	if v < 0 || int(v) >= len(s.Values) {
		return false
	}
	return s.Values[v]
}
