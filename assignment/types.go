// Package assignment solves the minimum-cost bipartite perfect assignment
// problem over an explicit arc list with integer costs.
//
// Instance: n left nodes and n right nodes, both indexed 0..n-1, and a list
// of arcs (left, right, cost). Arcs that are not listed do not exist. The
// solver returns a perfect matching that uses only listed arcs and has
// minimum total cost, or reports that none exists.
//
// Algorithm: shortest augmenting paths with node potentials (the
// Jonker–Volgenant formulation of the Hungarian method) run directly on
// the sparse arc list.
//
// Complexity:
//   - Time:   O(n² + m) per augmentation phase and n phases, i.e.
//     O(n³ + n·m); m is the number of arcs.
//   - Memory: O(n + m).
//
// Status values:
//   - Optimal          — a minimum-cost perfect matching was found.
//   - Infeasible       — no perfect matching exists over the listed arcs.
//   - PossibleOverflow — the cost range is too wide to run the potential
//     updates safely in int64.
package assignment

import "errors"

// Sentinel errors for malformed input. Infeasibility and overflow are
// reported through Status, not through errors.
var (
	// ErrNegativeSize is returned when n < 0.
	ErrNegativeSize = errors.New("assignment: negative instance size")

	// ErrArcOutOfRange is returned when an arc endpoint is outside [0, n).
	ErrArcOutOfRange = errors.New("assignment: arc endpoint out of range")
)

// Status is the outcome of Solve.
type Status int

const (
	// Optimal means RightOf holds a minimum-cost perfect matching.
	Optimal Status = iota
	// Infeasible means no perfect matching exists.
	Infeasible
	// PossibleOverflow means costs are too large for safe int64 arithmetic.
	PossibleOverflow
)

// String returns the conventional upper-case status name.
func (s Status) String() string {
	switch s {
	case Optimal:
		return "OPTIMAL"
	case Infeasible:
		return "INFEASIBLE"
	case PossibleOverflow:
		return "POSSIBLE_OVERFLOW"
	default:
		return "UNKNOWN"
	}
}

// Arc is one admissible (left, right) pairing with its cost.
type Arc struct {
	Left  int
	Right int
	Cost  int64
}

// Result holds the solver outcome.
type Result struct {
	Status Status

	// RightOf[l] is the right node matched to left node l (Optimal only).
	RightOf []int

	// Cost is the total cost of the matching (Optimal only).
	Cost int64
}
