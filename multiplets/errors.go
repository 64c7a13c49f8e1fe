package multiplets

import (
	"errors"
	"fmt"
	"strings"
)

// Configuration errors are returned by New; the caller must fix the input.
var (
	// ErrConfiguration is the parent of every construction failure.
	ErrConfiguration = errors.New("multiplets: configuration error")

	// ErrEmptyInput indicates a nil table or a table with zero rows.
	ErrEmptyInput = fmt.Errorf("%w: table has zero rows", ErrConfiguration)

	// ErrMissingColumn indicates a required column that is absent.
	ErrMissingColumn = fmt.Errorf("%w: missing column", ErrConfiguration)

	// ErrNullID indicates a null identifier.
	ErrNullID = fmt.Errorf("%w: null identifier", ErrConfiguration)

	// ErrDuplicateID indicates identifiers that are not unique.
	ErrDuplicateID = fmt.Errorf("%w: identifiers are not unique", ErrConfiguration)

	// ErrSingleGroup indicates a partition with only one part.
	ErrSingleGroup = fmt.Errorf("%w: partition has only one part", ErrConfiguration)

	// ErrTooManyGroups indicates more groups than the configured cap.
	ErrTooManyGroups = fmt.Errorf("%w: partition has too many parts", ErrConfiguration)
)

// Usage errors.
var (
	// ErrNotInitialized is returned by methods of a nil or zero Session.
	ErrNotInitialized = errors.New("multiplets: session is not initialized")

	// ErrNoHyperedges is returned when matching is requested before any
	// hyperedges were built and no input table was given.
	ErrNoHyperedges = errors.New("multiplets: no hyperedges; call BuildHyperedges or pass an input table")

	// ErrNotApplicable is returned when a strategy cannot serve the session,
	// e.g. the assignment reduction with more than two groups.
	ErrNotApplicable = errors.New("multiplets: strategy not applicable")
)

// Solver errors are surfaced after the oracle returns.
var (
	// ErrNoSolution is the parent of every solver failure.
	ErrNoSolution = errors.New("multiplets: no solution")

	// ErrInfeasible indicates the oracle proved infeasibility.
	ErrInfeasible = fmt.Errorf("%w: infeasible", ErrNoSolution)

	// ErrTimeout indicates the deadline expired without an incumbent.
	ErrTimeout = fmt.Errorf("%w: time limit reached without a feasible solution", ErrNoSolution)

	// ErrCostOverflow indicates weights too large for integer costs.
	ErrCostOverflow = fmt.Errorf("%w: possible overflow in integer costs", ErrNoSolution)
)

// Error attaches the failing operation to an error. Its message has the
// form "multiplets: <op>: <detail>".
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return "multiplets: " + e.Op + ": " + strings.TrimPrefix(e.Err.Error(), "multiplets: ")
}

func (e *Error) Unwrap() error { return e.Err }

func opErr(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) && e.Op == op {
		return err
	}
	return &Error{Op: op, Err: err}
}

// Warning is an advisory message recorded by a Session.
type Warning struct {
	Op   string
	Text string
}

func (w Warning) String() string { return w.Op + ": " + w.Text }
