package expr

import (
	"fmt"

	"github.com/katalvlaran/kpartite/frame"
)

// FilterKind tags a Filter.
type FilterKind uint8

const (
	// FilterInvalid marks an argument of unsupported type.
	FilterInvalid FilterKind = iota
	// FilterAcceptAll keeps every pair.
	FilterAcceptAll
	// FilterThreshold keeps pairs whose weight is ≤ the threshold.
	FilterThreshold
	// FilterPredicate evaluates a predicate over the combined row.
	FilterPredicate
	// FilterConstant keeps all or nothing.
	FilterConstant
)

// Predicate decides whether a row is kept.
type Predicate func(r frame.Row) (bool, error)

// Filter is the compatibility predicate applied to candidate pairs.
// The zero Filter is Invalid; use AcceptAll for "no filter".
type Filter struct {
	kind      FilterKind
	threshold float64
	pred      Predicate
	constant  bool
	label     string
	raw       any
}

// AcceptAll keeps every pair.
func AcceptAll() Filter { return Filter{kind: FilterAcceptAll} }

// AtMost keeps pairs with weight ≤ x. NaN weights are dropped.
func AtMost(x float64) Filter { return Filter{kind: FilterThreshold, threshold: x} }

// Where keeps the rows for which p returns true.
func Where(p Predicate) Filter {
	if p == nil {
		return Filter{kind: FilterInvalid, raw: p}
	}
	return Filter{kind: FilterPredicate, pred: p, label: "<predicate>"}
}

// Const keeps every pair (true) or none (false).
func Const(keep bool) Filter { return Filter{kind: FilterConstant, constant: keep} }

// FilterOf converts a dynamically typed argument: nil ⇒ AcceptAll, Filter
// as is, numbers ⇒ AtMost, bool ⇒ Const, predicates ⇒ Where, *Lua ⇒ its
// filter. Anything else is Invalid.
func FilterOf(x any) Filter {
	switch v := x.(type) {
	case nil:
		return AcceptAll()
	case Filter:
		return v
	case Predicate:
		return Where(v)
	case func(frame.Row) (bool, error):
		return Where(v)
	case *Lua:
		if v == nil {
			return AcceptAll()
		}
		return v.Filter()
	case bool:
		return Const(v)
	case int:
		return AtMost(float64(v))
	case int64:
		return AtMost(float64(v))
	case float32:
		return AtMost(float64(v))
	case float64:
		return AtMost(v)
	default:
		return Filter{kind: FilterInvalid, raw: x}
	}
}

// Kind returns the variant tag.
func (f Filter) Kind() FilterKind { return f.kind }

// Valid reports whether f can be evaluated.
func (f Filter) Valid() bool { return f.kind != FilterInvalid }

// Raw returns the original argument of an Invalid filter.
func (f Filter) Raw() any { return f.raw }

// String describes f for logs.
func (f Filter) String() string {
	switch f.kind {
	case FilterAcceptAll:
		return "all"
	case FilterThreshold:
		return fmt.Sprintf("weight<=%g", f.threshold)
	case FilterPredicate:
		return f.label
	case FilterConstant:
		return fmt.Sprintf("const(%t)", f.constant)
	default:
		return fmt.Sprintf("invalid(%T)", f.raw)
	}
}

// Keep evaluates f on a row whose weight has already been computed.
func (f Filter) Keep(r frame.Row, weight float64) (bool, error) {
	switch f.kind {
	case FilterAcceptAll:
		return true, nil
	case FilterThreshold:
		return weight <= f.threshold, nil
	case FilterPredicate:
		return f.pred(r)
	case FilterConstant:
		return f.constant, nil
	default:
		return false, fmt.Errorf("%w: filter of type %T", ErrInvalid, f.raw)
	}
}
