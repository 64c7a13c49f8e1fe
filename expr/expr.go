// Package expr defines the tagged variants used wherever a caller may pass
// "an expression, a column name or a number": edge weights, greedy
// preferences and edge filters.
//
// The only place a dynamically typed argument is inspected is Of / FilterOf;
// everything downstream switches on Kind. Unsupported arguments become
// KindInvalid so the caller (a multiplets.Session) can warn once and
// substitute a zero literal.
package expr

import (
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/kpartite/frame"
)

// ErrInvalid is returned when an Invalid expression or filter is evaluated.
var ErrInvalid = errors.New("expr: unsupported expression")

// Kind tags an Expr.
type Kind uint8

const (
	// KindInvalid marks an argument of unsupported type.
	KindInvalid Kind = iota
	// KindExpression is a computed value (Go func or Lua).
	KindExpression
	// KindColumn reads a column of the row.
	KindColumn
	// KindLiteral is a constant.
	KindLiteral
)

// Func computes a number from a row.
type Func func(r frame.Row) (float64, error)

// Expr is a numeric expression over a table row.
type Expr struct {
	kind    Kind
	fn      Func
	column  string
	literal float64
	label   string
	raw     any
	given   bool // set on Invalid values built from an argument
}

// invalid wraps an unsupported argument, nil included.
func invalid(x any) Expr { return Expr{kind: KindInvalid, raw: x, given: true} }

// Fn wraps a Go function. A nil function yields an Invalid expression.
func Fn(f Func) Expr {
	if f == nil {
		return invalid(f)
	}
	return Expr{kind: KindExpression, fn: f, label: "<func>"}
}

// Col references a column.
func Col(name string) Expr { return Expr{kind: KindColumn, column: name} }

// Lit is a constant.
func Lit(x float64) Expr { return Expr{kind: KindLiteral, literal: x} }

// Of converts a dynamically typed argument: Expr is returned as is; Func or
// func(frame.Row) (float64, error) become expressions; *Lua becomes its
// expression; string becomes a column reference; any Go number becomes a
// literal. Everything else (including nil) is Invalid.
func Of(x any) Expr {
	switch v := x.(type) {
	case Expr:
		return v
	case Func:
		return Fn(v)
	case func(frame.Row) (float64, error):
		return Fn(v)
	case *Lua:
		if v == nil {
			return invalid(x)
		}
		return v.Expr()
	case string:
		return Col(v)
	case int:
		return Lit(float64(v))
	case int32:
		return Lit(float64(v))
	case int64:
		return Lit(float64(v))
	case uint:
		return Lit(float64(v))
	case uint32:
		return Lit(float64(v))
	case uint64:
		return Lit(float64(v))
	case float32:
		return Lit(float64(v))
	case float64:
		return Lit(v)
	default:
		return invalid(x)
	}
}

// Kind returns the variant tag.
func (e Expr) Kind() Kind { return e.kind }

// IsZero reports whether e is the zero Expr, i.e. no argument was given.
// Results of Of and Fn are never zero, even for a nil argument.
func (e Expr) IsZero() bool { return e.kind == KindInvalid && !e.given }

// Valid reports whether e can be evaluated.
func (e Expr) Valid() bool { return e.kind != KindInvalid }

// Column returns the referenced column for KindColumn.
func (e Expr) Column() string { return e.column }

// Literal returns the constant for KindLiteral.
func (e Expr) Literal() float64 { return e.literal }

// Raw returns the original argument of an Invalid expression.
func (e Expr) Raw() any { return e.raw }

// String describes e for logs.
func (e Expr) String() string {
	switch e.kind {
	case KindExpression:
		return e.label
	case KindColumn:
		return "col(" + e.column + ")"
	case KindLiteral:
		return fmt.Sprintf("lit(%g)", e.literal)
	default:
		return fmt.Sprintf("invalid(%T)", e.raw)
	}
}

// Eval computes e on one row. Column cells that are null evaluate to NaN.
func (e Expr) Eval(r frame.Row) (float64, error) {
	switch e.kind {
	case KindExpression:
		return e.fn(r)
	case KindColumn:
		return r.Float(e.column)
	case KindLiteral:
		return e.literal, nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrInvalid, e.raw)
	}
}

// Values evaluates e on every row of t and returns the results as Float
// cells (NaN becomes null). A column reference keeps the original cells
// after checking they are numeric.
func (e Expr) Values(t *frame.Table) ([]frame.Value, error) {
	if e.kind == KindColumn {
		col, err := t.Column(e.column)
		if err != nil {
			return nil, err
		}
		for _, v := range col {
			if _, ok := v.Float(); !ok && !v.IsNull() {
				return nil, fmt.Errorf("expr: column %q holds %s, not a number", e.column, v.Kind())
			}
		}
		return col, nil
	}
	out := make([]frame.Value, t.Height())
	for i := range out {
		x, err := e.Eval(t.Row(i))
		if err != nil {
			return nil, err
		}
		if math.IsNaN(x) {
			out[i] = frame.Null()
		} else {
			out[i] = frame.Float(x)
		}
	}

	return out, nil
}
