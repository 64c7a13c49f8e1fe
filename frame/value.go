// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"math"
	"strconv"
)

// Kind enumerates the dynamic types a cell can hold.
type Kind uint8

const (
	// KindNull is the missing value. It sorts after every other value and
	// never matches in joins.
	KindNull Kind = iota
	// KindBool holds a boolean.
	KindBool
	// KindInt holds a signed 64-bit integer.
	KindInt
	// KindFloat holds a float64.
	KindFloat
	// KindString holds a string.
	KindString
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is one cell of a Table. The zero Value is null.
type Value struct {
	kind Kind
	b    bool
	i    int64
	f    float64
	s    string
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Int wraps an integer.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float wraps a float64.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// ValueOf converts a Go scalar into a Value. Supported: nil, Value, bool,
// all integer kinds, float32/float64 and string.
func ValueOf(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(int64(v)), nil
	case int8:
		return Int(int64(v)), nil
	case int16:
		return Int(int64(v)), nil
	case int32:
		return Int(int64(v)), nil
	case int64:
		return Int(v), nil
	case uint:
		return Int(int64(v)), nil
	case uint8:
		return Int(int64(v)), nil
	case uint16:
		return Int(int64(v)), nil
	case uint32:
		return Int(int64(v)), nil
	case uint64:
		if v > math.MaxInt64 {
			return Null(), fmt.Errorf("%w: %d overflows int64", ErrUnsupportedValue, v)
		}
		return Int(int64(v)), nil
	case float32:
		return Float(float64(v)), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	default:
		return Null(), fmt.Errorf("%w: %T", ErrUnsupportedValue, x)
	}
}

// Kind reports the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns v as float64 for numeric and boolean kinds.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInt:
		return float64(v.i), true
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Int returns v as int64 for integer kinds and for integral floats.
func (v Value) Int() (int64, bool) {
	switch v.kind {
	case KindInt:
		return v.i, true
	case KindFloat:
		if v.f == math.Trunc(v.f) && v.f >= math.MinInt64 && v.f < math.MaxInt64 {
			return int64(v.f), true
		}
	}
	return 0, false
}

// Str returns the string payload of a KindString value.
func (v Value) Str() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// BoolValue returns the payload of a KindBool value.
func (v Value) BoolValue() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Interface returns the payload as a plain Go value (nil for null).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	default:
		return nil
	}
}

// String renders v for CSV output and messages. Null renders as "".
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return ""
	}
}

// GoString implements fmt.GoStringer for readable test failures.
func (v Value) GoString() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	if v.kind == KindNull {
		return "null"
	}
	return v.String()
}

// isNumeric reports whether v is int or float.
func (v Value) isNumeric() bool { return v.kind == KindInt || v.kind == KindFloat }

// key returns a hashable identity for v. Integral floats share the key of
// the equal integer so Int(3) and Float(3) join together.
func (v Value) key() string {
	switch v.kind {
	case KindBool:
		if v.b {
			return "b1"
		}
		return "b0"
	case KindInt:
		return "n" + strconv.FormatInt(v.i, 10)
	case KindFloat:
		if i, ok := v.Int(); ok {
			return "n" + strconv.FormatInt(i, 10)
		}
		return "f" + strconv.FormatUint(math.Float64bits(v.f), 16)
	case KindString:
		return "s" + v.s
	default:
		return "\x00"
	}
}

// Compare orders a and b: nulls last, numbers numerically (NaN after all
// other numbers), then by kind for mixed non-numeric kinds, strings
// lexicographically. It returns -1, 0 or +1.
//
// Complexity: O(len(string)) for strings, O(1) otherwise.
func Compare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		switch {
		case a.kind == b.kind:
			return 0
		case a.kind == KindNull:
			return 1
		default:
			return -1
		}
	}
	if a.isNumeric() && b.isNumeric() {
		if a.kind == KindInt && b.kind == KindInt {
			return cmpOrdered(a.i, b.i)
		}
		af, _ := a.Float()
		bf, _ := b.Float()
		an, bn := math.IsNaN(af), math.IsNaN(bf)
		switch {
		case an && bn:
			return 0
		case an:
			return 1
		case bn:
			return -1
		}
		return cmpOrdered(af, bf)
	}
	if a.kind != b.kind {
		return cmpOrdered(a.kind, b.kind)
	}
	switch a.kind {
	case KindBool:
		switch {
		case a.b == b.b:
			return 0
		case !a.b:
			return -1
		default:
			return 1
		}
	case KindString:
		return cmpOrdered(a.s, b.s)
	}
	return 0
}

// Equal reports whether a and b carry the same value. Null equals null here;
// joins use their own null-never-matches rule.
func Equal(a, b Value) bool { return a.key() == b.key() }

func cmpOrdered[T int64 | float64 | string | Kind](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
