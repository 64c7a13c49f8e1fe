package expr

import (
	"fmt"
	"math"

	lua "github.com/yuin/gopher-lua"

	"github.com/katalvlaran/kpartite/frame"
)

// Lua is an expression written in Lua, compiled once and evaluated per row.
// Every column of the row is bound as a global before evaluation, so a pair
// weight can be written as
//
//	math.abs(value_A - value_B)
//
// and a filter as
//
//	value_A < 50 and _distance <= 30
//
// A Lua value owns an *lua.LState and is not safe for concurrent use.
type Lua struct {
	src   string
	state *lua.LState
	fn    *lua.LFunction
	bound map[string]struct{}
}

// CompileLua compiles src as the right-hand side of a Lua return statement.
func CompileLua(src string) (*Lua, error) {
	L := lua.NewState()
	fn, err := L.LoadString("return " + src)
	if err != nil {
		L.Close()
		return nil, fmt.Errorf("expr: compile %q: %w", src, err)
	}

	return &Lua{src: src, state: L, fn: fn, bound: make(map[string]struct{})}, nil
}

// Close releases the interpreter.
func (l *Lua) Close() {
	if l != nil && l.state != nil {
		l.state.Close()
		l.state = nil
	}
}

// Source returns the expression text.
func (l *Lua) Source() string { return l.src }

// Expr wraps l as a numeric expression.
func (l *Lua) Expr() Expr {
	e := Fn(l.Number)
	e.label = "lua(" + l.src + ")"
	return e
}

// Filter wraps l as a predicate.
func (l *Lua) Filter() Filter {
	f := Where(l.Bool)
	f.label = "lua(" + l.src + ")"
	return f
}

// Number evaluates l on r. Booleans become 1/0, nil becomes NaN.
func (l *Lua) Number(r frame.Row) (float64, error) {
	v, err := l.eval(r)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case lua.LNumber:
		return float64(x), nil
	case lua.LBool:
		if x {
			return 1, nil
		}
		return 0, nil
	case *lua.LNilType:
		return math.NaN(), nil
	default:
		return 0, fmt.Errorf("expr: lua(%s) returned %s, not a number", l.src, v.Type())
	}
}

// Bool evaluates l on r using Lua truthiness.
func (l *Lua) Bool(r frame.Row) (bool, error) {
	v, err := l.eval(r)
	if err != nil {
		return false, err
	}
	return lua.LVAsBool(v), nil
}

func (l *Lua) eval(r frame.Row) (lua.LValue, error) {
	if l.state == nil {
		return lua.LNil, fmt.Errorf("expr: lua(%s) used after Close", l.src)
	}
	l.bind(r)
	L := l.state
	L.Push(l.fn)
	if err := L.PCall(0, 1, nil); err != nil {
		return lua.LNil, fmt.Errorf("expr: lua(%s): %w", l.src, err)
	}
	v := L.Get(-1)
	L.Pop(1)

	return v, nil
}

// bind publishes the row's cells as globals and clears globals left over
// from rows of a differently shaped table.
func (l *Lua) bind(r frame.Row) {
	seen := make(map[string]struct{}, len(l.bound))
	r.Each(func(name string, v frame.Value) {
		l.state.SetGlobal(name, toLua(v))
		seen[name] = struct{}{}
	})
	for name := range l.bound {
		if _, ok := seen[name]; !ok {
			l.state.SetGlobal(name, lua.LNil)
		}
	}
	l.bound = seen
}

func toLua(v frame.Value) lua.LValue {
	switch v.Kind() {
	case frame.KindBool:
		b, _ := v.BoolValue()
		return lua.LBool(b)
	case frame.KindInt, frame.KindFloat:
		f, _ := v.Float()
		return lua.LNumber(f)
	case frame.KindString:
		s, _ := v.Str()
		return lua.LString(s)
	default:
		return lua.LNil
	}
}
