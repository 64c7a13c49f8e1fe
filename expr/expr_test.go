package expr_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/kpartite/expr"
	"github.com/katalvlaran/kpartite/frame"
)

func pair() *frame.Table {
	return frame.MustFromRows([]string{"id_A", "value_A", "id_B", "value_B", "tag_A"},
		[]any{1, 10, 3, 30, "x"},
		[]any{2, 20, 3, nil, "y"},
	)
}

func TestOf_Dispatch(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want expr.Kind
	}{
		{"expr", expr.Lit(2), expr.KindLiteral},
		{"column", "value_A", expr.KindColumn},
		{"int", 3, expr.KindLiteral},
		{"float", 1.5, expr.KindLiteral},
		{"func", func(frame.Row) (float64, error) { return 1, nil }, expr.KindExpression},
		{"nil", nil, expr.KindInvalid},
		{"slice", []int{1}, expr.KindInvalid},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expr.Of(tc.in).Kind())
		})
	}
}

func TestExpr_IsZero(t *testing.T) {
	assert.True(t, expr.Expr{}.IsZero())
	assert.False(t, expr.Of(nil).IsZero())
	assert.False(t, expr.Fn(nil).IsZero())
	assert.False(t, expr.Lit(0).IsZero())
}

func TestEval(t *testing.T) {
	tb := pair()
	r := tb.Row(0)

	v, err := expr.Col("value_B").Eval(r)
	require.NoError(t, err)
	assert.Equal(t, 30.0, v)

	v, err = expr.Col("value_B").Eval(tb.Row(1))
	require.NoError(t, err)
	assert.True(t, math.IsNaN(v))

	_, err = expr.Col("missing").Eval(r)
	require.ErrorIs(t, err, frame.ErrColumnNotFound)

	_, err = expr.Of(struct{}{}).Eval(r)
	require.ErrorIs(t, err, expr.ErrInvalid)

	vals, err := expr.Lit(7).Values(tb)
	require.NoError(t, err)
	require.Len(t, vals, 2)
	f, _ := vals[1].Float()
	assert.Equal(t, 7.0, f)

	_, err = expr.Col("tag_A").Values(tb)
	require.Error(t, err)
}

func TestFilterOf(t *testing.T) {
	assert.Equal(t, expr.FilterAcceptAll, expr.FilterOf(nil).Kind())
	assert.Equal(t, expr.FilterThreshold, expr.FilterOf(30).Kind())
	assert.Equal(t, expr.FilterConstant, expr.FilterOf(false).Kind())
	assert.Equal(t, expr.FilterInvalid, expr.FilterOf("x").Kind())

	r := pair().Row(0)
	ok, err := expr.AtMost(30).Keep(r, 30)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = expr.AtMost(30).Keep(r, math.NaN())
	assert.False(t, ok)
	ok, _ = expr.Const(false).Keep(r, 0)
	assert.False(t, ok)
}

func TestLua_NumberAndFilter(t *testing.T) {
	l, err := expr.CompileLua("math.abs(value_A - value_B)")
	require.NoError(t, err)
	defer l.Close()

	tb := pair()
	v, err := l.Number(tb.Row(0))
	require.NoError(t, err)
	assert.Equal(t, 20.0, v)

	// value_B is null in row 1: arithmetic on nil is a Lua runtime error.
	_, err = l.Number(tb.Row(1))
	require.Error(t, err)

	f, err := expr.CompileLua(`tag_A == "x" and value_A < 15`)
	require.NoError(t, err)
	defer f.Close()
	keep, err := f.Filter().Keep(tb.Row(0), 0)
	require.NoError(t, err)
	assert.True(t, keep)
	keep, err = f.Filter().Keep(tb.Row(1), 0)
	require.NoError(t, err)
	assert.False(t, keep)

	assert.Equal(t, expr.KindExpression, expr.Of(l).Kind())
	assert.Equal(t, "lua(math.abs(value_A - value_B))", l.Expr().String())
}

func TestLua_CompileError(t *testing.T) {
	_, err := expr.CompileLua("1 +")
	require.Error(t, err)
}
