package multiplets_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/kpartite/frame"
	"github.com/katalvlaran/kpartite/multiplets"
)

func TestJoin_HorizontalAttributes(t *testing.T) {
	s := built(t, deEntities(), 20)

	got, err := s.Join(s.Hyperedges(), deEntities(), "")
	require.NoError(t, err)
	want := frame.MustFromRows(
		[]string{"id_0", "id_1", "_distance", "group_0", "value_0", "group_1", "value_1"},
		[]any{1, 3, 20.0, "D", 10, "E", 30},
		[]any{2, 3, 10.0, "D", 20, "E", 30},
		[]any{2, 4, 20.0, "D", 20, "E", 40},
	)
	assert.True(t, want.Equal(got), "got:\n%s", got)
}

func TestJoin_Errors(t *testing.T) {
	s := built(t, deEntities(), 20)

	_, err := s.Join(s.Hyperedges(), deEntities(), "key")
	require.ErrorIs(t, err, multiplets.ErrMissingColumn)

	left := frame.MustFromRows([]string{"id_0"}, []any{1})
	_, err = s.Join(left, deEntities(), "")
	require.ErrorIs(t, err, multiplets.ErrMissingColumn)
}

func TestUnpivot_LongFormat(t *testing.T) {
	s := built(t, deEntities(), 20)

	got, err := s.Unpivot(s.Hyperedges(), false)
	require.NoError(t, err)
	want := frame.MustFromRows([]string{multiplets.MultipletIDColumn, "group", "id"},
		[]any{0, "D", 1},
		[]any{0, "E", 3},
		[]any{1, "D", 2},
		[]any{1, "E", 3},
		[]any{2, "D", 2},
		[]any{2, "E", 4},
	)
	assert.True(t, want.Equal(got), "got:\n%s", got)

	got, err = s.Unpivot(s.Hyperedges(), true)
	require.NoError(t, err)
	assert.Equal(t, []string{multiplets.MultipletIDColumn, "group", "id", "_distance"}, got.Columns())
	w, err := got.At(2, "_distance")
	require.NoError(t, err)
	f, _ := w.Float()
	assert.Equal(t, 10.0, f)
}

func TestUnpivot_MissingColumn(t *testing.T) {
	s := built(t, defEntities(), threshold30)
	left := frame.MustFromRows([]string{"id_0", "id_1"}, []any{2, 3})

	_, err := s.Unpivot(left, false)
	require.ErrorIs(t, err, multiplets.ErrMissingColumn)
}
