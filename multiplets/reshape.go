package multiplets

import (
	"fmt"

	"github.com/katalvlaran/kpartite/frame"
)

// MultipletIDColumn names the multiplet number produced by Unpivot.
const MultipletIDColumn = "multiplet_id"

// Join left-joins a table of multiplets (identifier columns "{id}_0" …)
// with a per-entity table. For every position i the right table's columns
// are suffixed "_i" and matched on rightOn (default: the session id
// column), so the result holds one row per multiplet with horizontal
// attributes such as value_0, value_1, …
func (s *Session) Join(left, right *frame.Table, rightOn string) (*frame.Table, error) {
	const op = "Join"
	if !s.ready() {
		return nil, opErr(op, ErrNotInitialized)
	}
	if rightOn == "" {
		rightOn = s.idCol
	}
	if !right.Has(rightOn) {
		return nil, opErr(op, fmt.Errorf("%w %q in right table", ErrMissingColumn, rightOn))
	}

	res := left
	var err error
	for i := range s.groups {
		suffix := fmt.Sprintf("_%d", i)
		key := s.idColumn(i)
		if !res.Has(key) {
			return nil, opErr(op, fmt.Errorf("%w %q in left table", ErrMissingColumn, key))
		}
		if res, err = frame.LeftJoin(res, right.Suffix(suffix), []string{key}, []string{rightOn + suffix}); err != nil {
			return nil, opErr(op, err)
		}
	}

	return res, nil
}

// Unpivot turns a table of multiplets into one row per entity with columns
// multiplet_id, the group column and the id column, ordered by multiplet
// and then by group. With allColumns the remaining multiplet columns are
// copied onto every entity row.
func (s *Session) Unpivot(t *frame.Table, allColumns bool) (*frame.Table, error) {
	const op = "Unpivot"
	if !s.ready() {
		return nil, opErr(op, ErrNotInitialized)
	}
	ids := s.IDColumns()
	for _, c := range ids {
		if !t.Has(c) {
			return nil, opErr(op, fmt.Errorf("%w %q", ErrMissingColumn, c))
		}
	}

	numbered, err := t.WithRowIndex(MultipletIDColumn)
	if err != nil {
		return nil, opErr(op, err)
	}
	long, err := numbered.Unpivot(ids, MultipletIDColumn, "_group", s.idCol)
	if err != nil {
		return nil, opErr(op, err)
	}

	names := make([]frame.Value, len(ids))
	labels := make([]frame.Value, len(ids))
	for i, g := range s.groups {
		names[i] = frame.String(ids[i])
		labels[i] = g.Label
	}
	legend, err := frame.FromColumns([]string{"_group", s.groupCol}, [][]frame.Value{names, labels})
	if err != nil {
		return nil, opErr(op, err)
	}
	res, err := frame.LeftJoin(long, legend, []string{"_group"}, []string{"_group"})
	if err != nil {
		return nil, opErr(op, err)
	}
	if res, err = res.Select(MultipletIDColumn, s.groupCol, s.idCol); err != nil {
		return nil, opErr(op, err)
	}
	if res, err = res.SortStable(MultipletIDColumn); err != nil {
		return nil, opErr(op, err)
	}

	if allColumns {
		rest := numbered.Drop(ids...)
		if res, err = frame.LeftJoin(res, rest, []string{MultipletIDColumn}, []string{MultipletIDColumn}); err != nil {
			return nil, opErr(op, err)
		}
	}

	return res, nil
}
