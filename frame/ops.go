// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

func nan() float64 { return math.NaN() }

// CrossJoin returns the cartesian product of left and right. Rows are
// ordered left-major: (l0,r0), (l0,r1), …, (l1,r0), …
// Column names must not collide.
//
// Complexity: O(|L|·|R|·(w_L+w_R)).
func CrossJoin(left, right *Table) (*Table, error) {
	names := append(left.Columns(), right.names...)
	b, err := NewBuilder(names...)
	if err != nil {
		return nil, err
	}
	var (
		i, j int
		row  = make([]Value, len(names))
		wl   = left.Width()
	)
	for i = 0; i < left.height; i++ {
		for j = 0; j < right.height; j++ {
			fillRow(row[:wl], left, i)
			fillRow(row[wl:], right, j)
			_ = b.Append(row...)
		}
	}

	return b.Table(), nil
}

// Filter keeps the rows for which keep returns true. The first error from
// keep aborts the scan and is returned unchanged.
func (t *Table) Filter(keep func(Row) (bool, error)) (*Table, error) {
	rows := make([]int, 0, t.Height())
	for i := 0; i < t.Height(); i++ {
		ok, err := keep(Row{t: t, i: i})
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, i)
		}
	}
	return t.Take(rows), nil
}

// InnerJoin joins left and right on equal values of the `on` columns, which
// must exist in both tables. Output columns are left's columns followed by
// right's non-key columns; rows follow left order, then right order within
// a key. Null keys never match.
//
// Complexity: O(|L| + |R| + |out|) expected.
func InnerJoin(left, right *Table, on []string) (*Table, error) {
	return hashJoin(left, right, on, on, false)
}

// LeftJoin keeps every left row; right non-key columns are null when no
// right row matches. leftOn and rightOn pair up positionally.
func LeftJoin(left, right *Table, leftOn, rightOn []string) (*Table, error) {
	return hashJoin(left, right, leftOn, rightOn, true)
}

func hashJoin(left, right *Table, leftOn, rightOn []string, keepUnmatched bool) (*Table, error) {
	if len(leftOn) != len(rightOn) || len(leftOn) == 0 {
		return nil, fmt.Errorf("%w: %v vs %v", ErrKeyMismatch, leftOn, rightOn)
	}
	lk, err := keyColumns(left, leftOn)
	if err != nil {
		return nil, err
	}
	rk, err := keyColumns(right, rightOn)
	if err != nil {
		return nil, err
	}

	// Right-side payload columns: everything except the right keys.
	isKey := make(map[string]struct{}, len(rightOn))
	for _, k := range rightOn {
		isKey[k] = struct{}{}
	}
	var rightCols []int
	names := left.Columns()
	for j, n := range right.names {
		if _, ok := isKey[n]; ok {
			continue
		}
		rightCols = append(rightCols, j)
		names = append(names, n)
	}
	b, err := NewBuilder(names...)
	if err != nil {
		return nil, err
	}

	// Build side: right rows grouped by key, in right order.
	buckets := make(map[string][]int, right.Height())
	for i := 0; i < right.Height(); i++ {
		k, ok := compositeKey(rk, i)
		if !ok {
			continue
		}
		buckets[k] = append(buckets[k], i)
	}

	var (
		row = make([]Value, len(names))
		wl  = left.Width()
	)
	for i := 0; i < left.Height(); i++ {
		k, ok := compositeKey(lk, i)
		var matches []int
		if ok {
			matches = buckets[k]
		}
		if len(matches) == 0 {
			if keepUnmatched {
				fillRow(row[:wl], left, i)
				for c := wl; c < len(row); c++ {
					row[c] = Null()
				}
				_ = b.Append(row...)
			}
			continue
		}
		for _, r := range matches {
			fillRow(row[:wl], left, i)
			for c, j := range rightCols {
				row[wl+c] = right.cols[j][r]
			}
			_ = b.Append(row...)
		}
	}

	return b.Table(), nil
}

func keyColumns(t *Table, on []string) ([][]Value, error) {
	out := make([][]Value, len(on))
	for i, n := range on {
		c, err := t.col(n)
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// compositeKey joins the per-column keys of row i; ok is false if any key
// cell is null.
func compositeKey(cols [][]Value, i int) (string, bool) {
	if len(cols) == 1 {
		v := cols[0][i]
		return v.key(), !v.IsNull()
	}
	var sb strings.Builder
	for j, c := range cols {
		if c[i].IsNull() {
			return "", false
		}
		if j > 0 {
			sb.WriteByte(0x1f)
		}
		sb.WriteString(c[i].key())
	}
	return sb.String(), true
}

func fillRow(dst []Value, t *Table, i int) {
	for j := range t.cols {
		dst[j] = t.cols[j][i]
	}
}

// Group is one key of a GroupBy result.
type Group struct {
	Key  []Value
	Rows []int
}

// GroupBy groups row positions by the values of keys. Groups appear in order
// of first occurrence; rows inside a group keep table order. Nulls form
// their own group.
func (t *Table) GroupBy(keys ...string) ([]Group, error) {
	kc, err := keyColumns(t, keys)
	if err != nil {
		return nil, err
	}
	var (
		groups []Group
		pos    = make(map[string]int)
		sb     strings.Builder
	)
	for i := 0; i < t.Height(); i++ {
		sb.Reset()
		for j, c := range kc {
			if j > 0 {
				sb.WriteByte(0x1f)
			}
			sb.WriteString(c[i].key())
		}
		k := sb.String()
		g, ok := pos[k]
		if !ok {
			key := make([]Value, len(kc))
			for j, c := range kc {
				key[j] = c[i]
			}
			g = len(groups)
			pos[k] = g
			groups = append(groups, Group{Key: key})
		}
		groups[g].Rows = append(groups[g].Rows, i)
	}

	return groups, nil
}

// Partition is one part of PartitionBy.
type Partition struct {
	Key   Value
	Table *Table
}

// PartitionBy splits t by the values of column name. The key column is
// removed from each part. Parts appear in order of first occurrence.
func (t *Table) PartitionBy(name string) ([]Partition, error) {
	groups, err := t.GroupBy(name)
	if err != nil {
		return nil, err
	}
	rest := t.Drop(name)
	parts := make([]Partition, len(groups))
	for i, g := range groups {
		parts[i] = Partition{Key: g.Key[0], Table: rest.Take(g.Rows)}
	}

	return parts, nil
}

// Unpivot turns the `on` columns into rows. The output has three columns:
// index (copied from t), variableName (the source column name as a string)
// and valueName (the cell). Rows are ordered column-major: all rows of
// on[0], then all rows of on[1], and so on.
//
// Complexity: O(|t|·len(on)).
func (t *Table) Unpivot(on []string, index, variableName, valueName string) (*Table, error) {
	idx, err := t.col(index)
	if err != nil {
		return nil, err
	}
	src, err := keyColumns(t, on)
	if err != nil {
		return nil, err
	}
	b, err := NewBuilder(index, variableName, valueName)
	if err != nil {
		return nil, err
	}
	for j, c := range src {
		name := String(on[j])
		for i := 0; i < t.Height(); i++ {
			_ = b.Append(idx[i], name, c[i])
		}
	}

	return b.Table(), nil
}

// SortStable sorts rows ascending by the given columns (lexicographically,
// first column most significant). Ties keep their original order; nulls
// sort last.
//
// Complexity: O(n log n · len(by)).
func (t *Table) SortStable(by ...string) (*Table, error) {
	kc, err := keyColumns(t, by)
	if err != nil {
		return nil, err
	}
	perm := make([]int, t.Height())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ra, rb := perm[a], perm[b]
		for _, c := range kc {
			if d := Compare(c[ra], c[rb]); d != 0 {
				return d < 0
			}
		}
		return false
	})

	return t.Take(perm), nil
}
