// SPDX-License-Identifier: MIT

package frame

import (
	"fmt"
	"strings"
)

// Table is an immutable column-major table.
type Table struct {
	names  []string
	index  map[string]int
	cols   [][]Value
	height int
}

// New returns an empty table with the given columns.
func New(names ...string) (*Table, error) {
	cols := make([][]Value, len(names))
	return FromColumns(names, cols)
}

// FromColumns builds a table from column slices. All columns must have the
// same length. The slices are retained, not copied.
func FromColumns(names []string, cols [][]Value) (*Table, error) {
	if len(names) != len(cols) {
		return nil, fmt.Errorf("%w: %d names for %d columns", ErrShape, len(names), len(cols))
	}
	t := &Table{
		names: append([]string(nil), names...),
		index: make(map[string]int, len(names)),
		cols:  make([][]Value, len(cols)),
	}
	for i, name := range names {
		if _, dup := t.index[name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, name)
		}
		t.index[name] = i
		if i == 0 {
			t.height = len(cols[i])
		} else if len(cols[i]) != t.height {
			return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, name, len(cols[i]), t.height)
		}
		t.cols[i] = cols[i]
	}

	return t, nil
}

// FromRows builds a table from row-major data.
func FromRows(names []string, rows [][]Value) (*Table, error) {
	b, err := NewBuilder(names...)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err = b.Append(r...); err != nil {
			return nil, err
		}
	}

	return b.Table(), nil
}

// MustFromRows is FromRows for literals in tests and examples. Plain Go
// scalars are converted with ValueOf; it panics on any error.
func MustFromRows(names []string, rows ...[]any) *Table {
	b, err := NewBuilder(names...)
	if err != nil {
		panic(err)
	}
	vals := make([]Value, len(names))
	for _, r := range rows {
		if len(r) != len(names) {
			panic(fmt.Errorf("%w: row has %d cells, want %d", ErrShape, len(r), len(names)))
		}
		for i, x := range r {
			if vals[i], err = ValueOf(x); err != nil {
				panic(err)
			}
		}
		if err = b.Append(vals...); err != nil {
			panic(err)
		}
	}

	return b.Table()
}

// Height returns the number of rows. A nil table has height 0.
func (t *Table) Height() int {
	if t == nil {
		return 0
	}
	return t.height
}

// Width returns the number of columns.
func (t *Table) Width() int {
	if t == nil {
		return 0
	}
	return len(t.names)
}

// Columns returns a copy of the column names in order.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.names...)
}

// Has reports whether the column exists.
func (t *Table) Has(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.index[name]
	return ok
}

// Column returns a copy of the named column.
func (t *Table) Column(name string) ([]Value, error) {
	c, err := t.col(name)
	if err != nil {
		return nil, err
	}
	return append([]Value(nil), c...), nil
}

// col returns the shared column storage. Callers must not mutate it.
func (t *Table) col(name string) ([]Value, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	i, ok := t.index[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return t.cols[i], nil
}

// At returns the cell at (row, column).
func (t *Table) At(row int, name string) (Value, error) {
	c, err := t.col(name)
	if err != nil {
		return Null(), err
	}
	if row < 0 || row >= t.height {
		return Null(), fmt.Errorf("%w: %d", ErrOutOfRange, row)
	}
	return c[row], nil
}

// Row returns a view of row i. It panics if i is out of range, like slice
// indexing.
func (t *Table) Row(i int) Row {
	if i < 0 || i >= t.Height() {
		panic(fmt.Sprintf("frame: row %d out of range [0,%d)", i, t.Height()))
	}
	return Row{t: t, i: i}
}

// Select keeps the named columns in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	cols := make([][]Value, len(names))
	for i, name := range names {
		c, err := t.col(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}
	out, err := FromColumns(names, cols)
	if err != nil {
		return nil, err
	}
	out.height = t.Height()

	return out, nil
}

// SelectPrefix keeps, in table order, every column whose name starts with
// prefix.
func (t *Table) SelectPrefix(prefix string) *Table {
	var names []string
	for _, n := range t.names {
		if strings.HasPrefix(n, prefix) {
			names = append(names, n)
		}
	}
	out, _ := t.Select(names...)
	return out
}

// Drop removes the named columns; unknown names are ignored.
func (t *Table) Drop(names ...string) *Table {
	skip := make(map[string]struct{}, len(names))
	for _, n := range names {
		skip[n] = struct{}{}
	}
	keep := make([]string, 0, t.Width())
	for _, n := range t.names {
		if _, ok := skip[n]; !ok {
			keep = append(keep, n)
		}
	}
	out, _ := t.Select(keep...)
	return out
}

// RenameFunc renames every column through fn.
func (t *Table) RenameFunc(fn func(string) string) (*Table, error) {
	names := make([]string, len(t.names))
	for i, n := range t.names {
		names[i] = fn(n)
	}
	out, err := FromColumns(names, t.cols)
	if err != nil {
		return nil, err
	}
	out.height = t.height

	return out, nil
}

// Rename renames the columns listed in m (old → new).
func (t *Table) Rename(m map[string]string) (*Table, error) {
	for old := range m {
		if !t.Has(old) {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, old)
		}
	}
	return t.RenameFunc(func(s string) string {
		if n, ok := m[s]; ok {
			return n
		}
		return s
	})
}

// Suffix appends suffix to every column name.
func (t *Table) Suffix(suffix string) *Table {
	out, _ := t.RenameFunc(func(s string) string { return s + suffix })
	return out
}

// WithColumn returns t with the named column set to vals, replacing an
// existing column of the same name or appending a new one.
func (t *Table) WithColumn(name string, vals []Value) (*Table, error) {
	if len(vals) != t.Height() {
		return nil, fmt.Errorf("%w: column %q has %d rows, want %d", ErrShape, name, len(vals), t.Height())
	}
	names := t.Columns()
	cols := append([][]Value(nil), t.cols...)
	if i, ok := t.index[name]; ok {
		cols[i] = vals
	} else {
		names = append(names, name)
		cols = append(cols, vals)
	}
	out, err := FromColumns(names, cols)
	if err != nil {
		return nil, err
	}
	out.height = t.Height()

	return out, nil
}

// WithRowIndex prepends an Int column numbering rows from 0.
func (t *Table) WithRowIndex(name string) (*Table, error) {
	idx := make([]Value, t.Height())
	for i := range idx {
		idx[i] = Int(int64(i))
	}
	names := append([]string{name}, t.names...)
	cols := append([][]Value{idx}, t.cols...)
	out, err := FromColumns(names, cols)
	if err != nil {
		return nil, err
	}
	out.height = t.Height()

	return out, nil
}

// Take returns the rows at the given positions, in that order.
func (t *Table) Take(rows []int) *Table {
	cols := make([][]Value, len(t.cols))
	for j, c := range t.cols {
		nc := make([]Value, len(rows))
		for k, r := range rows {
			nc[k] = c[r]
		}
		cols[j] = nc
	}
	out, _ := FromColumns(t.names, cols)
	out.height = len(rows)

	return out
}

// Head returns the first n rows (or all rows if fewer).
func (t *Table) Head(n int) *Table {
	if n > t.Height() {
		n = t.Height()
	}
	rows := make([]int, n)
	for i := range rows {
		rows[i] = i
	}
	return t.Take(rows)
}

// Concat stacks tables vertically. All tables must have identical column
// lists. Concat of zero tables is an error.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: nothing to concatenate", ErrShape)
	}
	first := tables[0]
	b, err := NewBuilder(first.names...)
	if err != nil {
		return nil, err
	}
	for _, t := range tables {
		if !sameNames(first.names, t.names) {
			return nil, fmt.Errorf("%w: columns %v vs %v", ErrKeyMismatch, first.names, t.names)
		}
		for i := 0; i < t.height; i++ {
			b.appendRow(t, i)
		}
	}

	return b.Table(), nil
}

// Equal reports whether a and b have the same columns and cell values in
// the same order.
func (t *Table) Equal(o *Table) bool {
	if t.Height() != o.Height() || !sameNames(t.Columns(), o.Columns()) {
		return false
	}
	for j := range t.cols {
		for i := 0; i < t.height; i++ {
			if !Equal(t.cols[j][i], o.cols[j][i]) {
				return false
			}
		}
	}
	return true
}

// String renders a compact, human-readable dump (header plus rows).
func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.names, " | "))
	for i := 0; i < t.Height(); i++ {
		sb.WriteByte('\n')
		for j := range t.cols {
			if j > 0 {
				sb.WriteString(" | ")
			}
			sb.WriteString(t.cols[j][i].GoString())
		}
	}
	return sb.String()
}

func sameNames(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Row is a read-only view of one table row.
type Row struct {
	t *Table
	i int
}

// Index returns the row position within its table.
func (r Row) Index() int { return r.i }

// Columns returns the column names visible through the row.
func (r Row) Columns() []string { return r.t.Columns() }

// Get returns the named cell.
func (r Row) Get(name string) (Value, bool) {
	j, ok := r.t.index[name]
	if !ok {
		return Null(), false
	}
	return r.t.cols[j][r.i], true
}

// Float returns the named cell as float64. Null yields NaN; non-numeric
// cells and unknown columns are errors.
func (r Row) Float(name string) (float64, error) {
	v, ok := r.Get(name)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	if v.IsNull() {
		return nan(), nil
	}
	f, ok := v.Float()
	if !ok {
		return 0, fmt.Errorf("frame: column %q holds %s, not a number", name, v.Kind())
	}
	return f, nil
}

// Each calls fn for every (column, value) in column order.
func (r Row) Each(fn func(name string, v Value)) {
	for j, n := range r.t.names {
		fn(n, r.t.cols[j][r.i])
	}
}

// Builder accumulates rows for a new table.
type Builder struct {
	names []string
	cols  [][]Value
	n     int
}

// NewBuilder starts a table with the given columns.
func NewBuilder(names ...string) (*Builder, error) {
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		seen[n] = struct{}{}
	}
	return &Builder{names: append([]string(nil), names...), cols: make([][]Value, len(names))}, nil
}

// Append adds one row.
func (b *Builder) Append(vals ...Value) error {
	if len(vals) != len(b.names) {
		return fmt.Errorf("%w: row has %d cells, want %d", ErrShape, len(vals), len(b.names))
	}
	for j, v := range vals {
		b.cols[j] = append(b.cols[j], v)
	}
	b.n++
	return nil
}

// appendRow copies row i of t; column order must match b.
func (b *Builder) appendRow(t *Table, i int) {
	for j := range b.cols {
		b.cols[j] = append(b.cols[j], t.cols[j][i])
	}
	b.n++
}

// Len returns the number of rows appended so far.
func (b *Builder) Len() int { return b.n }

// Table finalizes the builder. The builder must not be used afterwards.
func (b *Builder) Table() *Table {
	for j := range b.cols {
		if b.cols[j] == nil {
			b.cols[j] = []Value{}
		}
	}
	t, _ := FromColumns(b.names, b.cols)
	t.height = b.n

	return t
}
