// Package frame is a small, deterministic, in-memory columnar table engine.
//
// It provides exactly the query shapes the multiplet pipeline needs:
//
//   - CrossJoin         — cartesian product (left-major row order)
//   - Filter            — row predicate
//   - Rename / Suffix   — column renaming
//   - InnerJoin         — multi-key hash join, left order preserved
//   - LeftJoin          — multi-key hash join with null fill
//   - GroupBy           — row groups by key, first-appearance order
//   - PartitionBy       — split into sub-tables by one key column
//   - Unpivot           — wide-to-long with an explicit index column
//   - SortStable        — ascending stable sort, nulls last
//
// Tables are immutable once built: every operation returns a new *Table and
// may share column storage with its input. Cells are dynamically typed
// Values (null, bool, int, float, string).
//
// Determinism: no operation iterates a Go map to produce output order, so
// identical inputs always yield identical tables.
package frame
