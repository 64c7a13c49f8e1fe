// SPDX-License-Identifier: MIT
// Package frame: sentinel error set. Every operation returns one of these
// (possibly wrapped with the offending column name) so callers can match
// with errors.Is.

package frame

import "errors"

var (
	// ErrColumnNotFound is returned when a referenced column does not exist.
	ErrColumnNotFound = errors.New("frame: column not found")

	// ErrDuplicateColumn is returned when an operation would produce two
	// columns with the same name.
	ErrDuplicateColumn = errors.New("frame: duplicate column")

	// ErrShape is returned when a row or column length does not match the
	// table shape.
	ErrShape = errors.New("frame: shape mismatch")

	// ErrKeyMismatch is returned when join key lists differ in length or
	// when concatenated tables have different columns.
	ErrKeyMismatch = errors.New("frame: key mismatch")

	// ErrUnsupportedValue is returned by ValueOf for Go types that have no
	// cell representation.
	ErrUnsupportedValue = errors.New("frame: unsupported value type")

	// ErrOutOfRange is returned for row indexes outside [0, Height).
	ErrOutOfRange = errors.New("frame: row index out of range")
)
