// Package source loads entity tables from CSV, JSON Lines and SQL queries
// into frame.Table values.
//
// Cell types are inferred the same way for every format: integers become
// Int, other numbers Float, booleans Bool, empty or SQL NULL cells null and
// everything else String. CSV columns are typed as a whole: a column whose
// non-empty cells all parse as integers is Int, else Float if they all parse
// as numbers, else Bool, else String.
package source

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrNoHeader indicates a CSV input without a header row.
	ErrNoHeader = errors.New("source: missing header row")

	// ErrNotObject indicates a JSON Lines record that is not an object.
	ErrNotObject = errors.New("source: record is not a JSON object")

	// ErrUnknownFormat indicates a format name that no loader handles.
	ErrUnknownFormat = errors.New("source: unknown format")
)

// Format names an input encoding.
type Format string

const (
	// FormatCSV is comma-separated values with a header row.
	FormatCSV Format = "csv"
	// FormatJSONLines is one JSON object per line.
	FormatJSONLines Format = "jsonl"
	// FormatSQL is a query against a database/sql driver.
	FormatSQL Format = "sql"
)

// ParseFormat validates a format name. "ndjson" and "json" are accepted as
// aliases of jsonl.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "csv":
		return FormatCSV, nil
	case "jsonl", "ndjson", "json":
		return FormatJSONLines, nil
	case "sql":
		return FormatSQL, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, s)
	}
}

// FormatOf guesses the format of a file from its extension; unknown
// extensions are CSV.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson", ".json":
		return FormatJSONLines
	default:
		return FormatCSV
	}
}
