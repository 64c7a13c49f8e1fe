package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/katalvlaran/kpartite/frame"
)

// CSVOptions configures ReadCSV.
//
// Comma      – field delimiter. Default ','.
// NullValues – cell texts read as null besides the empty string.
// Strings    – columns kept as String without inference (e.g. zero-padded ids).
type CSVOptions struct {
	Comma      rune
	NullValues []string
	Strings    []string
}

// ReadCSV reads a header row followed by records.
//
// Complexity: O(rows × columns).
func ReadCSV(r io.Reader, opts CSVOptions) (*frame.Table, error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("source: csv header: %w", err)
	}
	header = append([]string(nil), header...)

	raw := make([][]string, len(header))
	for line := 2; ; line++ {
		rec, rerr := cr.Read()
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return nil, fmt.Errorf("source: csv line %d: %w", line, rerr)
		}
		for j := range header {
			raw[j] = append(raw[j], rec[j])
		}
	}

	nulls := map[string]bool{"": true}
	for _, n := range opts.NullValues {
		nulls[n] = true
	}
	keep := make(map[string]bool, len(opts.Strings))
	for _, c := range opts.Strings {
		keep[c] = true
	}

	cols := make([][]frame.Value, len(header))
	for j, name := range header {
		if keep[name] {
			cols[j] = stringColumn(raw[j], nulls)
			continue
		}
		cols[j] = inferColumn(raw[j], nulls)
	}

	return frame.FromColumns(header, cols)
}

// cellKind is the narrowest type that parses every non-null cell.
type cellKind uint8

const (
	cellInt cellKind = iota
	cellFloat
	cellBool
	cellString
)

func inferColumn(cells []string, nulls map[string]bool) []frame.Value {
	var (
		kind cellKind
		seen bool
	)
	for _, c := range cells {
		if nulls[c] {
			continue
		}
		if k := kindOf(c); !seen {
			kind, seen = k, true
		} else {
			kind = widen(kind, k)
		}
		if kind == cellString {
			break
		}
	}

	out := make([]frame.Value, len(cells))
	for i, c := range cells {
		if nulls[c] {
			out[i] = frame.Null()
			continue
		}
		switch kind {
		case cellInt:
			n, _ := strconv.ParseInt(c, 10, 64)
			out[i] = frame.Int(n)
		case cellFloat:
			f, _ := strconv.ParseFloat(c, 64)
			out[i] = frame.Float(f)
		case cellBool:
			b, _ := strconv.ParseBool(strings.ToLower(c))
			out[i] = frame.Bool(b)
		default:
			out[i] = frame.String(c)
		}
	}
	return out
}

// kindOf classifies one cell. Bool only covers "true"/"false" so that 0/1
// columns stay numeric.
func kindOf(c string) cellKind {
	if _, err := strconv.ParseInt(c, 10, 64); err == nil {
		return cellInt
	}
	if _, err := strconv.ParseFloat(c, 64); err == nil {
		return cellFloat
	}
	switch strings.ToLower(c) {
	case "true", "false":
		return cellBool
	}
	return cellString
}

// widen joins two cell kinds: Int and Float give Float, any other mix
// gives String.
func widen(a, b cellKind) cellKind {
	switch {
	case a == b:
		return a
	case a <= cellFloat && b <= cellFloat:
		return cellFloat
	default:
		return cellString
	}
}

func stringColumn(cells []string, nulls map[string]bool) []frame.Value {
	out := make([]frame.Value, len(cells))
	for i, c := range cells {
		if nulls[c] {
			out[i] = frame.Null()
		} else {
			out[i] = frame.String(c)
		}
	}
	return out
}
