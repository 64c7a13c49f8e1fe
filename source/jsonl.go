package source

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/katalvlaran/kpartite/frame"
)

// maxLineBytes bounds a single JSON Lines record.
const maxLineBytes = 16 << 20

// ReadJSONLines reads one JSON object per line. Columns are the union of
// the top-level keys in order of first appearance; a key missing from a
// record is null there. Nested objects and arrays are kept as their raw
// JSON text. Blank lines are skipped.
func ReadJSONLines(r io.Reader) (*frame.Table, error) {
	var (
		names []string
		pos   = make(map[string]int)
		cols  [][]frame.Value
		n     int
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for line := 1; sc.Scan(); line++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		if !gjson.Valid(text) {
			return nil, fmt.Errorf("source: jsonl line %d: invalid JSON", line)
		}
		rec := gjson.Parse(text)
		if !rec.IsObject() {
			return nil, fmt.Errorf("%w: line %d", ErrNotObject, line)
		}
		rec.ForEach(func(key, val gjson.Result) bool {
			j, ok := pos[key.Str]
			if !ok {
				j = len(names)
				pos[key.Str] = j
				names = append(names, key.Str)
				cols = append(cols, nullColumn(n))
			}
			if len(cols[j]) == n+1 {
				// Repeated key: the last occurrence wins.
				cols[j][n] = jsonValue(val)
			} else {
				cols[j] = append(cols[j], jsonValue(val))
			}
			return true
		})
		n++
		for j := range cols {
			if len(cols[j]) < n {
				cols[j] = append(cols[j], frame.Null())
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("source: jsonl: %w", err)
	}

	return frame.FromColumns(names, cols)
}

func nullColumn(n int) []frame.Value {
	out := make([]frame.Value, n)
	for i := range out {
		out[i] = frame.Null()
	}
	return out
}

// jsonValue converts a gjson scalar. Numbers written without a fraction or
// exponent that fit int64 become Int.
func jsonValue(v gjson.Result) frame.Value {
	switch v.Type {
	case gjson.Null:
		return frame.Null()
	case gjson.True:
		return frame.Bool(true)
	case gjson.False:
		return frame.Bool(false)
	case gjson.String:
		return frame.String(v.Str)
	case gjson.Number:
		if !strings.ContainsAny(v.Raw, ".eE") {
			if f := v.Float(); f >= -(1<<63) && f < 1<<63 {
				return frame.Int(v.Int())
			}
		}
		return frame.Float(v.Num)
	default:
		return frame.String(v.Raw)
	}
}
