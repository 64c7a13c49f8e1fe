package source

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/katalvlaran/kpartite/frame"
)

// Querier is the subset of *sql.DB, *sql.Conn and *sql.Tx used by ReadSQL.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ReadSQL runs query and reads every row. Column names come from the
// result set. Driver values map as: integers to Int, floats to Float, bool
// to Bool, strings and byte slices to String, time.Time to an RFC 3339
// String, NULL to null.
func ReadSQL(ctx context.Context, db Querier, query string, args ...any) (*frame.Table, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("source: query: %w", err)
	}
	defer rows.Close()

	names, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("source: columns: %w", err)
	}
	b, err := frame.NewBuilder(names...)
	if err != nil {
		return nil, err
	}

	dest := make([]any, len(names))
	ptrs := make([]any, len(names))
	for i := range dest {
		ptrs[i] = &dest[i]
	}
	row := make([]frame.Value, len(names))
	for rows.Next() {
		if err = rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("source: scan row %d: %w", b.Len(), err)
		}
		for i, v := range dest {
			if row[i], err = sqlValue(v); err != nil {
				return nil, fmt.Errorf("source: column %q: %w", names[i], err)
			}
		}
		if err = b.Append(row...); err != nil {
			return nil, err
		}
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("source: rows: %w", err)
	}

	return b.Table(), nil
}

func sqlValue(v any) (frame.Value, error) {
	switch x := v.(type) {
	case []byte:
		return frame.String(string(x)), nil
	case time.Time:
		return frame.String(x.Format(time.RFC3339Nano)), nil
	default:
		return frame.ValueOf(x)
	}
}
