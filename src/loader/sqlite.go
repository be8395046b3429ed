package loader

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"net/url"
	"regexp"

	_ "modernc.org/sqlite" // driver: sqlite

	"github.com/iafilius/ScoreDistribution/src/types"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// loadSQLite reads the score column of a table, in rowid order, from a database file opened
// read-only.
func loadSQLite(ctx context.Context, path string, opts Options) ([]types.Record, error) {
	if !identRe.MatchString(opts.Field) {
		return nil, fmt.Errorf("%w: %s: field %q is not a valid column name", ErrMalformed, path, opts.Field)
	}
	if !identRe.MatchString(opts.Table) {
		return nil, fmt.Errorf("%w: %s: table %q is not a valid table name", ErrMalformed, path, opts.Table)
	}
	dsn := "file:" + (&url.URL{Path: path}).EscapedPath() + "?mode=ro"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInput, path, err)
	}
	defer db.Close()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInput, path, err)
	}

	// identifiers are validated above, so quoting is enough here
	q := fmt.Sprintf(`SELECT "%s" FROM "%s" ORDER BY rowid`, opts.Field, opts.Table)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	defer rows.Close()

	var out []types.Record
	for rows.Next() {
		var raw any
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
		}
		idx := len(out)
		var v float64
		switch n := raw.(type) {
		case nil:
			return nil, &RecordError{Source: path, Index: idx, Field: opts.Field, Err: ErrMissingField, Detail: "NULL"}
		case int64:
			v = float64(n)
		case float64:
			v = n
		default:
			return nil, &RecordError{Source: path, Index: idx, Field: opts.Field, Err: ErrNonNumeric, Detail: fmt.Sprintf("got %T", raw)}
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &RecordError{Source: path, Index: idx, Field: opts.Field, Err: ErrNonNumeric, Detail: "non-finite"}
		}
		out = append(out, types.Record{Source: path, Index: idx, Score: v})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return out, nil
}
