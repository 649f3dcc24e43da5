package driver

import (
	"context"
	"database/sql"
	"sync"

	querylens "github.com/querylens/querylens"
)

// valueConverter is a driver's private wire-value to JSON coercion table.
// dbType is the database/sql column type name reported by the engine client.
type valueConverter func(dbType string, v any) any

// errorClassifier stringifies a native engine error into the structured
// taxonomy, extracting the raw dialect code where the client exposes one.
type errorClassifier func(kind querylens.ErrorKind, err error) *querylens.Error

// sqlDriver carries the state and behavior shared by the four database/sql
// backed engines. Each engine driver embeds it and supplies its own catalog
// queries and coercion table. The mutex serializes every operation on the
// single native handle: at most one in-flight statement per connection.
type sqlDriver struct {
	mu       sync.Mutex
	db       *sql.DB
	dialect  querylens.Dialect
	convert  valueConverter
	classify errorClassifier
	closed   bool

	// retryZeroColumns re-runs a statement on the command path when the query
	// path accepted it but reported no row shape. Only safe for clients that
	// prepare without executing on the query path (the sqlite client); wire
	// clients run the statement at query time, so retrying would execute it
	// twice.
	retryZeroColumns bool
}

func (d *sqlDriver) Dialect() querylens.Dialect {
	return d.dialect
}

// TestConnection issues a ping round-trip without side effects.
func (d *sqlDriver) TestConnection(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.db.PingContext(ctx); err != nil {
		return d.classify(querylens.ErrorKindConnection, err)
	}
	return nil
}

// Close releases the native handle. Closing twice is a no-op.
func (d *sqlDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true

	if err := d.db.Close(); err != nil {
		return d.classify(querylens.ErrorKindQuery, err)
	}
	return nil
}

// ExecuteQuery implements the dual-path heuristic shared by all SQL engines.
// Multi-statement text runs as one atomic batch inside a transaction and
// yields the empty result, since no per-statement affected count survives a
// batch. Single statements are tried as row-producing queries first and
// retried as commands; on double failure the query-path error is the one
// surfaced, because a malformed statement produces the more useful message
// there.
func (d *sqlDriver) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if countStatements(query) > 1 {
		return d.executeBatch(ctx, query)
	}

	rows, queryErr := d.db.QueryContext(ctx, query)
	if queryErr == nil {
		if d.retryZeroColumns {
			if cols, err := rows.Columns(); err == nil && len(cols) == 0 {
				// The statement produces no rows; it has only been prepared,
				// not run. Switch to the command path for the affected count.
				rows.Close()
				return d.executeCommand(ctx, query, nil)
			}
		}

		defer rows.Close()
		return d.scanRows(rows)
	}

	return d.executeCommand(ctx, query, queryErr)
}

// executeCommand runs the text on the non-row-producing path. When the query
// path already failed, its error is the one surfaced on double failure.
func (d *sqlDriver) executeCommand(ctx context.Context, query string, queryErr error) (*QueryResult, error) {
	res, execErr := d.db.ExecContext(ctx, query)
	if execErr != nil {
		if queryErr != nil {
			return nil, d.classify(querylens.ErrorKindQuery, queryErr)
		}
		return nil, d.classify(querylens.ErrorKindQuery, execErr)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		// The statement succeeded but the engine reports no count.
		affected = 0
	}

	return NewAffectedResult(affected), nil
}

func (d *sqlDriver) executeBatch(ctx context.Context, query string) (*QueryResult, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, d.classify(querylens.ErrorKindQuery, err)
	}

	if _, err := tx.ExecContext(ctx, query); err != nil {
		_ = tx.Rollback()
		return nil, d.classify(querylens.ErrorKindQuery, err)
	}

	if err := tx.Commit(); err != nil {
		return nil, d.classify(querylens.ErrorKindQuery, err)
	}

	return NewEmptyResult(), nil
}

// scanRows drains a result set, pushing every wire value through the
// driver's coercion table.
func (d *sqlDriver) scanRows(rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, d.classify(querylens.ErrorKindQuery, err)
	}

	dbTypes := make([]string, len(columns))
	if colTypes, err := rows.ColumnTypes(); err == nil {
		for i, ct := range colTypes {
			dbTypes[i] = ct.DatabaseTypeName()
		}
	}

	var resultRows [][]any

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, d.classify(querylens.ErrorKindQuery, err)
		}

		rowValues := make([]any, len(columns))
		for i, v := range values {
			if v == nil {
				rowValues[i] = nil
				continue
			}
			rowValues[i] = d.convert(dbTypes[i], v)
		}

		resultRows = append(resultRows, rowValues)
	}

	if err := rows.Err(); err != nil {
		return nil, d.classify(querylens.ErrorKindQuery, err)
	}

	return NewDataResult(columns, resultRows), nil
}

// queryMeta runs a catalog query and hands each row to scan. Used by the
// introspection paths, which issue several small queries per call; that is
// acceptable because catalog calls are not query-hot-path.
func (d *sqlDriver) queryMeta(ctx context.Context, query string, args []any, scan func(rows *sql.Rows) error) error {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return d.classify(querylens.ErrorKindQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return d.classify(querylens.ErrorKindQuery, err)
		}
	}

	if err := rows.Err(); err != nil {
		return d.classify(querylens.ErrorKindQuery, err)
	}

	return nil
}
