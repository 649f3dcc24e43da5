// Package driver provides one uniform interface for executing statement text
// and introspecting catalogs across structurally different database engines.
// Each engine implementation owns its native connection handle, serializes
// access to it, and normalizes wire values into JSON-compatible Go values.
package driver

import (
	"context"

	querylens "github.com/querylens/querylens"
)

// Driver is the abstract contract every engine implementation satisfies.
// A driver instance may be shared across concurrent callers; all operations
// on one instance are serialized on its connection, so a second concurrent
// call blocks until the first completes.
type Driver interface {
	// Dialect identifies the engine behind this driver.
	Dialect() querylens.Dialect

	// TestConnection issues a trivial round-trip to detect a dead connection
	// without side effects.
	TestConnection(ctx context.Context) error

	// ExecuteQuery runs arbitrary statement text. Text containing more than
	// one statement terminator outside quoting is executed as one atomic
	// batch and yields the empty result. Single statements are first tried
	// as row-producing queries, then retried as commands; if both paths
	// fail, the query-path error is surfaced.
	ExecuteQuery(ctx context.Context, query string) (*QueryResult, error)

	// GetDatabases lists the databases visible on this connection.
	GetDatabases(ctx context.Context) ([]querylens.DatabaseInfo, error)

	// GetSchemas lists schema namespaces. Engines without a schema layer
	// report a fixed placeholder.
	GetSchemas(ctx context.Context) ([]querylens.SchemaInfo, error)

	// GetTables lists table-like objects in a schema.
	GetTables(ctx context.Context, schema string) ([]querylens.TableInfo, error)

	// GetTableSchema describes one table. Column order equals the source
	// catalog's ordinal position order.
	GetTableSchema(ctx context.Context, schema, table string) (*querylens.TableSchema, error)

	// Close releases the native handle. Idempotent where the underlying
	// client allows it.
	Close() error
}

// Connect establishes a native connection for the given dialect and returns
// a ready driver. It fails fast on authentication and network errors.
func Connect(ctx context.Context, dialect querylens.Dialect, opts ConnectionOptions) (Driver, error) {
	switch dialect {
	case querylens.DialectPostgres:
		return connectPostgres(ctx, opts)
	case querylens.DialectMySQL:
		return connectMySQL(ctx, opts)
	case querylens.DialectSQLite:
		return connectSQLite(ctx, opts)
	case querylens.DialectSQLServer:
		return connectSQLServer(ctx, opts)
	case querylens.DialectMongoDB:
		return connectMongoDB(ctx, opts)
	default:
		return nil, querylens.NewErrorf(querylens.ErrorKindInvalidInput, "unsupported dialect: %s", dialect)
	}
}
