package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	querylens "github.com/querylens/querylens"
)

func openMemoryDriver(t *testing.T) Driver {
	t.Helper()

	d, err := Connect(context.Background(), querylens.DialectSQLite, ConnectionOptions{
		FilePath: ":memory:",
	})
	assert.NoError(t, err)
	t.Cleanup(func() { d.Close() })

	return d
}

func TestSQLiteDriver(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresFilePath", func(t *testing.T) {
		_, err := Connect(ctx, querylens.DialectSQLite, ConnectionOptions{})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("TestConnection", func(t *testing.T) {
		d := openMemoryDriver(t)
		assert.NoError(t, d.TestConnection(ctx))
	})

	t.Run("CreateInsertSelect", func(t *testing.T) {
		d := openMemoryDriver(t)

		created, err := d.ExecuteQuery(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)")
		assert.NoError(t, err)
		assert.NotZero(t, created.RowsAffected)

		inserted, err := d.ExecuteQuery(ctx, "INSERT INTO users (name) VALUES ('Alice')")
		assert.NoError(t, err)
		assert.NotZero(t, inserted.RowsAffected)
		assert.Equal(t, int64(1), *inserted.RowsAffected)
		assert.False(t, inserted.HasRows())

		selected, err := d.ExecuteQuery(ctx, "SELECT * FROM users")
		assert.NoError(t, err)
		assert.Zero(t, selected.RowsAffected)
		assert.Equal(t, []string{"id", "name"}, selected.Columns)
		assert.Equal(t, 1, len(selected.Rows))
		assert.Equal(t, any(int64(1)), selected.Rows[0][0])
		assert.Equal(t, any("Alice"), selected.Rows[0][1])
	})

	t.Run("BatchYieldsEmptyResult", func(t *testing.T) {
		d := openMemoryDriver(t)

		result, err := d.ExecuteQuery(ctx,
			"CREATE TABLE t (n INTEGER); INSERT INTO t VALUES (1);")
		assert.NoError(t, err)
		assert.False(t, result.HasRows())
		assert.Zero(t, result.RowsAffected)

		// Both statements of the batch took effect.
		check, err := d.ExecuteQuery(ctx, "SELECT COUNT(*) FROM t")
		assert.NoError(t, err)
		assert.Equal(t, any(int64(1)), check.Rows[0][0])
	})

	t.Run("FailedBatchRollsBack", func(t *testing.T) {
		d := openMemoryDriver(t)

		_, err := d.ExecuteQuery(ctx, "CREATE TABLE t (n INTEGER)")
		assert.NoError(t, err)

		_, err = d.ExecuteQuery(ctx, "INSERT INTO t VALUES (1); INSERT INTO nope VALUES (2);")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrQuery))

		check, err := d.ExecuteQuery(ctx, "SELECT COUNT(*) FROM t")
		assert.NoError(t, err)
		assert.Equal(t, any(int64(0)), check.Rows[0][0])
	})

	t.Run("DoubleFailureSurfacesQueryError", func(t *testing.T) {
		d := openMemoryDriver(t)

		_, err := d.ExecuteQuery(ctx, "SELECT * FROM no_such_table")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrQuery))
	})

	t.Run("NullValuesStayNull", func(t *testing.T) {
		d := openMemoryDriver(t)

		_, err := d.ExecuteQuery(ctx, "CREATE TABLE t (a TEXT)")
		assert.NoError(t, err)
		_, err = d.ExecuteQuery(ctx, "INSERT INTO t VALUES (NULL)")
		assert.NoError(t, err)

		result, err := d.ExecuteQuery(ctx, "SELECT a FROM t")
		assert.NoError(t, err)
		assert.Zero(t, result.Rows[0][0])
	})

	t.Run("GetDatabases", func(t *testing.T) {
		d := openMemoryDriver(t)

		databases, err := d.GetDatabases(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(databases))
		assert.Equal(t, "main", databases[0].Name)
	})

	t.Run("GetSchemas", func(t *testing.T) {
		d := openMemoryDriver(t)

		schemas, err := d.GetSchemas(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(schemas))
		assert.Equal(t, "main", schemas[0].Name)
	})

	t.Run("GetTables", func(t *testing.T) {
		d := openMemoryDriver(t)

		_, err := d.ExecuteQuery(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT)")
		assert.NoError(t, err)
		_, err = d.ExecuteQuery(ctx, "INSERT INTO users VALUES (1, 'Alice'); INSERT INTO users VALUES (2, 'Bob');")
		assert.NoError(t, err)
		_, err = d.ExecuteQuery(ctx, "CREATE VIEW user_names AS SELECT name FROM users")
		assert.NoError(t, err)

		tables, err := d.GetTables(ctx, "main")
		assert.NoError(t, err)
		assert.Equal(t, 2, len(tables))

		byName := map[string]querylens.TableInfo{}
		for _, tbl := range tables {
			byName[tbl.Name] = tbl
		}

		assert.Equal(t, "BASE TABLE", byName["users"].Type)
		assert.Equal(t, int64(2), byName["users"].RowCount)
		assert.Equal(t, "VIEW", byName["user_names"].Type)
	})

	t.Run("GetTableSchema", func(t *testing.T) {
		d := openMemoryDriver(t)

		_, err := d.ExecuteQuery(ctx, `CREATE TABLE orders (
			id INTEGER PRIMARY KEY,
			customer TEXT NOT NULL,
			total NUMERIC DEFAULT 0
		)`)
		assert.NoError(t, err)
		_, err = d.ExecuteQuery(ctx, "CREATE UNIQUE INDEX idx_orders_customer ON orders (customer)")
		assert.NoError(t, err)

		ts, err := d.GetTableSchema(ctx, "main", "orders")
		assert.NoError(t, err)
		assert.Equal(t, "orders", ts.Name)
		assert.Equal(t, 3, len(ts.Columns))

		assert.Equal(t, "id", ts.Columns[0].Name)
		assert.True(t, ts.Columns[0].IsPrimaryKey)
		assert.Equal(t, 1, ts.Columns[0].OrdinalPosition)

		assert.Equal(t, "customer", ts.Columns[1].Name)
		assert.False(t, ts.Columns[1].Nullable)
		assert.False(t, ts.Columns[1].IsPrimaryKey)

		assert.Equal(t, "total", ts.Columns[2].Name)
		assert.NotZero(t, ts.Columns[2].DefaultValue)

		found := false
		for _, ix := range ts.Indexes {
			if ix.Name == "idx_orders_customer" {
				found = true
				assert.True(t, ix.IsUnique)
				assert.Equal(t, []string{"customer"}, ix.Columns)
			}
		}
		assert.True(t, found)
	})

	t.Run("GetTableSchemaMissingTable", func(t *testing.T) {
		d := openMemoryDriver(t)

		_, err := d.GetTableSchema(ctx, "main", "missing")
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrQuery))
	})

	t.Run("CloseIsIdempotent", func(t *testing.T) {
		d := openMemoryDriver(t)
		assert.NoError(t, d.Close())
		assert.NoError(t, d.Close())
	})
}

func TestConnectUnsupportedDialect(t *testing.T) {
	_, err := Connect(context.Background(), querylens.Dialect("oracle"), ConnectionOptions{})
	assert.Error(t, err)
	assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
}
