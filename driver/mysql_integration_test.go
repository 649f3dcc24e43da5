package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/testcontainers/testcontainers-go/modules/mysql"

	querylens "github.com/querylens/querylens"
)

func startMySQL(t *testing.T) ConnectionOptions {
	t.Helper()

	ctx := t.Context()

	container, err := mysql.Run(ctx,
		"mysql:8.0",
		mysql.WithDatabase("testdb"),
		mysql.WithUsername("testuser"),
		mysql.WithPassword("testpass"),
	)
	assert.NoError(t, err)

	t.Cleanup(func() {
		assert.NoError(t, container.Terminate(context.Background()))
	})

	host, err := container.Host(ctx)
	assert.NoError(t, err)
	port, err := container.MappedPort(ctx, "3306/tcp")
	assert.NoError(t, err)

	return ConnectionOptions{
		Host:     host,
		Port:     port.Int(),
		Username: "testuser",
		Password: "testpass",
		Database: "testdb",
	}
}

// TestMySQLIntegration exercises the full driver contract against a real
// MySQL server.
func TestMySQLIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()
	opts := startMySQL(t)

	d, err := Connect(ctx, querylens.DialectMySQL, opts)
	assert.NoError(t, err)

	defer d.Close()

	assert.NoError(t, d.TestConnection(ctx))

	t.Run("StatementsAndQueries", func(t *testing.T) {
		_, err := d.ExecuteQuery(ctx, "CREATE TABLE users (id INT AUTO_INCREMENT PRIMARY KEY, name VARCHAR(100) NOT NULL, score DECIMAL(10, 2))")
		assert.NoError(t, err)

		_, err = d.ExecuteQuery(ctx, "INSERT INTO users (name, score) VALUES ('Alice', 99.50)")
		assert.NoError(t, err)

		selected, err := d.ExecuteQuery(ctx, "SELECT id, name, score FROM users")
		assert.NoError(t, err)
		assert.Equal(t, []string{"id", "name", "score"}, selected.Columns)
		assert.Equal(t, 1, len(selected.Rows))
		assert.Equal(t, any("Alice"), selected.Rows[0][1])
		assert.Equal(t, any(99.5), selected.Rows[0][2])
	})

	t.Run("MultiStatementBatch", func(t *testing.T) {
		result, err := d.ExecuteQuery(ctx,
			"CREATE TABLE batch_t (n INT); INSERT INTO batch_t VALUES (1);")
		assert.NoError(t, err)
		assert.False(t, result.HasRows())

		check, err := d.ExecuteQuery(ctx, "SELECT COUNT(*) FROM batch_t")
		assert.NoError(t, err)
		assert.Equal(t, any(int64(1)), check.Rows[0][0])
	})

	t.Run("Catalog", func(t *testing.T) {
		schemas, err := d.GetSchemas(ctx)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(schemas))
		assert.Equal(t, "testdb", schemas[0].Name)

		tables, err := d.GetTables(ctx, "testdb")
		assert.NoError(t, err)

		hasUsers := false
		for _, tbl := range tables {
			if tbl.Name == "users" {
				hasUsers = true
				assert.Equal(t, "TABLE", tbl.Type)
			}
		}
		assert.True(t, hasUsers)

		ts, err := d.GetTableSchema(ctx, "testdb", "users")
		assert.NoError(t, err)
		assert.Equal(t, 3, len(ts.Columns))
		assert.Equal(t, "id", ts.Columns[0].Name)
		assert.True(t, ts.Columns[0].IsPrimaryKey)

		hasPK := false
		for _, ix := range ts.Indexes {
			if ix.IsPrimary {
				hasPK = true
				assert.Equal(t, []string{"id"}, ix.Columns)
			}
		}
		assert.True(t, hasPK)
	})
}

func TestMySQLAuthFailure(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := t.Context()
	opts := startMySQL(t)
	opts.Password = "wrong"

	_, err := Connect(ctx, querylens.DialectMySQL, opts)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, querylens.ErrAuth))
}
