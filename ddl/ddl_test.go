package ddl

import (
	"errors"
	"testing"

	"github.com/alecthomas/assert/v2"
	querylens "github.com/querylens/querylens"
)

func strPtr(s string) *string { return &s }

func usersTable() *TableDefinition {
	return &TableDefinition{
		Name: "users",
		Columns: []ColumnDefinition{
			{Name: "id", Type: BigInt(), PrimaryKey: true, AutoIncrement: true},
			{Name: "name", Type: Varchar(100)},
			{Name: "email", Type: Text(), Nullable: true},
		},
	}
}

func TestNew(t *testing.T) {
	t.Run("SQLDialects", func(t *testing.T) {
		for _, d := range []querylens.Dialect{
			querylens.DialectPostgres,
			querylens.DialectMySQL,
			querylens.DialectSQLite,
			querylens.DialectSQLServer,
		} {
			g, err := New(d)
			assert.NoError(t, err)
			assert.Equal(t, d, g.Dialect())
		}
	})

	t.Run("MongoIsInvalidInput", func(t *testing.T) {
		_, err := New(querylens.DialectMongoDB)
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("UnknownDialect", func(t *testing.T) {
		_, err := New(querylens.Dialect("oracle"))
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})
}

func TestValidation(t *testing.T) {
	t.Run("EmptyColumnListRejectedBeforeGeneration", func(t *testing.T) {
		for _, d := range []querylens.Dialect{
			querylens.DialectPostgres,
			querylens.DialectMySQL,
			querylens.DialectSQLite,
			querylens.DialectSQLServer,
		} {
			g, err := New(d)
			assert.NoError(t, err)

			_, err = g.CreateTable(&TableDefinition{Name: "empty"})
			assert.Error(t, err)
			assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
		}
	})

	t.Run("AutoIncrementOnNonIntegerRejected", func(t *testing.T) {
		g, err := New(querylens.DialectPostgres)
		assert.NoError(t, err)

		_, err = g.CreateTable(&TableDefinition{
			Name: "bad",
			Columns: []ColumnDefinition{
				{Name: "id", Type: Text(), AutoIncrement: true},
			},
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("AlterWithoutOperationsRejected", func(t *testing.T) {
		g, err := New(querylens.DialectMySQL)
		assert.NoError(t, err)

		_, err = g.AlterTable(&AlterTableDefinition{Name: "users"})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("AddColumnWithoutDefinitionRejected", func(t *testing.T) {
		g, err := New(querylens.DialectPostgres)
		assert.NoError(t, err)

		_, err = g.AlterTable(&AlterTableDefinition{
			Name:       "users",
			Operations: []AlterOperation{{Kind: AlterAddColumn}},
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("DropWithoutNameRejected", func(t *testing.T) {
		g, err := New(querylens.DialectSQLite)
		assert.NoError(t, err)

		_, err = g.DropTable(&DropTableDefinition{})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})
}

func TestColumnType(t *testing.T) {
	t.Run("IsInteger", func(t *testing.T) {
		assert.True(t, SmallInt().IsInteger())
		assert.True(t, Integer().IsInteger())
		assert.True(t, BigInt().IsInteger())
		assert.False(t, Decimal(10, 2).IsInteger())
		assert.False(t, Text().IsInteger())
		assert.False(t, Boolean().IsInteger())
	})
}

func TestDeterministicOutput(t *testing.T) {
	def := usersTable()
	def.ForeignKeys = []ForeignKeyConstraint{{
		Columns:           []string{"id"},
		ReferencedTable:   "accounts",
		ReferencedColumns: []string{"id"},
		OnDelete:          ActionCascade,
	}}
	def.Uniques = []UniqueConstraint{{Name: "uq_users_email", Columns: []string{"email"}}}
	def.Checks = []CheckConstraint{{Expression: "length(name) > 0"}}

	for _, d := range []querylens.Dialect{
		querylens.DialectPostgres,
		querylens.DialectMySQL,
		querylens.DialectSQLite,
		querylens.DialectSQLServer,
	} {
		g, err := New(d)
		assert.NoError(t, err)

		first, err := g.CreateTable(def)
		assert.NoError(t, err)
		second, err := g.CreateTable(def)
		assert.NoError(t, err)

		assert.Equal(t, first.SQL, second.SQL)
	}
}
