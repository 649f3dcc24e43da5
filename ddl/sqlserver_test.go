package ddl

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	querylens "github.com/querylens/querylens"
)

func TestSQLServerCreateTable(t *testing.T) {
	g := newGenerator(t, querylens.DialectSQLServer)

	t.Run("IdentityAndNamedKeyConstraint", func(t *testing.T) {
		result, err := g.CreateTable(usersTable())
		assert.NoError(t, err)
		assert.Equal(t, "CREATE TABLE [dbo].[users] (\n"+
			"  [id] BIGINT IDENTITY(1,1) NOT NULL,\n"+
			"  [name] NVARCHAR(100) NOT NULL,\n"+
			"  [email] NVARCHAR(MAX),\n"+
			"  CONSTRAINT [PK_users] PRIMARY KEY ([id])\n"+
			")", result.SQL[0])
		assert.Equal(t, 1, strings.Count(result.SQL[0], "IDENTITY"))
	})

	t.Run("IfNotExistsGuard", func(t *testing.T) {
		def := usersTable()
		def.IfNotExists = true

		result, err := g.CreateTable(def)
		assert.NoError(t, err)
		assert.True(t, strings.HasPrefix(result.SQL[0], "IF OBJECT_ID(N'dbo.users', N'U') IS NULL\nCREATE TABLE"))
	})

	t.Run("TypeMapping", func(t *testing.T) {
		def := &TableDefinition{
			Name: "t",
			Columns: []ColumnDefinition{
				{Name: "a", Type: Boolean(), Nullable: true},
				{Name: "b", Type: UUID(), Nullable: true},
				{Name: "c", Type: TimestampTz(), Nullable: true},
				{Name: "d", Type: DoublePrecision(), Nullable: true},
			},
		}

		result, err := g.CreateTable(def)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(result.SQL[0], "[a] BIT"))
		assert.True(t, strings.Contains(result.SQL[0], "[b] UNIQUEIDENTIFIER"))
		assert.True(t, strings.Contains(result.SQL[0], "[c] DATETIMEOFFSET"))
		assert.True(t, strings.Contains(result.SQL[0], "[d] FLOAT"))
	})
}

func TestSQLServerAlterTable(t *testing.T) {
	g := newGenerator(t, querylens.DialectSQLServer)

	t.Run("AddHasNoColumnKeyword", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterAddColumn, Column: &ColumnDefinition{Name: "age", Type: Integer(), Nullable: true}},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"ALTER TABLE [dbo].[users] ADD [age] INT"}, result.SQL)
	})

	t.Run("RenameGoesThroughSpRename", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterRenameColumn, Name: "name", NewName: "full_name"},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"EXEC sp_rename N'dbo.users.name', N'full_name', 'COLUMN'"}, result.SQL)
	})

	t.Run("NotNullToggleRestatesType", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterSetNotNull, Name: "age", Type: typePtr(Integer())},
				{Kind: AlterDropNotNull, Name: "age", Type: typePtr(Integer())},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"ALTER TABLE [dbo].[users] ALTER COLUMN [age] INT NOT NULL",
			"ALTER TABLE [dbo].[users] ALTER COLUMN [age] INT NULL",
		}, result.SQL)
	})

	t.Run("NotNullToggleWithoutTypeRejected", func(t *testing.T) {
		_, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterDropNotNull, Name: "age"},
			},
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("DefaultsUseNamedConstraints", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterSetDefault, Name: "age", Default: strPtr("18")},
				{Kind: AlterDropDefault, Name: "age"},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"ALTER TABLE [dbo].[users] ADD CONSTRAINT [DF_users_age] DEFAULT 18 FOR [age]",
			"ALTER TABLE [dbo].[users] DROP CONSTRAINT [DF_users_age]",
		}, result.SQL)
	})
}

func TestSQLServerDropTable(t *testing.T) {
	g := newGenerator(t, querylens.DialectSQLServer)

	t.Run("IfExists", func(t *testing.T) {
		result, err := g.DropTable(&DropTableDefinition{Name: "users", IfExists: true})
		assert.NoError(t, err)
		assert.Equal(t, []string{"DROP TABLE IF EXISTS [dbo].[users]"}, result.SQL)
	})

	t.Run("NoCascadeKeyword", func(t *testing.T) {
		result, err := g.DropTable(&DropTableDefinition{Name: "users", Cascade: true})
		assert.NoError(t, err)
		assert.Equal(t, []string{"DROP TABLE [dbo].[users]"}, result.SQL)
		assert.True(t, strings.Contains(result.Message, "CASCADE is not supported"))
	})
}
