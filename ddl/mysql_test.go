package ddl

import (
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	querylens "github.com/querylens/querylens"
)

func TestMySQLCreateTable(t *testing.T) {
	g := newGenerator(t, querylens.DialectMySQL)

	t.Run("AutoIncrementAttribute", func(t *testing.T) {
		result, err := g.CreateTable(usersTable())
		assert.NoError(t, err)
		assert.Equal(t, 1, len(result.SQL))
		assert.Equal(t, "CREATE TABLE `users` (\n"+
			"  `id` BIGINT NOT NULL AUTO_INCREMENT,\n"+
			"  `name` VARCHAR(100) NOT NULL,\n"+
			"  `email` TEXT,\n"+
			"  PRIMARY KEY (`id`)\n"+
			")", result.SQL[0])
		assert.Equal(t, 1, strings.Count(result.SQL[0], "AUTO_INCREMENT"))
	})

	t.Run("InlineComments", func(t *testing.T) {
		def := usersTable()
		def.Comment = "Application users"
		def.Columns[1].Comment = "Display 'name'"

		result, err := g.CreateTable(def)
		assert.NoError(t, err)
		assert.Equal(t, 1, len(result.SQL))
		assert.True(t, strings.Contains(result.SQL[0], "`name` VARCHAR(100) NOT NULL COMMENT 'Display ''name'''"))
		assert.True(t, strings.HasSuffix(result.SQL[0], ") COMMENT='Application users'"))
	})

	t.Run("TypeMapping", func(t *testing.T) {
		def := &TableDefinition{
			Name: "t",
			Columns: []ColumnDefinition{
				{Name: "a", Type: UUID(), Nullable: true},
				{Name: "b", Type: JSONB(), Nullable: true},
				{Name: "c", Type: Timestamp(), Nullable: true},
				{Name: "d", Type: Bytea(), Nullable: true},
			},
		}

		result, err := g.CreateTable(def)
		assert.NoError(t, err)
		assert.True(t, strings.Contains(result.SQL[0], "`a` CHAR(36)"))
		assert.True(t, strings.Contains(result.SQL[0], "`b` JSON"))
		assert.True(t, strings.Contains(result.SQL[0], "`c` DATETIME"))
		assert.True(t, strings.Contains(result.SQL[0], "`d` BLOB"))
	})
}

func TestMySQLAlterTable(t *testing.T) {
	g := newGenerator(t, querylens.DialectMySQL)

	t.Run("ModernRenameSyntax", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterRenameColumn, Name: "name", NewName: "full_name"},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"ALTER TABLE `users` RENAME COLUMN `name` TO `full_name`"}, result.SQL)
	})

	t.Run("TypeChangeUsesModify", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterType, Name: "age", Type: typePtr(BigInt())},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"ALTER TABLE `users` MODIFY COLUMN `age` BIGINT"}, result.SQL)
	})

	t.Run("NotNullToggleRestatesType", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterSetNotNull, Name: "age", Type: typePtr(Integer())},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"ALTER TABLE `users` MODIFY COLUMN `age` INT NOT NULL"}, result.SQL)
	})

	t.Run("NotNullToggleWithoutTypeRejected", func(t *testing.T) {
		_, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterSetNotNull, Name: "age"},
			},
		})
		assert.Error(t, err)
		assert.True(t, errors.Is(err, querylens.ErrInvalidInput))
	})

	t.Run("DefaultToggles", func(t *testing.T) {
		result, err := g.AlterTable(&AlterTableDefinition{
			Name: "users",
			Operations: []AlterOperation{
				{Kind: AlterSetDefault, Name: "age", Default: strPtr("18")},
				{Kind: AlterDropDefault, Name: "age"},
			},
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{
			"ALTER TABLE `users` ALTER COLUMN `age` SET DEFAULT 18",
			"ALTER TABLE `users` ALTER COLUMN `age` DROP DEFAULT",
		}, result.SQL)
	})
}

func TestMySQLDropTable(t *testing.T) {
	g := newGenerator(t, querylens.DialectMySQL)

	t.Run("NoCascadeKeyword", func(t *testing.T) {
		result, err := g.DropTable(&DropTableDefinition{
			Name: "users", IfExists: true, Cascade: true,
		})
		assert.NoError(t, err)
		assert.Equal(t, []string{"DROP TABLE IF EXISTS `users`"}, result.SQL)
		assert.True(t, strings.Contains(result.Message, "CASCADE is not supported"))
	})
}
