package querylens

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestParseDialect(t *testing.T) {
	t.Run("CanonicalNames", func(t *testing.T) {
		for _, d := range AllDialects {
			parsed, err := ParseDialect(string(d))
			assert.NoError(t, err)
			assert.Equal(t, d, parsed)
		}
	})

	t.Run("Aliases", func(t *testing.T) {
		cases := map[string]Dialect{
			"postgresql": DialectPostgres,
			"pg":         DialectPostgres,
			"mariadb":    DialectMySQL,
			"sqlite3":    DialectSQLite,
			"mssql":      DialectSQLServer,
			"mongo":      DialectMongoDB,
		}
		for alias, want := range cases {
			parsed, err := ParseDialect(alias)
			assert.NoError(t, err)
			assert.Equal(t, want, parsed)
		}
	})

	t.Run("CaseInsensitive", func(t *testing.T) {
		parsed, err := ParseDialect("PostgreSQL")
		assert.NoError(t, err)
		assert.Equal(t, DialectPostgres, parsed)
	})

	t.Run("Unknown", func(t *testing.T) {
		_, err := ParseDialect("oracle")
		assert.Error(t, err)
		assert.Equal(t, ErrorKindInvalidInput, KindOf(err))
	})
}

func TestHasFeature(t *testing.T) {
	t.Run("SQLiteCannotAlterColumnType", func(t *testing.T) {
		assert.False(t, HasFeature(DialectSQLite, FeatureAlterColumnType))
		assert.True(t, HasFeature(DialectPostgres, FeatureAlterColumnType))
	})

	t.Run("MongoHasNoDDL", func(t *testing.T) {
		assert.False(t, HasFeature(DialectMongoDB, FeatureDDL))
		for _, d := range AllDialects {
			if d != DialectMongoDB {
				assert.True(t, HasFeature(d, FeatureDDL))
			}
		}
	})

	t.Run("OnlyPostgresDropsCascade", func(t *testing.T) {
		assert.True(t, HasFeature(DialectPostgres, FeatureDropCascade))
		assert.False(t, HasFeature(DialectMySQL, FeatureDropCascade))
		assert.False(t, HasFeature(DialectSQLite, FeatureDropCascade))
	})
}
