package driver

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestCountStatements(t *testing.T) {
	t.Run("SingleStatement", func(t *testing.T) {
		assert.Equal(t, 1, countStatements("SELECT 1"))
	})

	t.Run("TrailingSemicolonIsNotBatch", func(t *testing.T) {
		assert.Equal(t, 1, countStatements("SELECT 1;"))
		assert.Equal(t, 1, countStatements("SELECT 1;\n  "))
	})

	t.Run("TwoStatements", func(t *testing.T) {
		assert.Equal(t, 2, countStatements("INSERT INTO t VALUES (1); INSERT INTO t VALUES (2)"))
		assert.Equal(t, 2, countStatements("SELECT 1; SELECT 2;"))
	})

	t.Run("SemicolonInStringLiteral", func(t *testing.T) {
		assert.Equal(t, 1, countStatements("SELECT 'a;b'"))
		assert.Equal(t, 1, countStatements("INSERT INTO t VALUES ('one; two; three')"))
	})

	t.Run("EscapedQuoteInLiteral", func(t *testing.T) {
		assert.Equal(t, 1, countStatements("SELECT 'it''s; fine'"))
	})

	t.Run("SemicolonInQuotedIdentifier", func(t *testing.T) {
		assert.Equal(t, 1, countStatements(`SELECT "weird;name" FROM t`))
		assert.Equal(t, 1, countStatements("SELECT `weird;name` FROM t"))
		assert.Equal(t, 1, countStatements("SELECT [weird;name] FROM t"))
	})

	t.Run("SemicolonInLineComment", func(t *testing.T) {
		assert.Equal(t, 1, countStatements("SELECT 1 -- trailing; comment"))
		assert.Equal(t, 2, countStatements("SELECT 1; -- note\nSELECT 2"))
	})

	t.Run("SemicolonInBlockComment", func(t *testing.T) {
		assert.Equal(t, 1, countStatements("SELECT /* a; b; c */ 1"))
	})

	t.Run("BlankSegmentsIgnored", func(t *testing.T) {
		assert.Equal(t, 0, countStatements(""))
		assert.Equal(t, 0, countStatements("  ;\n;  "))
		assert.Equal(t, 2, countStatements("SELECT 1;;SELECT 2"))
	})

	t.Run("UnterminatedLiteral", func(t *testing.T) {
		// Malformed input still terminates; the engine reports the real error.
		assert.Equal(t, 1, countStatements("SELECT 'unterminated"))
	})
}
