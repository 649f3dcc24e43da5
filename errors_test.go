package querylens

import (
	"errors"
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestErrorKinds(t *testing.T) {
	t.Run("SentinelMatching", func(t *testing.T) {
		err := NewError(ErrorKindAuth, "28P01", "password authentication failed")
		assert.True(t, errors.Is(err, ErrAuth))
		assert.False(t, errors.Is(err, ErrQuery))
		assert.False(t, errors.Is(err, ErrConnection))
	})

	t.Run("KindOf", func(t *testing.T) {
		err := NewErrorf(ErrorKindInvalidInput, "unsupported dialect: %s", "oracle")
		assert.Equal(t, ErrorKindInvalidInput, KindOf(err))
		assert.Equal(t, ErrorKind(0), KindOf(errors.New("foreign")))
		assert.Equal(t, ErrorKind(0), KindOf(nil))
	})

	t.Run("WrapKeepsCause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := WrapError(ErrorKindConnection, "", cause)
		assert.True(t, errors.Is(err, ErrConnection))
		assert.True(t, errors.Is(err, cause))
	})

	t.Run("WrapNil", func(t *testing.T) {
		assert.Zero(t, WrapError(ErrorKindQuery, "", nil))
	})

	t.Run("KindOfUnwrapsLayers", func(t *testing.T) {
		inner := NewError(ErrorKindQuery, "42P01", `relation "missing" does not exist`)
		outer := fmt.Errorf("execute failed: %w", inner)
		assert.Equal(t, ErrorKindQuery, KindOf(outer))
		assert.True(t, errors.Is(outer, ErrQuery))
	})

	t.Run("MessageIncludesCode", func(t *testing.T) {
		err := NewError(ErrorKindAuth, "1045", "access denied")
		assert.Equal(t, "authentication error [1045]: access denied", err.Error())

		noCode := NewError(ErrorKindQuery, "", "syntax error")
		assert.Equal(t, "query error: syntax error", noCode.Error())
	})
}
