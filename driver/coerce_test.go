package driver

import (
	"math"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestCoerceFloat(t *testing.T) {
	t.Run("FiniteValuesPassThrough", func(t *testing.T) {
		assert.Equal(t, any(1.5), coerceFloat(1.5))
		assert.Equal(t, any(0.0), coerceFloat(0))
	})

	t.Run("NonFiniteBecomesNil", func(t *testing.T) {
		assert.Zero(t, coerceFloat(math.NaN()))
		assert.Zero(t, coerceFloat(math.Inf(1)))
		assert.Zero(t, coerceFloat(math.Inf(-1)))
	})
}

func TestCoerceDecimal(t *testing.T) {
	t.Run("ExactValuesBecomeNumbers", func(t *testing.T) {
		assert.Equal(t, any(12.5), coerceDecimal("12.5"))
		assert.Equal(t, any(-3.0), coerceDecimal([]byte("-3")))
	})

	t.Run("InexactValuesStayStrings", func(t *testing.T) {
		// 39 significant digits cannot round-trip through a float64.
		v := coerceDecimal("123456789012345678901234567890.123456789")
		_, isString := v.(string)
		assert.True(t, isString)
	})

	t.Run("GarbageFallsBackToText", func(t *testing.T) {
		assert.Equal(t, any("not a number"), coerceDecimal("not a number"))
	})
}

func TestCoerceJSON(t *testing.T) {
	t.Run("ObjectBecomesMap", func(t *testing.T) {
		v := coerceJSON([]byte(`{"a": 1, "b": [true, null]}`))
		m, ok := v.(map[string]any)
		assert.True(t, ok)
		assert.Equal(t, any(1.0), m["a"])
	})

	t.Run("ArrayBecomesSlice", func(t *testing.T) {
		v := coerceJSON(`[1, 2, 3]`)
		_, ok := v.([]any)
		assert.True(t, ok)
	})

	t.Run("InvalidPayloadStaysString", func(t *testing.T) {
		assert.Equal(t, any("{broken"), coerceJSON([]byte("{broken")))
	})
}

func TestCoerceUUID(t *testing.T) {
	t.Run("BinaryForm", func(t *testing.T) {
		raw := [16]byte{0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
		assert.Equal(t, any("12345678-9abc-def0-1234-56789abcdef0"), coerceUUID(raw))
	})

	t.Run("TextForm", func(t *testing.T) {
		assert.Equal(t, any("12345678-9abc-def0-1234-56789abcdef0"),
			coerceUUID("12345678-9ABC-DEF0-1234-56789ABCDEF0"))
	})

	t.Run("NonUUIDTextPassesThrough", func(t *testing.T) {
		assert.Equal(t, any("hello"), coerceUUID("hello"))
	})
}

func TestFormatTemporal(t *testing.T) {
	ts := time.Date(2024, 3, 15, 13, 45, 30, 123456000, time.UTC)

	t.Run("Date", func(t *testing.T) {
		assert.Equal(t, "2024-03-15", formatTemporal(temporalDate, ts))
	})

	t.Run("TimeOfDay", func(t *testing.T) {
		assert.Equal(t, "13:45:30", formatTemporal(temporalTime, ts))
	})

	t.Run("Timestamp", func(t *testing.T) {
		assert.Equal(t, "2024-03-15 13:45:30", formatTemporal(temporalTimestamp, ts))
	})

	t.Run("TimestampWithZone", func(t *testing.T) {
		assert.Equal(t, "2024-03-15T13:45:30.123456Z", formatTemporal(temporalTimestampTz, ts))
	})
}

func TestQueryResultShape(t *testing.T) {
	t.Run("DataResultHasNoAffectedCount", func(t *testing.T) {
		r := NewDataResult([]string{"id"}, [][]any{{int64(1)}})
		assert.True(t, r.HasRows())
		assert.Zero(t, r.RowsAffected)
	})

	t.Run("AffectedResultHasNoRows", func(t *testing.T) {
		r := NewAffectedResult(3)
		assert.False(t, r.HasRows())
		assert.NotZero(t, r.RowsAffected)
		assert.Equal(t, int64(3), *r.RowsAffected)
		assert.Equal(t, 0, len(r.Columns))
	})

	t.Run("NilSlicesNormalized", func(t *testing.T) {
		r := NewDataResult(nil, nil)
		assert.True(t, r.Columns != nil)
		assert.True(t, r.Rows != nil)
		assert.Equal(t, 0, len(r.Rows))
	})

	t.Run("EmptyBatchResult", func(t *testing.T) {
		r := NewEmptyResult()
		assert.False(t, r.HasRows())
		assert.Zero(t, r.RowsAffected)
	})
}
