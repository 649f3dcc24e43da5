package driver

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shared wire-value coercion helpers. Every driver owns its own conversion
// table; these helpers implement the rules the tables have in common:
// non-finite floats become nil, decimals become a number only when exactly
// representable as a double, temporal values use fixed textual layouts, and
// JSON payloads are parsed into nested values instead of strings.

const (
	dateLayout        = "2006-01-02"
	timeOfDayLayout   = "15:04:05"
	timestampLayout   = "2006-01-02 15:04:05"
	timestampTzLayout = "2006-01-02T15:04:05.999999Z07:00"
)

// coerceFloat maps NaN and infinities to nil rather than erroring, since
// JSON numbers cannot represent them.
func coerceFloat(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}

// coerceDecimal converts a fixed-point wire value. The value becomes a JSON
// number when it round-trips through a float64 exactly; otherwise the exact
// decimal string is returned so precision is never silently truncated.
func coerceDecimal(v any) any {
	var text string
	switch val := v.(type) {
	case string:
		text = val
	case []byte:
		text = string(val)
	case float64:
		return coerceFloat(val)
	case int64:
		return val
	default:
		return fmt.Sprintf("%v", v)
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return text
	}
	if f, exact := d.Float64(); exact {
		return f
	}
	return d.String()
}

// coerceJSON parses a json/jsonb payload into a nested value. Invalid
// payloads fall back to the raw string.
func coerceJSON(v any) any {
	var data []byte
	switch val := v.(type) {
	case []byte:
		data = val
	case string:
		data = []byte(val)
	default:
		return v
	}

	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}
	return parsed
}

// coerceUUID normalizes the various wire forms of a UUID to its canonical
// textual form.
func coerceUUID(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case []byte:
		if id, err := uuid.FromBytes(val); err == nil {
			return id.String()
		}
		if id, err := uuid.ParseBytes(val); err == nil {
			return id.String()
		}
		return string(val)
	case string:
		if id, err := uuid.Parse(val); err == nil {
			return id.String()
		}
		return val
	default:
		return fmt.Sprintf("%v", v)
	}
}

// formatTemporal renders a time.Time using the layout matching its column
// family. kind is the driver's normalized temporal kind.
func formatTemporal(kind temporalKind, t time.Time) string {
	switch kind {
	case temporalDate:
		return t.Format(dateLayout)
	case temporalTime:
		return t.Format(timeOfDayLayout)
	case temporalTimestampTz:
		return t.Format(timestampTzLayout)
	default:
		return t.Format(timestampLayout)
	}
}

type temporalKind int

const (
	temporalTimestamp temporalKind = iota
	temporalDate
	temporalTime
	temporalTimestampTz
)

// coerceFallback renders an unrecognized native value as a best-effort
// string; unknown types never fail at the row level.
func coerceFallback(v any) any {
	return fmt.Sprintf("%v", v)
}
