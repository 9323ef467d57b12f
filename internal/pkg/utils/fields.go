package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// FirstPresent returns the value of the first key in record that holds a usable T.
// Nil values, blank strings and values that cannot be converted to T are skipped.
func FirstPresent[T any](record map[string]any, keys ...string) (T, bool) {
	var zero T
	for _, key := range keys {
		raw, ok := record[key]
		if !ok || raw == nil {
			continue
		}
		if v, ok := convert[T](raw); ok {
			return v, true
		}
	}
	return zero, false
}

// FirstPresentPtr is FirstPresent returning nil when no key matches.
func FirstPresentPtr[T any](record map[string]any, keys ...string) *T {
	v, ok := FirstPresent[T](record, keys...)
	if !ok {
		return nil
	}
	return &v
}

func convert[T any](raw any) (T, bool) {
	var zero T
	var out any
	switch any(zero).(type) {
	case string:
		s, ok := ToString(raw)
		if !ok || strings.TrimSpace(s) == "" {
			return zero, false
		}
		out = s
	case float64:
		f, ok := ToFloat64(raw)
		if !ok {
			return zero, false
		}
		out = f
	case time.Time:
		t, ok := ToTime(raw)
		if !ok {
			return zero, false
		}
		out = t
	default:
		v, ok := raw.(T)
		return v, ok
	}
	return out.(T), true
}

// ToString renders scalar database values as text.
func ToString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, true
	case []byte:
		return string(val), true
	case fmt.Stringer:
		return val.String(), true
	case int, int16, int32, int64, uint, uint32, uint64:
		return fmt.Sprintf("%d", val), true
	case float32, float64:
		f, _ := ToFloat64(val)
		return strconv.FormatFloat(f, 'f', -1, 64), true
	case [16]byte:
		return fmt.Sprintf("%x-%x-%x-%x-%x", val[0:4], val[4:6], val[6:8], val[8:10], val[10:16]), true
	default:
		return "", false
	}
}

// ToFloat64 converts numeric values returned by pgx (including NUMERIC) to float64.
func ToFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case nil:
		return 0, false
	case float64:
		return val, !math.IsNaN(val) && !math.IsInf(val, 0)
	case float32:
		return ToFloat64(float64(val))
	case int:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	case decimal.Decimal:
		return val.InexactFloat64(), true
	case pgtype.Numeric:
		if !val.Valid || val.NaN || val.InfinityModifier != pgtype.Finite {
			return 0, false
		}
		f, err := val.Float64Value()
		if err != nil || !f.Valid {
			return 0, false
		}
		return f.Float64, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(val))
		if err != nil {
			return 0, false
		}
		return d.InexactFloat64(), true
	default:
		return 0, false
	}
}

// ToTime accepts time values and pgx date/timestamp wrappers.
func ToTime(v any) (time.Time, bool) {
	switch val := v.(type) {
	case time.Time:
		return val, !val.IsZero()
	case pgtype.Date:
		return val.Time, val.Valid
	case pgtype.Timestamp:
		return val.Time, val.Valid
	case pgtype.Timestamptz:
		return val.Time, val.Valid
	default:
		return time.Time{}, false
	}
}
