package frame

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// timeLayouts are tried in order when a string is compared with a timestamp
// or a CSV cell is sniffed for a timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02/01/2006, 15:04:05",
	"2006-01-02",
}

// IsNull reports whether v is a null (nil or NaN).
func IsNull(v any) bool {
	if v == nil {
		return true
	}
	if f, ok := v.(float64); ok && math.IsNaN(f) {
		return true
	}
	return false
}

// ToFloat converts a numeric (or boolean) value to float64.
func ToFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		if math.IsNaN(x) {
			return 0, false
		}
		return x, true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// Round2 rounds half away from zero to two decimals.
func Round2(f float64) float64 {
	return math.Round(f*100) / 100
}

// ParseTime parses a timestamp in any of the accepted layouts.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Compare orders two non-null values. Numbers compare numerically across
// int64 and float64; a timestamp compares with a parseable string. It returns
// an error for incomparable pairs.
func Compare(a, b any) (int, error) {
	if fa, ok := numeric(a); ok {
		if fb, ok := numeric(b); ok {
			return cmpOrdered(fa, fb), nil
		}
		return 0, fmt.Errorf("cannot compare %s with %s", describe(a), describe(b))
	}
	switch x := a.(type) {
	case string:
		if y, ok := b.(string); ok {
			return strings.Compare(x, y), nil
		}
		if y, ok := b.(time.Time); ok {
			if tx, ok := ParseTime(x); ok {
				return tx.Compare(y), nil
			}
		}
	case bool:
		if y, ok := b.(bool); ok {
			return cmpOrdered(boolInt(x), boolInt(y)), nil
		}
	case time.Time:
		switch y := b.(type) {
		case time.Time:
			return x.Compare(y), nil
		case string:
			if ty, ok := ParseTime(y); ok {
				return x.Compare(ty), nil
			}
		}
	}
	return 0, fmt.Errorf("cannot compare %s with %s", describe(a), describe(b))
}

// Format renders a value for display and CSV export. Nulls render empty.
func Format(v any) string {
	if IsNull(v) {
		return ""
	}
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	}
	return fmt.Sprint(v)
}

// numeric is ToFloat without the bool coercion.
func numeric(v any) (float64, bool) {
	if _, ok := v.(bool); ok {
		return 0, false
	}
	return ToFloat(v)
}

func describe(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case float64, int64:
		return "number"
	case bool:
		return "bool"
	case time.Time:
		return "timestamp"
	}
	return fmt.Sprintf("%T", v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
