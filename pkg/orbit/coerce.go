package orbit

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float coerces v to a finite float64. It returns nil for nil, unparseable
// text, NaN, ±Inf and unsupported types. It never panics.
func Float(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case bool:
		if x {
			f = 1
		}
	case json.Number:
		return parseFloat(string(x))
	case string:
		return parseFloat(x)
	case *string:
		if x == nil {
			return nil
		}
		return parseFloat(*x)
	default:
		return nil
	}
	return finite(f)
}

func parseFloat(s string) *float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return finite(f)
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// Truthy reports the permissive truthiness of a loosely decoded JSON value:
// nil, false, zero, "" and empty arrays/objects are false, anything else is
// true.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case int:
		return x != 0
	case int64:
		return x != 0
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return x != ""
		}
		return f != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		return true
	}
}

// hazardTokens are the CSV values accepted as a true hazard flag.
var hazardTokens = map[string]struct{}{
	"1":    {},
	"true": {},
	"yes":  {},
	"y":    {},
	"t":    {},
}

// HazardToken reports whether a CSV hazard cell is one of 1, true, yes, y, t
// (case-insensitive, surrounding whitespace ignored).
func HazardToken(s string) bool {
	_, ok := hazardTokens[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// text converts a loosely decoded identifier to a string pointer. Strings are
// kept as-is and numbers formatted; everything else is nil.
func text(v any) *string {
	switch x := v.(type) {
	case string:
		return strPtr(x)
	case json.Number:
		return strPtr(x.String())
	case float64:
		return strPtr(strconv.FormatFloat(x, 'f', -1, 64))
	default:
		return nil
	}
}
