package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ToFloat converts a scalar attribute value to float64.
// The boolean is false for nil, non-numeric strings and composite values.
func ToFloat(val any) (float64, bool) {
	switch v := val.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case int16:
		return float64(v), true
	case int8:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint8:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(v)), 64)
		return f, err == nil
	case interface{ Float64() (float64, error) }:
		// json.Number and its aliases
		f, err := v.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// ToString converts an attribute value to its string form. Nil becomes "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
