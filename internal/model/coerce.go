package model

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number coerces a loosely typed value (as decoded from JSON or a form) to a
// finite float64. The second result is false for nil, empty strings,
// unparseable strings, booleans and non-finite values.
func Number(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0, false
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// NumberOr returns Number(v) or fallback when v is not a finite number.
func NumberOr(v any, fallback float64) float64 {
	if f, ok := Number(v); ok {
		return f
	}
	return fallback
}

// Truthy reports whether v reads as a logical true.
func Truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "y", "on":
			return true
		}
		return false
	case nil:
		return false
	}
	f, ok := Number(v)
	return ok && f != 0
}

// Text coerces v to a string. nil becomes "".
func Text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	if f, ok := Number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return ""
}

// Present reports whether v carries a non-empty value.
func Present(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(s) != ""
	}
	return true
}
