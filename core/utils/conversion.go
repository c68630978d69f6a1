package utils

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToInt converts a decoded JSON argument to int. Numbers arrive as float64 or
// json.Number; numeric strings are accepted too. Anything else is 0.
func ToInt(val any) int {
	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
		f, _ := v.Float64()
		return int(f)
	case string:
		s := strings.TrimSpace(v)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		f, _ := strconv.ParseFloat(s, 64)
		return int(f)
	default:
		return 0
	}
}

// ToString converts a decoded JSON argument to string. nil becomes "".
func ToString(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ToBool converts a decoded JSON argument to bool.
// Numbers are true when 1; strings accept "1", "true" and "yes".
func ToBool(val any) bool {
	switch v := val.(type) {
	case bool:
		return v
	case int, int64, float64, json.Number:
		return ToInt(v) == 1
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		return s == "1" || s == "true" || s == "yes"
	default:
		return false
	}
}
