// Package values converts loosely typed configuration values. Sources
// differ in what they produce: TOML gives int64 and []any, seeded maps give
// Go types, and the environment gives strings. Each conversion accepts all
// three and returns the zero value for anything else.
package values

import (
	"strconv"
	"strings"
	"time"
)

// String returns v when it is a string.
func String(v any) string {
	s, _ := v.(string)
	return s
}

// Int converts integers, floats (truncated) and decimal strings.
func Int(v any) int {
	switch v := v.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}

// Float converts numbers and numeric strings.
func Float(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		return f
	}
	return 0
}

// Bool converts booleans and the strings accepted by strconv.ParseBool.
func Bool(v any) bool {
	switch v := v.(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	}
	return false
}

// Duration converts a time.Duration, a duration string ("90s") or a whole
// number of seconds given as an integer or a string.
func Duration(v any) (time.Duration, bool) {
	switch v := v.(type) {
	case time.Duration:
		return v, true
	case int:
		return time.Duration(v) * time.Second, true
	case int64:
		return time.Duration(v) * time.Second, true
	case string:
		v = strings.TrimSpace(v)
		if d, err := time.ParseDuration(v); err == nil {
			return d, true
		}
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(n) * time.Second, true
		}
	}
	return 0, false
}

// StringSlice converts string lists. A single string is split on commas
// with blanks dropped; non-string list items are skipped.
func StringSlice(v any) []string {
	switch v := v.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out
	}
	return nil
}
