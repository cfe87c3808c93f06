// Package sanitize strips unsafe control characters from inbound structured
// payloads before they reach business logic.
package sanitize

import "strings"

// String removes characters in the C0 (0x00-0x1F) and DEL/C1 (0x7F-0x9F)
// ranges. All other runes pass through untouched.
func String(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1F || (r >= 0x7F && r <= 0x9F) {
			return -1
		}
		return r
	}, s)
}

// Value recursively walks a decoded JSON value and sanitizes every
// string-valued leaf. Maps and slices are mutated in place and returned;
// nil and non-string scalars pass through unchanged.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case map[string]any:
		for k, vv := range t {
			t[k] = Value(vv)
		}
		return t
	case []any:
		for i, vv := range t {
			t[i] = Value(vv)
		}
		return t
	default:
		return v
	}
}
