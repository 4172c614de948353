package utils

// Lookup walks a decoded-JSON value (map[string]any / []any tree) along the
// given key path and returns the value at the end, or nil on any shape
// mismatch along the way. It never panics; a missing key, a non-map value
// mid-path, or a nil input all propagate as nil.
func Lookup(v any, path ...string) any {
	cur := v
	for _, key := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil
		}
		cur, ok = m[key]
		if !ok {
			return nil
		}
	}
	return cur
}

// LookupString returns the string at path, or "" when absent or not a string.
func LookupString(v any, path ...string) string {
	s, _ := Lookup(v, path...).(string)
	return s
}

// LookupFloat returns the number at path, or (0, false) when absent or not a
// number. JSON numbers decode as float64.
func LookupFloat(v any, path ...string) (float64, bool) {
	f, ok := Lookup(v, path...).(float64)
	return f, ok
}

// LookupSlice returns the array at path, or nil when absent or not an array.
func LookupSlice(v any, path ...string) []any {
	s, _ := Lookup(v, path...).([]any)
	return s
}
