// Package attrs reads values back out of slog-style key/value attribute lists.
package attrs

// lookup returns the value paired with key in [k1, v1, k2, v2, ...].
// Non-string keys are skipped; a trailing key without a value is ignored.
func lookup(attrs []any, key string) (any, bool) {
	for i := 0; i+1 < len(attrs); i += 2 {
		if k, ok := attrs[i].(string); ok && k == key {
			return attrs[i+1], true
		}
	}
	return nil, false
}

// ExtractString returns the string stored under key, or "" when it is
// missing or not a string.
func ExtractString(attrs []any, key string) string {
	v, _ := lookup(attrs, key)
	s, _ := v.(string)
	return s
}

// ExtractUint64 returns the token amount stored under key. Other unsigned
// and non-negative signed integers are widened; anything else yields 0.
func ExtractUint64(attrs []any, key string) uint64 {
	v, _ := lookup(attrs, key)
	switch n := v.(type) {
	case uint64:
		return n
	case uint:
		return uint64(n)
	case uint32:
		return uint64(n)
	case int:
		if n > 0 {
			return uint64(n)
		}
	case int64:
		if n > 0 {
			return uint64(n)
		}
	}
	return 0
}
