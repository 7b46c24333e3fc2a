package amiwo

// Map is a generic value map: string keys mapping to scalars, arrays, or
// nested maps, as produced by decoding JSON into untyped Go values. It is the
// uniform representation of a request payload regardless of input encoding.
type Map map[string]any

// ContainsKeys reports whether the map contains every key in keys.
func (m Map) ContainsKeys(keys ...string) bool {
	for _, key := range keys {
		if _, ok := m[key]; !ok {
			return false
		}
	}
	return true
}

// ContainsKeys reports whether v is a map-like value containing every key in
// keys. It returns false for any non-object value.
func ContainsKeys(v any, keys ...string) bool {
	switch m := v.(type) {
	case Map:
		return m.ContainsKeys(keys...)
	case map[string]any:
		return Map(m).ContainsKeys(keys...)
	default:
		return false
	}
}

// appendValue combines an existing generic value with a new one. A nil
// existing value is replaced; an existing array is appended to; any other
// existing value is promoted to a two-element array.
func appendValue(existing, v any) any {
	switch cur := existing.(type) {
	case nil:
		return v
	case []any:
		return append(cur, v)
	default:
		return []any{cur, v}
	}
}
