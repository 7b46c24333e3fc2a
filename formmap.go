package amiwo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// FormMap holds the parsed key/value pairs of a request payload, regardless
// of whether the payload arrived form-encoded or as JSON. It is constructed
// once per request and is immutable after construction.
//
// The payload is exposed through two views. [FormMap.Get] returns the values
// associated with a raw field name, with repeated fields accumulated into a
// [OneOrMany]. [FormMap.Value] returns the whole payload as a generic value
// map, with bracketed form keys such as user[tags][] expanded into nested
// maps and arrays.
type FormMap struct {
	raw    string
	fields map[string]OneOrMany[string]
	value  Map
}

// ParseForm parses an application/x-www-form-urlencoded payload. A payload
// consisting only of whitespace yields an empty map; malformed encoding
// yields a [ParseError] and no partial result.
func ParseForm(data []byte) (*FormMap, error) {
	if len(data) == 0 {
		return nil, ErrEmptyBody
	}

	// Trim spaces before parsing. url.ParseQuery does not do this and can
	// produce keys containing only spaces.
	values, err := url.ParseQuery(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, &ParseError{ContentType: MediaTypeForm, Err: err}
	}

	fm := &FormMap{
		raw:    string(data),
		fields: make(map[string]OneOrMany[string], len(values)),
		value:  make(Map),
	}

	// Visit keys in sorted order so that a plain key and a bracketed variant
	// of the same name always merge the same way.
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		vals := values[key]

		field := fm.fields[key]
		for _, val := range vals {
			field.Push(val)
		}
		fm.fields[key] = field

		path, err := parseKey(key)
		if err != nil {
			return nil, &ParseError{ContentType: MediaTypeForm, Err: err}
		}
		if len(path) == 0 || path[0].Index {
			// Keys with no leading name, such as a bare [], are kept literal.
			for _, val := range vals {
				fm.value[key] = appendValue(fm.value[key], val)
			}
			continue
		}
		for _, val := range vals {
			fm.value[path[0].Key] = putValue(fm.value[path[0].Key], path[1:], val)
		}
	}
	return fm, nil
}

// ParseJSON parses an application/json payload. The top-level JSON value must
// be an object; anything else, including trailing data after the object,
// yields a [ParseError] and no partial result.
func ParseJSON(data []byte) (*FormMap, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, &ParseError{ContentType: MediaTypeJSON, Err: err}
	}
	if dec.More() {
		return nil, &ParseError{ContentType: MediaTypeJSON, Err: fmt.Errorf("unexpected data after top-level value")}
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &ParseError{ContentType: MediaTypeJSON, Err: fmt.Errorf("top-level value must be an object")}
	}

	fm := &FormMap{
		raw:    string(data),
		fields: make(map[string]OneOrMany[string], len(obj)),
		value:  Map(obj),
	}

	// Build the form-value view from the top-level fields that render as form
	// values: scalars become single values, arrays of scalars become
	// collections. Nested objects are reachable through Value only.
	for key, val := range obj {
		switch elem := val.(type) {
		case []any:
			field := Many[string]()
			allScalar := true
			for _, e := range elem {
				s, scalar := renderScalar(e)
				if !scalar {
					allScalar = false
					break
				}
				field.Push(s)
			}
			if allScalar {
				fm.fields[key] = field
			}
		default:
			if s, scalar := renderScalar(val); scalar {
				fm.fields[key] = One(s)
			}
		}
	}
	return fm, nil
}

// Get returns the value (or values) associated with the raw field name key.
// For form payloads the key is the field name exactly as it appeared,
// brackets included.
func (f *FormMap) Get(key string) (OneOrMany[string], bool) {
	field, ok := f.fields[key]
	return field, ok
}

// Value returns the payload as a generic value map.
func (f *FormMap) Value() Map {
	return f.value
}

// RawBody returns the raw payload that was parsed into this map.
func (f *FormMap) RawBody() string {
	return f.raw
}

// putValue inserts val into a generic value at the position described by
// path. An index segment appends to an array; a key segment descends into a
// map, allocating it if needed. Colliding values, at the leaf or when an
// existing value does not match the structure a segment asks for, are
// promoted to arrays rather than overwritten.
func putValue(cur any, path []pathSegment, val string) any {
	if len(path) == 0 {
		return appendValue(cur, val)
	}

	seg := path[0]
	if seg.Index {
		slice, ok := cur.([]any)
		if !ok && cur != nil {
			// A plain value already lives here, from a key like a=1
			// alongside a[]=2. Keep it as the first element.
			slice = []any{cur}
		}
		return append(slice, putValue(nil, path[1:], val))
	}

	m, ok := cur.(map[string]any)
	if !ok {
		m = make(map[string]any)
	}
	m[seg.Key] = putValue(m[seg.Key], path[1:], val)
	if !ok && cur != nil {
		return appendValue(cur, m)
	}
	return m
}

// renderScalar renders a decoded JSON scalar as a form value string.
func renderScalar(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case json.Number:
		return s.String(), true
	case bool:
		return strconv.FormatBool(s), true
	default:
		return "", false
	}
}
