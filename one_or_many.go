package amiwo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
)

// OneOrMany holds either a single value or an ordered collection of values of
// type T. The zero value is empty: it is neither one nor many and yields no
// values.
//
// OneOrMany distinguishes a value that happened to arrive once from a
// collection that happens to contain one element. A single value marshals to
// JSON as the bare value; a collection always marshals as an array, even when
// it contains a single element.
type OneOrMany[T any] struct {
	values []T
	many   bool
}

// One returns a OneOrMany holding the single value v.
func One[T any](v T) OneOrMany[T] {
	return OneOrMany[T]{values: []T{v}}
}

// Many returns a OneOrMany holding the ordered values vs.
func Many[T any](vs ...T) OneOrMany[T] {
	return OneOrMany[T]{values: vs, many: true}
}

// IsZero reports whether o holds no value at all.
func (o OneOrMany[T]) IsZero() bool {
	return !o.many && len(o.values) == 0
}

// IsOne reports whether o holds exactly one value.
func (o OneOrMany[T]) IsOne() bool {
	return !o.many && len(o.values) == 1
}

// IsMany reports whether o holds a collection of values.
func (o OneOrMany[T]) IsMany() bool {
	return o.many
}

// Len returns the number of values held by o.
func (o OneOrMany[T]) Len() int {
	return len(o.values)
}

// Value returns the single value, or the first value of the collection. The
// boolean is false when o is empty.
func (o OneOrMany[T]) Value() (T, bool) {
	if len(o.values) == 0 {
		var zero T
		return zero, false
	}
	return o.values[0], true
}

// At returns the value at index i. It panics if the index is out of range.
func (o OneOrMany[T]) At(i int) T {
	if i < 0 || i >= len(o.values) {
		panic(fmt.Sprintf("amiwo: index out of range: %d with length %d", i, len(o.values)))
	}
	return o.values[i]
}

// Values returns all held values as a slice. A single value yields a
// one-element slice; an empty OneOrMany yields nil. The slice must not be
// mutated by the caller.
func (o OneOrMany[T]) Values() []T {
	return o.values
}

// Push appends a value. Pushing onto an empty OneOrMany makes it hold one
// value; pushing onto a single value promotes it to a collection of two.
func (o *OneOrMany[T]) Push(v T) {
	if o.IsOne() {
		o.many = true
	}
	o.values = append(o.values, v)
}

// MarshalJSON encodes a single value as the bare value and a collection as a
// JSON array, even when the collection is empty. The zero value encodes as
// null.
func (o OneOrMany[T]) MarshalJSON() ([]byte, error) {
	if o.many {
		if o.values == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(o.values)
	}
	if len(o.values) == 0 {
		return []byte("null"), nil
	}
	return json.Marshal(o.values[0])
}

// UnmarshalJSON decodes a JSON array as a collection and any other JSON value
// as a single value. JSON null resets o to its zero value.
func (o *OneOrMany[T]) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("amiwo: unexpected end of JSON input")
	}

	switch {
	case bytes.Equal(data, []byte("null")):
		*o = OneOrMany[T]{}
		return nil
	case data[0] == '[':
		var vs []T
		if err := json.Unmarshal(data, &vs); err != nil {
			return err
		}
		*o = Many(vs...)
		return nil
	default:
		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*o = One(v)
		return nil
	}
}

// UnmarshalForm implements [Unmarshaler]. Each occurrence of a form field
// pushes one value, so repeated fields accumulate into a collection. The raw
// form value is coerced to T using the scalar rules of [Unmarshal].
func (o *OneOrMany[T]) UnmarshalForm(val string) error {
	var v T
	if err := setScalar(reflect.ValueOf(&v).Elem(), val); err != nil {
		return err
	}
	o.Push(v)
	return nil
}

// formValues renders the held values for form encoding. Each value becomes a
// separate occurrence of the field.
func (o OneOrMany[T]) formValues() ([]string, error) {
	out := make([]string, 0, len(o.values))
	for _, v := range o.values {
		s, err := scalarString(reflect.ValueOf(v))
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
