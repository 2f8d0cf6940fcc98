// Package opt provides an optional value type, used wherever the harness needs to tell
// "not specified" apart from a zero value, such as per-test option overrides.
package opt

import (
	"encoding/json"
	"fmt"
)

// Maybe is a value that may or may not be present.
type Maybe[V any] struct {
	defined bool
	value   V
}

// Some returns a Maybe that has a defined value.
func Some[V any](value V) Maybe[V] {
	return Maybe[V]{defined: true, value: value}
}

// None returns a Maybe with no value.
func None[V any]() Maybe[V] { return Maybe[V]{} }

// FromPtr returns Some(*ptr), or None if ptr is nil.
func FromPtr[V any](ptr *V) Maybe[V] {
	if ptr != nil {
		return Some(*ptr)
	}
	return None[V]()
}

// IsDefined returns true if the Maybe has a value.
func (m Maybe[V]) IsDefined() bool { return m.defined }

// Value returns the value, or the zero value for the type if there is none.
func (m Maybe[V]) Value() V { return m.value }

// OrElse returns the value of the Maybe if any, or valueIfUndefined otherwise.
func (m Maybe[V]) OrElse(valueIfUndefined V) V {
	if m.defined {
		return m.value
	}
	return valueIfUndefined
}

// Or returns m if it has a value, or else other.
func (m Maybe[V]) Or(other Maybe[V]) Maybe[V] {
	if m.defined {
		return m
	}
	return other
}

// String returns the value's own String() if it has one, a %v rendering otherwise, or
// "[none]" if undefined.
func (m Maybe[V]) String() string {
	if !m.defined {
		return "[none]"
	}
	var v interface{} = m.value
	if s, ok := v.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", m.value)
}

// MarshalJSON writes the value's usual JSON representation, or null if undefined.
func (m Maybe[V]) MarshalJSON() ([]byte, error) {
	if m.defined {
		return json.Marshal(m.value)
	}
	return []byte("null"), nil
}

// UnmarshalJSON sets the Maybe to None for a JSON null, or to Some(value) otherwise.
func (m *Maybe[V]) UnmarshalJSON(data []byte) error {
	var temp interface{}
	if err := json.Unmarshal(data, &temp); err != nil {
		return err
	}
	if temp == nil {
		*m = None[V]()
		return nil
	}
	var value V
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*m = Some(value)
	return nil
}
