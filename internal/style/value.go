package style

import (
	"fmt"
	"strings"
)

type presence uint8

const (
	absent presence = iota
	unset
	valid
	invalid
)

// Value is a single style property.
//
// A Value is in one of four states: absent (the key never appeared), unset
// (the key carried the unset token), valid (a typed value), or invalid (raw
// text that does not parse). Absent and unset both mean "no opinion" and
// every consumer treats them the same through Get; the distinction is kept
// observable for diagnostics.
type Value[T any] struct {
	val   T
	raw   string
	state presence
}

// Set returns a valid Value holding v.
func Set[T any](v T) Value[T] {
	return Value[T]{val: v, raw: fmt.Sprint(v), state: valid}
}

// Unset returns a Value carrying the unset token.
func Unset[T any]() Value[T] {
	return Value[T]{raw: UnsetToken, state: unset}
}

// Invalid returns a Value holding raw text that does not parse as T.
func Invalid[T any](raw string) Value[T] {
	return Value[T]{raw: raw, state: invalid}
}

// parseValue classifies raw text, using parse for anything other than the
// unset token.
func parseValue[T any](raw string, parse func() (T, bool)) Value[T] {
	if strings.EqualFold(raw, UnsetToken) {
		return Unset[T]()
	}
	v, ok := parse()
	if !ok {
		return Invalid[T](raw)
	}
	return Value[T]{val: v, raw: raw, state: valid}
}

// Get returns the typed value and true only when the value is valid.
func (v Value[T]) Get() (T, bool) {
	if v.state != valid {
		var zero T
		return zero, false
	}
	return v.val, true
}

// IsAbsent returns true if the key never appeared.
func (v Value[T]) IsAbsent() bool { return v.state == absent }

// IsUnset returns true if the key carried the unset token.
func (v Value[T]) IsUnset() bool { return v.state == unset }

// IsInvalid returns true if the key carried text that does not parse.
func (v Value[T]) IsInvalid() bool { return v.state == invalid }

// Present returns true if the key expresses an opinion, valid or not.
func (v Value[T]) Present() bool { return v.state == valid || v.state == invalid }

// Raw returns the text the value was read from.
func (v Value[T]) Raw() string { return v.raw }

// String returns the raw text, or the typed value's spelling when valid.
func (v Value[T]) String() string {
	if v.state == valid {
		if s, ok := any(v.val).(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprint(v.val)
	}
	return v.raw
}
