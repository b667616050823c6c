package models

import "encoding/json"

// Nullable is a patch field that distinguishes "absent" from "explicit null".
// Set reports whether the key was present in the payload; Valid reports a non-null value.
type Nullable[T any] struct {
	Value T
	Set   bool
	Valid bool
}

// Some returns a present, non-null value.
func Some[T any](v T) Nullable[T] {
	return Nullable[T]{Value: v, Set: true, Valid: true}
}

// Null returns a present null value (clears the field).
func Null[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON is only invoked when the key exists, which is what marks the field as set.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		var zero T
		n.Value, n.Valid = zero, false
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns a copy of the value, or nil when absent or null.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// ValuePtr exposes Ptr as an untyped value for the validator's custom type hook.
func (n Nullable[T]) ValuePtr() any {
	return n.Ptr()
}

// applyTo writes the patch value into dst when the field was supplied.
func (n Nullable[T]) applyTo(dst **T) {
	if n.Set {
		*dst = n.Ptr()
	}
}
