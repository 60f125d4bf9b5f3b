package domain

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state JSON field: absent, explicit null, or a value.
// Partial updates need the distinction so that an omitted field keeps its
// current value while an explicit null clears a nullable field.
type Optional[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NewOptional returns an Optional holding a value.
func NewOptional[T any](v T) Optional[T] {
	return Optional[T]{Set: true, Valid: true, Value: v}
}

// Null returns an Optional representing an explicit null.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(data, &o.Value); err != nil {
		return err
	}
	o.Valid = true
	return nil
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// Ptr returns the value as a pointer, or nil when absent or null.
func (o Optional[T]) Ptr() *T {
	if !o.Set || !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}
