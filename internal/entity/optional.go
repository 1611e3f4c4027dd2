package entity

import (
	"bytes"
	"encoding/json"
)

// Optional - поле частичного обновления.
// Set - ключ был в запросе; Null - ключ был передан как JSON null.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some возвращает Optional со значением v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// Null возвращает явно очищенный Optional.
func Null[T any]() Optional[T] {
	return Optional[T]{Set: true, Null: true}
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		o.Value = zero
		o.Null = true
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
