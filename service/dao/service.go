package dao

import (
	"context"
)

// Service is a generic persistence contract keyed by a comparable id. The
// default stores are in-memory; hosts plug their own persistence behind the
// same interface.
type Service[K comparable, T any] interface {
	Save(ctx context.Context, t *T) error

	Load(ctx context.Context, id K) (*T, error)

	Delete(ctx context.Context, id K) error

	List(ctx context.Context, parameters ...*Parameter) ([]*T, error)
}

// Parameter is a name/value filter criterion for List.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list filter parameter.
func NewParameter(name string, value interface{}) *Parameter {
	return &Parameter{Name: name, Value: value}
}
