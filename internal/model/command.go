package model

import (
	"context"
)

// Command executes raw storage operations for a resource. It is
// implemented by the storage backends and installed with SetConnection.
//
// Find reports a missing record either with an error matching
// ErrNotFound or with a nil mapping. Create may return the fields the
// backend assigned (e.g. a generated identifier); nil is a valid result.
type Command interface {
	All(ctx context.Context, resource string) ([]Attributes, error)
	Find(ctx context.Context, resource string, id any) (Attributes, error)
	Update(ctx context.Context, resource string, id any, attrs Attributes) error
	Create(ctx context.Context, resource string, attrs Attributes) (Attributes, error)
}

var connection Command

// SetConnection installs the command shared by every model. Call it once
// before any persistence operation; it is not safe to swap while models
// are in use.
func SetConnection(c Command) {
	connection = c
}

// Connection returns the installed command and panics when there is none.
func Connection() Command {
	if connection == nil {
		panic(ErrNoConnection)
	}
	return connection
}
