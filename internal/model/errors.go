package model

import (
	"fmt"

	"github.com/nikmy/dynmodel/pkg/errors"
)

var (
	ErrNotFound     = errors.Error("record not found")
	ErrNoConnection = errors.Error("storage command is not set, call model.SetConnection first")
)

// NotFoundError is returned by Find when no record has the requested id.
type NotFoundError struct {
	Resource string
	ID       any
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id %v not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
