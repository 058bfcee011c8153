package controller

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrOperationDisabled is returned by entry points a resource does not support.
	ErrOperationDisabled = errors.New("operation not permitted on this resource")
	// ErrInvalidPayload is returned when a payload lacks a required field.
	ErrInvalidPayload = errors.New("invalid payload")
)

// NotFoundError reports an addressed entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s id=%d not found", e.Resource, e.ID)
}

// ReferentialConflictError reports an operation that would break a reference
// still held by other entities. Blockers names those entities.
type ReferentialConflictError struct {
	Resource string
	ID       uint
	Blockers []string
}

func (e *ReferentialConflictError) Error() string {
	return fmt.Sprintf("%s still attached to some recipes: %s", e.Resource, strings.Join(e.Blockers, ", "))
}

// InvalidReferenceError reports a nested reference that does not resolve.
type InvalidReferenceError struct {
	Kind string
	ID   uint
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("%s id=%d not found", e.Kind, e.ID)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}
