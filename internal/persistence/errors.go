package persistence

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrConstraintViolation is the base error for uniqueness and reference violations.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
)

// ConstraintError identifies which schema constraint rejected a write, so the
// wiring layer can map it to the matching domain error.
type ConstraintError struct {
	Constraint string
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	return fmt.Sprintf("persistence: constraint violation on %s", e.Constraint)
}

// Unwrap lets errors.Is match ErrConstraintViolation.
func (e *ConstraintError) Unwrap() error {
	return ErrConstraintViolation
}
