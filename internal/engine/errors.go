package engine

import (
	"errors"
	"fmt"

	"github.com/tartampluch/go-hijri/internal/config"
)

var (
	// ErrPersistenceUnavailable wraps any failure of the underlying store.
	// The current operation is abandoned and no partial state is written.
	ErrPersistenceUnavailable = errors.New(config.ErrPersistence)

	// ErrSchedulingUnavailable is returned by a TriggerHost that refuses
	// exact delivery. The scheduler falls back to inexact delivery.
	ErrSchedulingUnavailable = errors.New(config.ErrScheduling)
)

// ValidationError reports malformed or out-of-range user input.
// State is never changed when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", config.ErrValidation, e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// persistenceError tags a store failure so callers can test it with errors.Is.
func persistenceError(msg string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistenceUnavailable, msg, err)
}
