package site

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an article lookup by id misses.
var ErrNotFound = errors.New("article not found")

// ErrWrongPassword is returned when a submitted password matches none of the
// configured hashes. Callers surface it as a flash message, never as a hard
// failure.
var ErrWrongPassword = errors.New("wrong password")

// ValidationError reports a missing or invalid form field. No partial write
// occurs when one is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
