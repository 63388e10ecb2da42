package services

import (
	"errors"
	"strings"
)

// ErrUnauthorized is returned when a mutating call carries a missing or
// incorrect admin credential. No validation runs and no state changes.
var ErrUnauthorized = errors.New("unauthorized")

// ValidationError carries the full list of violations found in a create or
// update candidate. The store is untouched when it is returned.
type ValidationError struct {
	Details []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Details, "; ")
}
