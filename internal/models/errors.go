package models

import "fmt"

// ValidationError rejects a malformed or capacity-exceeding booking request
// before any state is written.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// InvalidTransitionError is returned when a status change is attempted from a
// terminal or mismatched state. It carries the record's current status so the
// caller can show it instead of crashing.
type InvalidTransitionError struct {
	BookingID string
	Current   string
	Requested string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("booking %s: cannot transition from %q to %q", e.BookingID, e.Current, e.Requested)
}
