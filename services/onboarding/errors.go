package onboarding

import "errors"

// FieldErrors maps a field name to a human-readable validation message. A
// non-empty map blocks the step from committing or navigating.
type FieldErrors map[string]string

// HasErrors reports whether any field failed validation.
func (fe FieldErrors) HasErrors() bool {
	return len(fe) > 0
}

var (
	// ErrSessionNotFound indicates the onboarding session is missing or expired.
	ErrSessionNotFound = errors.New("onboarding session not found or expired")
	// ErrStepOrder indicates an operation that is invalid for the current step.
	ErrStepOrder = errors.New("operation not valid for current step")
)
