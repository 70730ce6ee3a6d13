package orders

import (
	"errors"
	"fmt"
)

// Submission pipeline errors. All of them are caller faults: the order is
// left unsubmitted and the request can be corrected and retried.
var (
	// ErrOrderNotFound is returned when no prepared order matches the
	// signed transaction's message.
	ErrOrderNotFound = errors.New("order not found")

	// ErrExpired is returned when the current block height is past the
	// order's expiration horizon.
	ErrExpired = errors.New("transaction expired")

	// ErrInvalidSignature is returned when no signature slot validates
	// against the order's trader key over the message bytes.
	ErrInvalidSignature = errors.New("transaction signatures are invalid or not signed by the original trader")

	// ErrAlreadySubmitted is returned when the order was already relayed.
	ErrAlreadySubmitted = errors.New("order already submitted")
)

// ValidationError is a caller-input fault detected before any business
// logic runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsClientFault reports whether err maps to a caller fault (HTTP 400) rather
// than an internal failure.
func IsClientFault(err error) bool {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return true
	}
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrInvalidSignature) ||
		errors.Is(err, ErrAlreadySubmitted)
}
