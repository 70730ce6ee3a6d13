package storage

import "errors"

// Storage errors for the order ledger.
var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateKey is returned when attempting to insert a record
	// with a key that already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrAlreadySubmitted is returned by MarkSubmitted when the order's
	// submitted flag is already true. The flag never reverts.
	ErrAlreadySubmitted = errors.New("order already submitted")

	// ErrInvalidInput is returned when input validation fails.
	ErrInvalidInput = errors.New("invalid input")
)
