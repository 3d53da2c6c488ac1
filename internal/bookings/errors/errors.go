package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrLockHeld = errors.New("resource is locked by a concurrent booking write")

	// ErrLockLost means the lock expired or passed to another owner before
	// the write committed.
	ErrLockLost = errors.New("booking lock no longer held")

	ErrModifiedConcurrently = errors.New("booking was modified by a concurrent write")

	ErrInvalidTransition = errors.New("booking status transition not allowed")
)
