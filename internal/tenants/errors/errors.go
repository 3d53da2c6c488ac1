package errors

import "errors"

var (
	ErrNotFound = errors.New("tenant not found")

	ErrInactive = errors.New("tenant is inactive")
)
