package objective

import "errors"

var (
	// ErrObjectiveNotFound indicates the objective doesn't exist.
	ErrObjectiveNotFound = errors.New("objective not found")
	// ErrKeyResultNotFound indicates the key result doesn't exist.
	ErrKeyResultNotFound = errors.New("key result not found")
	// ErrInvalidPeriod indicates a malformed period token.
	ErrInvalidPeriod = errors.New("invalid period")
	// ErrInvalidInput indicates invalid objective input.
	ErrInvalidInput = errors.New("invalid objective input")
)
