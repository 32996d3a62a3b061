package conversation

import "errors"

var (
	// ErrActionNotFound indicates the action id does not exist.
	ErrActionNotFound = errors.New("pending action not found")
	// ErrEmptyMessage indicates a blank user message.
	ErrEmptyMessage = errors.New("empty message")
)
