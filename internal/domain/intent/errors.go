package intent

import "errors"

var (
	// ErrUnknownIntent indicates a value outside the closed union.
	ErrUnknownIntent = errors.New("unknown intent")
	// ErrInvalidSlot indicates a slot value that failed normalization.
	ErrInvalidSlot = errors.New("invalid slot value")
	// ErrMissingSlot indicates a required slot is still unresolved.
	ErrMissingSlot = errors.New("missing required slot")
)
