package preview

import "errors"

var (
	// ErrNotFound indicates an entity reference resolved to nothing.
	ErrNotFound = errors.New("referenced entity not found")
	// ErrAmbiguous indicates a reference matched more than one entity.
	ErrAmbiguous = errors.New("ambiguous reference")
	// ErrInvalidBlock indicates a calendar block failed validation.
	ErrInvalidBlock = errors.New("invalid calendar block")
)
