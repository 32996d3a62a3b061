package mcp

import (
	"errors"
	"fmt"

	"github.com/ledeberg/tiller/internal/domain/conversation"
	"github.com/ledeberg/tiller/internal/repository"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, conversation.ErrActionNotFound):
		return &APIError{Code: "ACTION_NOT_FOUND", Message: "pending action not found", RecoveryHint: "It may have expired; state the request again to get a fresh preview"}
	case errors.Is(err, conversation.ErrEmptyMessage):
		return &APIError{Code: "EMPTY_MESSAGE", Message: "message text is empty", RecoveryHint: "Pass the user's request in the text argument"}
	case errors.Is(err, repository.ErrNotFound):
		return &APIError{Code: "NOT_FOUND", Message: "resource not found", RecoveryHint: "Check ID spelling"}
	default:
		return nil
	}
}
