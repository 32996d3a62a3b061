package conversation

import (
	"time"

	"github.com/ledeberg/tiller/internal/domain/executor"
	"github.com/ledeberg/tiller/internal/domain/preview"
)

// Reply is the answer to one user message.
type Reply struct {
	Response             string           `json:"response"`
	ActionID             string           `json:"action_id,omitempty"`
	Preview              *preview.Preview `json:"preview,omitempty"`
	RequiresConfirmation bool             `json:"requires_confirmation"`
	ExpiresAt            *time.Time       `json:"expires_at,omitempty"`
	State                string           `json:"state"`
}

// Outcome is the terminal result of a confirmation attempt.
type Outcome string

const (
	OutcomeExecuted        Outcome = "executed"
	OutcomeCancelled       Outcome = "cancelled"
	OutcomeExpired         Outcome = "expired"
	OutcomeVetoed          Outcome = "vetoed"
	OutcomeAlreadyResolved Outcome = "already_resolved"
)

// ConfirmReply reports what happened to a pending action.
type ConfirmReply struct {
	Outcome  Outcome          `json:"outcome"`
	Response string           `json:"response"`
	Result   *executor.Result `json:"result,omitempty"`
}
