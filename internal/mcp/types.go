package mcp

import (
	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/capacity"
	"github.com/ledeberg/tiller/internal/domain/risk"
	"github.com/ledeberg/tiller/internal/domain/task"
)

type HandleMessageParams struct {
	SessionID string `json:"session_id,omitempty"`
	Text      string `json:"text"`
}

type ConfirmActionParams struct {
	ActionID string `json:"action_id"`
	Confirm  bool   `json:"confirm"`
}

type ListTasksParams struct {
	Statuses    []task.Status `json:"statuses,omitempty"`
	Week        string        `json:"week,omitempty"`
	ObjectiveID string        `json:"objective_id,omitempty"`
	Kind        task.Kind     `json:"kind,omitempty"`
}

type ListBlocksParams struct {
	Date string `json:"date,omitempty"`
}

type ListTasksResponse struct {
	Tasks []task.Task `json:"tasks"`
}

type ListInboxResponse struct {
	Items []task.InboxItem `json:"items"`
}

type ListBlocksResponse struct {
	Blocks []task.CalendarBlock `json:"blocks"`
}

// CapacityReport is the full capacity picture for the current week.
type CapacityReport struct {
	Week             string                `json:"week"`
	Config           config.CapacityConfig `json:"config"`
	Daily            capacity.Capacity     `json:"daily"`
	Weekly           capacity.Capacity     `json:"weekly"`
	CommittedMinutes int                   `json:"committed_minutes"`
	RemainingMinutes int                   `json:"remaining_minutes"`
	Overload         capacity.Overload     `json:"overload"`
}

type RiskReport struct {
	Risks       []risk.Signal `json:"risks"`
	HighCount   int           `json:"high_count"`
	MediumCount int           `json:"medium_count"`
	LowCount    int           `json:"low_count"`
}
