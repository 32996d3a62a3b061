// Package preview computes the exact diff a requested mutation would apply,
// without applying it. Previews are pure values over one snapshot read.
package preview

import (
	"time"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/intent"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/task"
)

// ChangeOp is the kind of atomic change.
type ChangeOp string

const (
	OpCreate ChangeOp = "create"
	OpUpdate ChangeOp = "update"
	OpDelete ChangeOp = "delete"
)

// Change is one atomic change in a preview.
type Change struct {
	Op      ChangeOp `json:"op"`
	Entity  string   `json:"entity"` // task, milestone, objective, key_result, inbox_item, calendar_block, settings
	ID      string   `json:"id,omitempty"`
	Summary string   `json:"summary"`
}

// Impact quantifies what a preview touches.
type Impact struct {
	TasksAffected  int `json:"tasks_affected,omitempty"`
	BlocksAffected int `json:"blocks_affected,omitempty"`
	MinutesDelta   int `json:"minutes_delta,omitempty"` // committed-load change, signed
}

// Payload carries everything the executor needs to apply the change without
// re-deriving it. Executed as one unit.
type Payload struct {
	CreateTasks        []task.Task            `json:"create_tasks,omitempty"`
	UpdateTasks        []task.Task            `json:"update_tasks,omitempty"`
	DeleteTaskIDs      []string               `json:"delete_task_ids,omitempty"`
	CreateObjectives   []objective.Objective  `json:"create_objectives,omitempty"`
	UpdateKeyResults   []objective.KeyResult  `json:"update_key_results,omitempty"`
	CreateBlocks       []task.CalendarBlock   `json:"create_blocks,omitempty"`
	DeleteBlockIDs     []string               `json:"delete_block_ids,omitempty"`
	MarkInboxProcessed []string               `json:"mark_inbox_processed,omitempty"`
	SetCapacity        *config.CapacityConfig `json:"set_capacity,omitempty"`
}

// Empty reports whether the payload would change nothing.
func (p Payload) Empty() bool {
	return len(p.CreateTasks) == 0 && len(p.UpdateTasks) == 0 && len(p.DeleteTaskIDs) == 0 &&
		len(p.CreateObjectives) == 0 && len(p.UpdateKeyResults) == 0 &&
		len(p.CreateBlocks) == 0 && len(p.DeleteBlockIDs) == 0 &&
		len(p.MarkInboxProcessed) == 0 && p.SetCapacity == nil
}

// Preview is an immutable description of a proposed mutation.
type Preview struct {
	ID                   string      `json:"id"`
	Intent               intent.Kind `json:"intent"`
	Summary              string      `json:"summary"`
	Reason               string      `json:"reason,omitempty"`
	Changes              []Change    `json:"changes,omitempty"`
	Impact               Impact      `json:"impact"`
	Actionable           bool        `json:"actionable"`
	RequiresConfirmation bool        `json:"requires_confirmation"`
	Candidates           []string    `json:"candidates,omitempty"` // disambiguation options
	Payload              Payload     `json:"payload"`
	CreatedAt            time.Time   `json:"created_at"`
}
