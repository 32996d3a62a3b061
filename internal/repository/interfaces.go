package repository

import (
	"context"
	"time"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/task"
)

// Snapshot is a complete, self-consistent read of persisted state. Preview
// building and guardrail re-validation each work against one snapshot.
type Snapshot struct {
	Tasks      []task.Task
	Objectives []objective.Objective
	KeyResults []objective.KeyResult
	Inbox      []task.InboxItem
	Blocks     []task.CalendarBlock
	Capacity   config.CapacityConfig
	ReadAt     time.Time
}

// SnapshotReader assembles an atomic snapshot.
type SnapshotReader interface {
	ReadSnapshot(ctx context.Context) (*Snapshot, error)
}

// TaskRepository manages task and milestone persistence
type TaskRepository interface {
	Create(ctx context.Context, t *task.Task) error
	Get(ctx context.Context, id string) (*task.Task, error)
	Update(ctx context.Context, t *task.Task) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]task.Task, error)
}

// ObjectiveRepository manages objective and key-result persistence
type ObjectiveRepository interface {
	Create(ctx context.Context, obj *objective.Objective) error
	Get(ctx context.Context, id string) (*objective.Objective, error)
	Update(ctx context.Context, obj *objective.Objective) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]objective.Objective, error)
	CreateKeyResult(ctx context.Context, kr *objective.KeyResult) error
	UpdateKeyResult(ctx context.Context, kr *objective.KeyResult) error
	ListKeyResults(ctx context.Context) ([]objective.KeyResult, error)
}

// InboxRepository manages inbox item persistence
type InboxRepository interface {
	Create(ctx context.Context, item *task.InboxItem) error
	Get(ctx context.Context, id string) (*task.InboxItem, error)
	List(ctx context.Context, includeProcessed bool) ([]task.InboxItem, error)
	MarkProcessed(ctx context.Context, id string) error
}

// CalendarRepository manages calendar block persistence
type CalendarRepository interface {
	Create(ctx context.Context, block *task.CalendarBlock) error
	Delete(ctx context.Context, id string) error
	ListByDate(ctx context.Context, date string) ([]task.CalendarBlock, error)
	List(ctx context.Context) ([]task.CalendarBlock, error)
}

// SettingsRepository manages the persisted capacity configuration
type SettingsRepository interface {
	GetCapacity(ctx context.Context) (config.CapacityConfig, error)
	SetCapacity(ctx context.Context, cfg config.CapacityConfig) error
}

// ActionStatus is the lifecycle of a pending action.
type ActionStatus string

const (
	ActionPending   ActionStatus = "pending"
	ActionConfirmed ActionStatus = "confirmed"
	ActionCancelled ActionStatus = "cancelled"
	ActionExpired   ActionStatus = "expired"
)

// PendingActionRecord is the persisted form of a confirmable action.
// PreviewJSON carries the serialized preview so execution never re-derives it.
type PendingActionRecord struct {
	ID          string
	SessionID   string
	Status      ActionStatus
	PreviewJSON []byte
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ActionRepository manages pending actions. TransitionStatus is an atomic
// compare-and-set on the status column; it reports false when the action was
// no longer in the expected state, which is what guarantees at-most-once
// execution under concurrent confirmations.
type ActionRepository interface {
	Create(ctx context.Context, rec *PendingActionRecord) error
	Get(ctx context.Context, id string) (*PendingActionRecord, error)
	TransitionStatus(ctx context.Context, id string, from, to ActionStatus) (bool, error)
}
