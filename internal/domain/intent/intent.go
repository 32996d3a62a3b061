// Package intent models user requests as a closed union of typed intents.
// Each intent carries its own validated argument shape; Dispatch resolves an
// intent to exactly one visitor method, so adding an intent type breaks the
// build until every visitor handles it.
package intent

import (
	"time"

	"github.com/ledeberg/tiller/internal/config"
)

// Kind names an intent for logging and serialization.
type Kind string

const (
	KindCreateTask      Kind = "create_task"
	KindUpdateTask      Kind = "update_task"
	KindCompleteTask    Kind = "complete_task"
	KindDeleteTask      Kind = "delete_task"
	KindCommitTask      Kind = "commit_task"
	KindCreateObjective Kind = "create_objective"
	KindUpdateKeyResult Kind = "update_key_result"
	KindProcessInbox    Kind = "process_inbox"
	KindCreateBlock     Kind = "create_block"
	KindDeleteBlock     Kind = "delete_block"
	KindPlanWeek        Kind = "plan_week"
	KindRebalanceWeek   Kind = "rebalance_week"
	KindSetCapacity     Kind = "set_capacity"
)

// Intent is the closed union of supported requests.
type Intent interface {
	Kind() Kind
	isIntent()
}

// Ref points at an entity by id or, failing that, by title text to resolve.
type Ref struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title,omitempty"`
}

// Empty reports whether the ref carries nothing to resolve.
func (r Ref) Empty() bool { return r.ID == "" && r.Title == "" }

type CreateTask struct {
	Title            string
	EstimatedMinutes int
	DueDate          *time.Time
	ObjectiveRef     Ref
	KeyResultID      string
	AreaID           string
	Commit           bool
}

type UpdateTask struct {
	Target           Ref
	Title            *string
	EstimatedMinutes *int
	DueDate          *time.Time
}

type CompleteTask struct {
	Target    Ref
	Milestone string // milestone title for project tasks, empty for the task itself
}

type DeleteTask struct {
	Target  Ref
	Archive bool // archive instead of delete
}

type CommitTask struct {
	Target   Ref
	Uncommit bool
}

type CreateObjective struct {
	Title  string
	Period string // canonical token
	AreaID string
}

type UpdateKeyResult struct {
	Target Ref
	Value  float64
}

type ProcessInbox struct {
	Target       Ref // inbox item
	DueDate      *time.Time
	ObjectiveRef Ref
	Commit       bool
}

type CreateBlock struct {
	Title    string
	Date     string // YYYY-MM-DD
	StartMin int
	EndMin   int
	TaskRef  Ref
}

type DeleteBlock struct {
	Target Ref
}

type PlanWeek struct {
	IncludeShouldDo bool
}

type RebalanceWeek struct{}

type SetCapacity struct {
	Capacity config.CapacityConfig
}

func (CreateTask) Kind() Kind      { return KindCreateTask }
func (UpdateTask) Kind() Kind      { return KindUpdateTask }
func (CompleteTask) Kind() Kind    { return KindCompleteTask }
func (DeleteTask) Kind() Kind      { return KindDeleteTask }
func (CommitTask) Kind() Kind      { return KindCommitTask }
func (CreateObjective) Kind() Kind { return KindCreateObjective }
func (UpdateKeyResult) Kind() Kind { return KindUpdateKeyResult }
func (ProcessInbox) Kind() Kind    { return KindProcessInbox }
func (CreateBlock) Kind() Kind     { return KindCreateBlock }
func (DeleteBlock) Kind() Kind     { return KindDeleteBlock }
func (PlanWeek) Kind() Kind        { return KindPlanWeek }
func (RebalanceWeek) Kind() Kind   { return KindRebalanceWeek }
func (SetCapacity) Kind() Kind     { return KindSetCapacity }

func (CreateTask) isIntent()      {}
func (UpdateTask) isIntent()      {}
func (CompleteTask) isIntent()    {}
func (DeleteTask) isIntent()      {}
func (CommitTask) isIntent()      {}
func (CreateObjective) isIntent() {}
func (UpdateKeyResult) isIntent() {}
func (ProcessInbox) isIntent()    {}
func (CreateBlock) isIntent()     {}
func (DeleteBlock) isIntent()     {}
func (PlanWeek) isIntent()        {}
func (RebalanceWeek) isIntent()   {}
func (SetCapacity) isIntent()     {}

// Visitor handles every member of the union.
type Visitor[R any] interface {
	CreateTask(CreateTask) (R, error)
	UpdateTask(UpdateTask) (R, error)
	CompleteTask(CompleteTask) (R, error)
	DeleteTask(DeleteTask) (R, error)
	CommitTask(CommitTask) (R, error)
	CreateObjective(CreateObjective) (R, error)
	UpdateKeyResult(UpdateKeyResult) (R, error)
	ProcessInbox(ProcessInbox) (R, error)
	CreateBlock(CreateBlock) (R, error)
	DeleteBlock(DeleteBlock) (R, error)
	PlanWeek(PlanWeek) (R, error)
	RebalanceWeek(RebalanceWeek) (R, error)
	SetCapacity(SetCapacity) (R, error)
}

// Dispatch resolves an intent to its visitor method.
func Dispatch[R any](in Intent, v Visitor[R]) (R, error) {
	switch i := in.(type) {
	case CreateTask:
		return v.CreateTask(i)
	case UpdateTask:
		return v.UpdateTask(i)
	case CompleteTask:
		return v.CompleteTask(i)
	case DeleteTask:
		return v.DeleteTask(i)
	case CommitTask:
		return v.CommitTask(i)
	case CreateObjective:
		return v.CreateObjective(i)
	case UpdateKeyResult:
		return v.UpdateKeyResult(i)
	case ProcessInbox:
		return v.ProcessInbox(i)
	case CreateBlock:
		return v.CreateBlock(i)
	case DeleteBlock:
		return v.DeleteBlock(i)
	case PlanWeek:
		return v.PlanWeek(i)
	case RebalanceWeek:
		return v.RebalanceWeek(i)
	case SetCapacity:
		return v.SetCapacity(i)
	}
	var zero R
	return zero, ErrUnknownIntent
}
