package intent

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ledeberg/tiller/internal/config"
)

// Slot names a structured argument collected across conversational turns.
type Slot string

const (
	SlotTitle     Slot = "title"
	SlotPeriod    Slot = "period"
	SlotDate      Slot = "date"
	SlotTimeRange Slot = "time_range"
	SlotTarget    Slot = "target"
	SlotValue     Slot = "value"
)

// Draft is a partially specified intent accumulating slot values. Once no
// slots are missing it builds into a member of the closed union.
type Draft struct {
	Kind             Kind       `json:"kind"`
	Title            string     `json:"title,omitempty"`
	Period           string     `json:"period,omitempty"`
	AreaID           string     `json:"area_id,omitempty"`
	Date             *time.Time `json:"date,omitempty"`
	StartMin         int        `json:"start_min,omitempty"`
	EndMin           int        `json:"end_min,omitempty"`
	HasTimeRange     bool       `json:"has_time_range,omitempty"`
	Target           Ref        `json:"target,omitempty"`
	ObjectiveRef     Ref        `json:"objective_ref,omitempty"`
	Milestone        string     `json:"milestone,omitempty"`
	Value            *float64   `json:"value,omitempty"`
	EstimatedMinutes int        `json:"estimated_minutes,omitempty"`
	Commit           bool       `json:"commit,omitempty"`
	Uncommit         bool       `json:"uncommit,omitempty"`
	Archive          bool       `json:"archive,omitempty"`

	// Capacity carries overrides for a set_capacity request; zero-valued
	// fields keep their current setting.
	Capacity *config.CapacityConfig `json:"capacity,omitempty"`
}

// requiredSlots lists, in asking order, what each intent kind must collect.
var requiredSlots = map[Kind][]Slot{
	KindCreateTask:      {SlotTitle},
	KindUpdateTask:      {SlotTarget},
	KindCompleteTask:    {SlotTarget},
	KindDeleteTask:      {SlotTarget},
	KindCommitTask:      {SlotTarget},
	KindCreateObjective: {SlotTitle, SlotPeriod},
	KindUpdateKeyResult: {SlotTarget, SlotValue},
	KindProcessInbox:    {SlotTarget},
	KindCreateBlock:     {SlotTitle, SlotDate, SlotTimeRange},
	KindDeleteBlock:     {SlotTarget},
}

// Missing returns the unresolved required slots in asking order.
func (d Draft) Missing() []Slot {
	var missing []Slot
	for _, s := range requiredSlots[d.Kind] {
		if !d.has(s) {
			missing = append(missing, s)
		}
	}
	return missing
}

func (d Draft) has(s Slot) bool {
	switch s {
	case SlotTitle:
		return d.Title != ""
	case SlotPeriod:
		return d.Period != ""
	case SlotDate:
		return d.Date != nil
	case SlotTimeRange:
		return d.HasTimeRange
	case SlotTarget:
		return !d.Target.Empty()
	case SlotValue:
		return d.Value != nil
	}
	return false
}

// Question phrases the single clarifying question for a missing slot.
func Question(kind Kind, slot Slot) string {
	switch slot {
	case SlotTitle:
		if kind == KindCreateBlock {
			return "What should the calendar block be called?"
		}
		return "What should it be called?"
	case SlotPeriod:
		return "Which period is this objective for? (e.g. Q1 2026, first half 2026, 2026)"
	case SlotDate:
		return "Which date? (e.g. tomorrow, Friday, 2026-03-06)"
	case SlotTimeRange:
		return "What time range? (e.g. 09:00-10:30)"
	case SlotTarget:
		return "Which one do you mean? Give me a title or id."
	case SlotValue:
		return "What is the new value?"
	}
	return "Can you give me more detail?"
}

// Fill normalizes an answer into a slot. A failed normalization leaves the
// draft untouched so the same question can be re-asked.
func (d *Draft) Fill(slot Slot, answer string, now time.Time, areas []Area) error {
	answer = strings.TrimSpace(answer)
	switch slot {
	case SlotTitle:
		if answer == "" {
			return fmt.Errorf("%w: empty title", ErrInvalidSlot)
		}
		d.Title = answer
	case SlotPeriod:
		period, err := NormalizePeriod(answer, now)
		if err != nil {
			return err
		}
		d.Period = period
	case SlotDate:
		date, err := NormalizeDate(answer, now)
		if err != nil {
			return err
		}
		d.Date = &date
	case SlotTimeRange:
		start, end, err := NormalizeTimeRange(answer)
		if err != nil {
			return err
		}
		d.StartMin, d.EndMin, d.HasTimeRange = start, end, true
	case SlotTarget:
		if answer == "" {
			return fmt.Errorf("%w: empty reference", ErrInvalidSlot)
		}
		d.Target = Ref{Title: answer}
	case SlotValue:
		v, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", ErrInvalidSlot, answer)
		}
		d.Value = &v
	default:
		return fmt.Errorf("%w: slot %q", ErrInvalidSlot, slot)
	}
	return nil
}

// Build assembles the completed intent. All required slots must be resolved.
func (d Draft) Build() (Intent, error) {
	if missing := d.Missing(); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingSlot, missing[0])
	}

	switch d.Kind {
	case KindCreateTask:
		return CreateTask{
			Title:            d.Title,
			EstimatedMinutes: d.EstimatedMinutes,
			DueDate:          d.Date,
			ObjectiveRef:     d.ObjectiveRef,
			AreaID:           d.AreaID,
			Commit:           d.Commit,
		}, nil
	case KindUpdateTask:
		ut := UpdateTask{Target: d.Target, DueDate: d.Date}
		if d.Title != "" {
			title := d.Title
			ut.Title = &title
		}
		if d.EstimatedMinutes > 0 {
			est := d.EstimatedMinutes
			ut.EstimatedMinutes = &est
		}
		return ut, nil
	case KindCompleteTask:
		return CompleteTask{Target: d.Target, Milestone: d.Milestone}, nil
	case KindDeleteTask:
		return DeleteTask{Target: d.Target, Archive: d.Archive}, nil
	case KindCommitTask:
		return CommitTask{Target: d.Target, Uncommit: d.Uncommit}, nil
	case KindCreateObjective:
		return CreateObjective{Title: d.Title, Period: d.Period, AreaID: d.AreaID}, nil
	case KindUpdateKeyResult:
		return UpdateKeyResult{Target: d.Target, Value: *d.Value}, nil
	case KindProcessInbox:
		return ProcessInbox{Target: d.Target, DueDate: d.Date, ObjectiveRef: d.ObjectiveRef, Commit: d.Commit}, nil
	case KindCreateBlock:
		return CreateBlock{Title: d.Title, Date: d.Date.Format("2006-01-02"), StartMin: d.StartMin, EndMin: d.EndMin, TaskRef: d.Target}, nil
	case KindDeleteBlock:
		return DeleteBlock{Target: d.Target}, nil
	case KindPlanWeek:
		return PlanWeek{IncludeShouldDo: true}, nil
	case KindRebalanceWeek:
		return RebalanceWeek{}, nil
	case KindSetCapacity:
		if d.Capacity == nil {
			return nil, fmt.Errorf("%w: capacity", ErrMissingSlot)
		}
		return SetCapacity{Capacity: *d.Capacity}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownIntent, d.Kind)
}
