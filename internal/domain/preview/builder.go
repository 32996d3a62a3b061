package preview

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/capacity"
	"github.com/ledeberg/tiller/internal/domain/decision"
	"github.com/ledeberg/tiller/internal/domain/intent"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// Planner produces the weekly plan pack previews feed on. Satisfied by
// decision.Engine.
type Planner interface {
	GenerateWeeklyPlanPack(ctx context.Context, tasks []task.Task, cfg config.CapacityConfig) (*decision.PlanPack, error)
}

// Builder computes previews against one immutable snapshot. It is
// request-scoped: build one per snapshot read and discard it.
type Builder struct {
	snap    *repository.Snapshot
	planner Planner
	now     func() time.Time
	ctx     context.Context
}

// NewBuilder creates a preview builder over a snapshot. A nil clock uses
// wall time.
func NewBuilder(snap *repository.Snapshot, planner Planner, now func() time.Time) *Builder {
	if now == nil {
		now = time.Now
	}
	return &Builder{snap: snap, planner: planner, now: now}
}

// Build dispatches the intent to its preview method.
func (b *Builder) Build(ctx context.Context, in intent.Intent) (*Preview, error) {
	b.ctx = ctx
	return intent.Dispatch[*Preview](in, b)
}

func (b *Builder) newPreview(kind intent.Kind) *Preview {
	return &Preview{
		ID:        uuid.NewString(),
		Intent:    kind,
		CreatedAt: b.now(),
	}
}

// nonActionable wraps a lookup or validation failure into a preview the
// caller can surface without confirmation.
func (b *Builder) nonActionable(kind intent.Kind, summary string, candidates []string) *Preview {
	p := b.newPreview(kind)
	p.Summary = summary
	p.Candidates = candidates
	return p
}

func (b *Builder) noop(kind intent.Kind, summary string) *Preview {
	p := b.newPreview(kind)
	p.Summary = summary
	return p
}

func (b *Builder) actionable(p *Preview) *Preview {
	p.Actionable = true
	p.RequiresConfirmation = true
	return p
}

func (b *Builder) week() string { return task.WeekToken(b.now()) }

func (b *Builder) CreateTask(in intent.CreateTask) (*Preview, error) {
	p := b.newPreview(in.Kind())

	t := task.Task{
		ID:               uuid.NewString(),
		Title:            in.Title,
		Kind:             task.KindSimple,
		Status:           task.StatusActive,
		EstimatedMinutes: in.EstimatedMinutes,
		DueDate:          in.DueDate,
		KeyResultID:      in.KeyResultID,
		AreaID:           in.AreaID,
		CreatedAt:        b.now(),
		ModifiedAt:       b.now(),
	}

	if !in.ObjectiveRef.Empty() {
		res := b.resolveObjective(in.ObjectiveRef)
		if res.failed() {
			return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
		}
		t.ObjectiveID = res.match.ID
	}

	minutes := 0
	if in.Commit {
		t.CommittedWeek = b.week()
		minutes = t.CommittedMinutes(b.snap.Capacity.DefaultTaskMinutes)
	}

	p.Summary = fmt.Sprintf("Create task %q", t.Title)
	if in.Commit {
		p.Summary += " and commit it to this week"
	}
	p.Reason = "You asked to add this task."
	p.Changes = []Change{{Op: OpCreate, Entity: "task", ID: t.ID, Summary: fmt.Sprintf("new task %q", t.Title)}}
	p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
	p.Payload.CreateTasks = []task.Task{t}
	return b.actionable(p), nil
}

func (b *Builder) UpdateTask(in intent.UpdateTask) (*Preview, error) {
	res := b.resolveTask(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}

	updated := *res.match
	var changes []Change
	if in.Title != nil && *in.Title != updated.Title {
		changes = append(changes, Change{Op: OpUpdate, Entity: "task", ID: updated.ID,
			Summary: fmt.Sprintf("rename %q to %q", updated.Title, *in.Title)})
		updated.Title = *in.Title
	}
	if in.EstimatedMinutes != nil && *in.EstimatedMinutes != updated.EstimatedMinutes {
		changes = append(changes, Change{Op: OpUpdate, Entity: "task", ID: updated.ID,
			Summary: fmt.Sprintf("estimate %d min (was %d)", *in.EstimatedMinutes, updated.EstimatedMinutes)})
		updated.EstimatedMinutes = *in.EstimatedMinutes
	}
	if in.DueDate != nil {
		changes = append(changes, Change{Op: OpUpdate, Entity: "task", ID: updated.ID,
			Summary: fmt.Sprintf("due %s", in.DueDate.Format("2006-01-02"))})
		updated.DueDate = in.DueDate
	}

	if len(changes) == 0 {
		return b.noop(in.Kind(), fmt.Sprintf("Nothing to change on %q.", res.match.Title)), nil
	}

	updated.ModifiedAt = b.now()
	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Update task %q", res.match.Title)
	p.Changes = changes
	p.Impact = Impact{TasksAffected: 1}
	p.Payload.UpdateTasks = []task.Task{updated}
	return b.actionable(p), nil
}

func (b *Builder) CompleteTask(in intent.CompleteTask) (*Preview, error) {
	res := b.resolveTask(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}
	t := *res.match

	if in.Milestone != "" && t.Kind == task.KindProject {
		return b.completeMilestone(in, t)
	}

	if t.Status == task.StatusDone {
		return b.noop(in.Kind(), fmt.Sprintf("%q is already done.", t.Title)), nil
	}

	minutes := 0
	if t.CommittedThisWeek(b.week()) {
		minutes = -t.CommittedMinutes(b.snap.Capacity.DefaultTaskMinutes)
	}

	t.Status = task.StatusDone
	t.ModifiedAt = b.now()

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Mark %q as done", t.Title)
	p.Changes = []Change{{Op: OpUpdate, Entity: "task", ID: t.ID, Summary: "status active -> done"}}
	p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
	p.Payload.UpdateTasks = []task.Task{t}
	return b.actionable(p), nil
}

func (b *Builder) completeMilestone(in intent.CompleteTask, t task.Task) (*Preview, error) {
	needle := strings.ToLower(in.Milestone)
	idx := -1
	for i, m := range t.Milestones {
		if strings.Contains(strings.ToLower(m.Title), needle) {
			if idx >= 0 {
				return b.nonActionable(in.Kind(),
					fmt.Sprintf("%q matches more than one milestone on %q; tell me which one.", in.Milestone, t.Title), nil), nil
			}
			idx = i
		}
	}
	if idx < 0 {
		return b.nonActionable(in.Kind(),
			fmt.Sprintf("No milestone matching %q on %q.", in.Milestone, t.Title), nil), nil
	}
	if t.Milestones[idx].Completed {
		return b.noop(in.Kind(), fmt.Sprintf("Milestone %q is already complete.", t.Milestones[idx].Title)), nil
	}

	minutes := 0
	if t.CommittedThisWeek(b.week()) && t.Milestones[idx].Committed {
		minutes = -t.Milestones[idx].EstimatedMinutes
	}

	milestones := make([]task.Milestone, len(t.Milestones))
	copy(milestones, t.Milestones)
	milestones[idx].Completed = true
	t.Milestones = milestones
	t.ModifiedAt = b.now()

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Complete milestone %q on %q", t.Milestones[idx].Title, t.Title)
	p.Changes = []Change{{Op: OpUpdate, Entity: "milestone", ID: t.Milestones[idx].ID,
		Summary: fmt.Sprintf("milestone %q complete", t.Milestones[idx].Title)}}
	p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
	p.Payload.UpdateTasks = []task.Task{t}
	return b.actionable(p), nil
}

func (b *Builder) DeleteTask(in intent.DeleteTask) (*Preview, error) {
	res := b.resolveTask(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}
	t := *res.match

	minutes := 0
	if t.CommittedThisWeek(b.week()) {
		minutes = -t.CommittedMinutes(b.snap.Capacity.DefaultTaskMinutes)
	}

	p := b.newPreview(in.Kind())
	p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
	if in.Archive {
		t.Status = task.StatusArchived
		t.ModifiedAt = b.now()
		p.Summary = fmt.Sprintf("Archive task %q", t.Title)
		p.Changes = []Change{{Op: OpUpdate, Entity: "task", ID: t.ID, Summary: "archive"}}
		p.Payload.UpdateTasks = []task.Task{t}
	} else {
		p.Summary = fmt.Sprintf("Delete task %q", t.Title)
		p.Changes = []Change{{Op: OpDelete, Entity: "task", ID: t.ID, Summary: fmt.Sprintf("delete %q", t.Title)}}
		p.Payload.DeleteTaskIDs = []string{t.ID}
	}
	return b.actionable(p), nil
}

func (b *Builder) CommitTask(in intent.CommitTask) (*Preview, error) {
	res := b.resolveTask(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}
	t := *res.match
	week := b.week()

	if in.Uncommit {
		if !t.CommittedThisWeek(week) {
			return b.noop(in.Kind(), fmt.Sprintf("%q is not committed to this week.", t.Title)), nil
		}
		minutes := -t.CommittedMinutes(b.snap.Capacity.DefaultTaskMinutes)
		t.CommittedWeek = ""
		t.ModifiedAt = b.now()

		p := b.newPreview(in.Kind())
		p.Summary = fmt.Sprintf("Remove %q from this week", t.Title)
		p.Changes = []Change{{Op: OpUpdate, Entity: "task", ID: t.ID, Summary: "uncommit from " + week}}
		p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
		p.Payload.UpdateTasks = []task.Task{t}
		return b.actionable(p), nil
	}

	if t.CommittedThisWeek(week) {
		return b.noop(in.Kind(), fmt.Sprintf("%q is already committed to this week.", t.Title)), nil
	}

	t.CommittedWeek = week
	if t.Kind == task.KindProject {
		milestones := make([]task.Milestone, len(t.Milestones))
		copy(milestones, t.Milestones)
		for i := range milestones {
			if !milestones[i].Completed {
				milestones[i].Committed = true
			}
		}
		t.Milestones = milestones
	}
	t.ModifiedAt = b.now()
	minutes := t.CommittedMinutes(b.snap.Capacity.DefaultTaskMinutes)

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Commit %q to this week (+%d min)", t.Title, minutes)
	p.Changes = []Change{{Op: OpUpdate, Entity: "task", ID: t.ID, Summary: "commit to " + week}}
	p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
	p.Payload.UpdateTasks = []task.Task{t}
	return b.actionable(p), nil
}

func (b *Builder) CreateObjective(in intent.CreateObjective) (*Preview, error) {
	if err := objective.ValidatePeriod(in.Period); err != nil {
		return b.nonActionable(in.Kind(), fmt.Sprintf("Period %q is not valid: %v.", in.Period, err), nil), nil
	}

	obj := objective.Objective{
		ID:         uuid.NewString(),
		Title:      in.Title,
		Period:     in.Period,
		Status:     objective.StatusActive,
		AreaID:     in.AreaID,
		CreatedAt:  b.now(),
		ModifiedAt: b.now(),
	}

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Create objective %q for %s", obj.Title, obj.Period)
	p.Changes = []Change{{Op: OpCreate, Entity: "objective", ID: obj.ID, Summary: fmt.Sprintf("new objective %q", obj.Title)}}
	p.Payload.CreateObjectives = []objective.Objective{obj}
	return b.actionable(p), nil
}

func (b *Builder) UpdateKeyResult(in intent.UpdateKeyResult) (*Preview, error) {
	res := b.resolveKeyResult(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}
	kr := *res.match

	if kr.CurrentValue == in.Value {
		return b.noop(in.Kind(), fmt.Sprintf("%q is already at %.1f.", kr.Title, in.Value)), nil
	}

	old := kr.CurrentValue
	kr.CurrentValue = in.Value
	kr.UpdatedAt = b.now()

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Update %q from %.1f to %.1f (%.0f%% complete)", kr.Title, old, in.Value, kr.Progress())
	p.Changes = []Change{{Op: OpUpdate, Entity: "key_result", ID: kr.ID,
		Summary: fmt.Sprintf("current value %.1f -> %.1f", old, in.Value)}}
	p.Payload.UpdateKeyResults = []objective.KeyResult{kr}
	return b.actionable(p), nil
}

func (b *Builder) ProcessInbox(in intent.ProcessInbox) (*Preview, error) {
	res := b.resolveInboxItem(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}
	item := *res.match

	t := task.Task{
		ID:         uuid.NewString(),
		Title:      item.Text,
		Kind:       task.KindSimple,
		Status:     task.StatusActive,
		DueDate:    in.DueDate,
		CreatedAt:  b.now(),
		ModifiedAt: b.now(),
	}

	if !in.ObjectiveRef.Empty() {
		ores := b.resolveObjective(in.ObjectiveRef)
		if ores.failed() {
			return b.nonActionable(in.Kind(), ores.failure, ores.candidates), nil
		}
		t.ObjectiveID = ores.match.ID
	}

	minutes := 0
	if in.Commit {
		t.CommittedWeek = b.week()
		minutes = t.CommittedMinutes(b.snap.Capacity.DefaultTaskMinutes)
	}

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Turn inbox item %q into a task", item.Text)
	p.Changes = []Change{
		{Op: OpCreate, Entity: "task", ID: t.ID, Summary: fmt.Sprintf("new task %q", t.Title)},
		{Op: OpUpdate, Entity: "inbox_item", ID: item.ID, Summary: "mark processed"},
	}
	p.Impact = Impact{TasksAffected: 1, MinutesDelta: minutes}
	p.Payload.CreateTasks = []task.Task{t}
	p.Payload.MarkInboxProcessed = []string{item.ID}
	return b.actionable(p), nil
}

func (b *Builder) CreateBlock(in intent.CreateBlock) (*Preview, error) {
	block := task.CalendarBlock{
		ID:        uuid.NewString(),
		Title:     in.Title,
		Date:      in.Date,
		StartMin:  in.StartMin,
		EndMin:    in.EndMin,
		CreatedAt: b.now(),
	}

	if !in.TaskRef.Empty() {
		res := b.resolveTask(in.TaskRef)
		if res.failed() {
			return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
		}
		block.TaskID = res.match.ID
	}

	if reason := b.validateBlock(block); reason != "" {
		return b.nonActionable(in.Kind(), reason, nil), nil
	}

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Block %s %s for %q", block.Date, formatRange(block.StartMin, block.EndMin), block.Title)
	p.Changes = []Change{{Op: OpCreate, Entity: "calendar_block", ID: block.ID, Summary: p.Summary}}
	p.Impact = Impact{BlocksAffected: 1}
	p.Payload.CreateBlocks = []task.CalendarBlock{block}
	return b.actionable(p), nil
}

// validateBlock enforces ordering, working-hours window, and no overlap.
func (b *Builder) validateBlock(block task.CalendarBlock) string {
	if block.EndMin <= block.StartMin {
		return "The block's end time must be after its start time."
	}
	dayStart := b.snap.Capacity.DayStartHour * 60
	dayEnd := b.snap.Capacity.DayEndHour * 60
	if block.StartMin < dayStart || block.EndMin > dayEnd {
		return fmt.Sprintf("Blocks must fall within working hours (%s).", formatRange(dayStart, dayEnd))
	}
	for _, existing := range b.snap.Blocks {
		if block.Overlaps(existing) {
			return fmt.Sprintf("That overlaps %q (%s %s).", existing.Title, existing.Date, formatRange(existing.StartMin, existing.EndMin))
		}
	}
	return ""
}

func (b *Builder) DeleteBlock(in intent.DeleteBlock) (*Preview, error) {
	res := b.resolveBlock(in.Target)
	if res.failed() {
		return b.nonActionable(in.Kind(), res.failure, res.candidates), nil
	}
	block := *res.match

	p := b.newPreview(in.Kind())
	p.Summary = fmt.Sprintf("Delete block %q on %s", block.Title, block.Date)
	p.Changes = []Change{{Op: OpDelete, Entity: "calendar_block", ID: block.ID, Summary: p.Summary}}
	p.Impact = Impact{BlocksAffected: 1}
	p.Payload.DeleteBlockIDs = []string{block.ID}
	return b.actionable(p), nil
}

func (b *Builder) PlanWeek(in intent.PlanWeek) (*Preview, error) {
	pack, err := b.planner.GenerateWeeklyPlanPack(b.ctx, b.snap.Tasks, b.snap.Capacity)
	if err != nil {
		return nil, fmt.Errorf("planning week: %w", err)
	}

	picks := append([]decision.Candidate{}, pack.MustDo...)
	if in.IncludeShouldDo {
		picks = append(picks, pack.ShouldDo...)
	}
	if len(picks) == 0 {
		return b.noop(in.Kind(), "Nothing new fits this week; the plan is already full or empty."), nil
	}

	p := b.newPreview(in.Kind())
	minutes := 0
	week := pack.Week
	for _, pick := range picks {
		t := pick.Task
		t.CommittedWeek = week
		if t.Kind == task.KindProject {
			milestones := make([]task.Milestone, len(t.Milestones))
			copy(milestones, t.Milestones)
			for i := range milestones {
				if !milestones[i].Completed {
					milestones[i].Committed = true
				}
			}
			t.Milestones = milestones
		}
		t.ModifiedAt = b.now()
		p.Payload.UpdateTasks = append(p.Payload.UpdateTasks, t)
		p.Changes = append(p.Changes, Change{Op: OpUpdate, Entity: "task", ID: t.ID,
			Summary: fmt.Sprintf("commit %q (+%d min, score %.0f)", t.Title, pick.EstimatedMinutes, pick.Score.Total)})
		minutes += pick.EstimatedMinutes
	}

	p.Summary = fmt.Sprintf("Commit %d tasks (+%d min) to week %s", len(picks), minutes, week)
	p.Reason = "Ranked by deadline urgency, key-result risk, capacity fit and strategic linkage."
	if pack.Degraded != "" {
		p.Reason += " (" + pack.Degraded + ")"
	}
	p.Impact = Impact{TasksAffected: len(picks), MinutesDelta: minutes}
	return b.actionable(p), nil
}

func (b *Builder) RebalanceWeek(in intent.RebalanceWeek) (*Preview, error) {
	week := b.week()
	cfg := b.snap.Capacity
	weekly := capacity.Weekly(cfg)
	load := capacity.WeeklyLoad(b.snap.Tasks, week, cfg.DefaultTaskMinutes)
	overload := capacity.DetectOverload(load, weekly.UsableMinutes)

	if !overload.IsOverloaded {
		return b.noop(in.Kind(), fmt.Sprintf("This week is not overloaded (%d of %d usable minutes).", load, weekly.UsableMinutes)), nil
	}

	// Shed the largest committed tasks without due dates first, then by size.
	type victim struct {
		t       task.Task
		minutes int
		hasDue  bool
	}
	var victims []victim
	for _, t := range b.snap.Tasks {
		if t.CommittedThisWeek(week) {
			victims = append(victims, victim{t: t, minutes: t.CommittedMinutes(cfg.DefaultTaskMinutes), hasDue: t.DueDate != nil})
		}
	}
	sort.Slice(victims, func(i, j int) bool {
		if victims[i].hasDue != victims[j].hasDue {
			return !victims[i].hasDue // undated commitments go first
		}
		if victims[i].minutes != victims[j].minutes {
			return victims[i].minutes > victims[j].minutes
		}
		return victims[i].t.ID < victims[j].t.ID
	})

	p := b.newPreview(in.Kind())
	shed := 0
	for _, v := range victims {
		if shed >= overload.ExcessMin {
			break
		}
		t := v.t
		t.CommittedWeek = ""
		t.ModifiedAt = b.now()
		p.Payload.UpdateTasks = append(p.Payload.UpdateTasks, t)
		p.Changes = append(p.Changes, Change{Op: OpUpdate, Entity: "task", ID: t.ID,
			Summary: fmt.Sprintf("move %q out of this week (-%d min)", t.Title, v.minutes)})
		shed += v.minutes
	}

	if len(p.Payload.UpdateTasks) == 0 {
		return b.noop(in.Kind(), "The week is overloaded but nothing can be moved."), nil
	}

	p.Summary = fmt.Sprintf("Move %d tasks (-%d min) out of week %s to clear the %d-minute overload",
		len(p.Payload.UpdateTasks), shed, week, overload.ExcessMin)
	p.Reason = "Deferring the largest undated commitments first."
	p.Impact = Impact{TasksAffected: len(p.Payload.UpdateTasks), MinutesDelta: -shed}
	return b.actionable(p), nil
}

func (b *Builder) SetCapacity(in intent.SetCapacity) (*Preview, error) {
	next := in.Capacity.Clamp()
	if next == b.snap.Capacity {
		return b.noop(in.Kind(), "Capacity settings are already set to those values."), nil
	}

	p := b.newPreview(in.Kind())
	weekly := capacity.Weekly(next)
	p.Summary = fmt.Sprintf("Update capacity settings (weekly usable becomes %d min)", weekly.UsableMinutes)
	p.Changes = []Change{{Op: OpUpdate, Entity: "settings", Summary: "capacity configuration"}}
	p.Payload.SetCapacity = &next
	return b.actionable(p), nil
}

func formatRange(startMin, endMin int) string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", startMin/60, startMin%60, endMin/60, endMin%60)
}
