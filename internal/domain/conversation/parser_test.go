package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/domain/intent"
)

var parseNow = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC) // Monday

func parse(t *testing.T, text string) *intent.Draft {
	t.Helper()
	d, ok, err := NewKeywordParser().Parse(context.Background(), text, parseNow)
	require.NoError(t, err)
	require.True(t, ok, "expected %q to parse", text)
	return d
}

func TestParse_PlanAndRebalance(t *testing.T) {
	require.Equal(t, intent.KindPlanWeek, parse(t, "plan my week").Kind)
	require.Equal(t, intent.KindPlanWeek, parse(t, "planifica mi semana").Kind)
	require.Equal(t, intent.KindRebalanceWeek, parse(t, "rebalance my week").Kind)
}

func TestParse_CreateTask(t *testing.T) {
	d := parse(t, "add task write blog post 90 min this week")
	require.Equal(t, intent.KindCreateTask, d.Kind)
	require.Equal(t, "write blog post", d.Title)
	require.Equal(t, 90, d.EstimatedMinutes)
	require.True(t, d.Commit)

	d = parse(t, "add task call mom due friday")
	require.Equal(t, "call mom", d.Title)
	require.NotNil(t, d.Date)
	require.Equal(t, time.Friday, d.Date.Weekday())
	require.False(t, d.Commit)

	d = parse(t, "new task review budget 2 hours")
	require.Equal(t, 120, d.EstimatedMinutes)
}

func TestParse_TaskLifecycle(t *testing.T) {
	d := parse(t, "complete write blog post")
	require.Equal(t, intent.KindCompleteTask, d.Kind)
	require.Equal(t, "write blog post", d.Target.Title)

	d = parse(t, "complete milestone draft outline on write book")
	require.Equal(t, intent.KindCompleteTask, d.Kind)
	require.Equal(t, "write book", d.Target.Title)
	require.Equal(t, "draft outline", d.Milestone)

	d = parse(t, "commit deep work to this week")
	require.Equal(t, intent.KindCommitTask, d.Kind)
	require.Equal(t, "deep work", d.Target.Title)
	require.False(t, d.Uncommit)

	d = parse(t, "move deep work out of this week")
	require.Equal(t, intent.KindCommitTask, d.Kind)
	require.True(t, d.Uncommit)

	d = parse(t, "archive task old chore")
	require.Equal(t, intent.KindDeleteTask, d.Kind)
	require.True(t, d.Archive)

	d = parse(t, "rename write blog post to publish blog post")
	require.Equal(t, intent.KindUpdateTask, d.Kind)
	require.Equal(t, "write blog post", d.Target.Title)
	require.Equal(t, "publish blog post", d.Title)
}

func TestParse_Objective(t *testing.T) {
	d := parse(t, "new objective learn spanish for q2 2026")
	require.Equal(t, intent.KindCreateObjective, d.Kind)
	require.Equal(t, "learn spanish", d.Title)
	require.Equal(t, "2026-Q2", d.Period)

	// no period given: the draft is incomplete and will be slot-filled
	d = parse(t, "new objective ship the redesign")
	require.Equal(t, "ship the redesign", d.Title)
	require.Equal(t, []intent.Slot{intent.SlotPeriod}, d.Missing())
}

func TestParse_KeyResult(t *testing.T) {
	d := parse(t, "update key result revenue to 120")
	require.Equal(t, intent.KindUpdateKeyResult, d.Kind)
	require.Equal(t, "revenue", d.Target.Title)
	require.NotNil(t, d.Value)
	require.Equal(t, 120.0, *d.Value)
}

func TestParse_CalendarBlock(t *testing.T) {
	d := parse(t, "block tomorrow 09:00-10:30 for deep work")
	require.Equal(t, intent.KindCreateBlock, d.Kind)
	require.Equal(t, "deep work", d.Title)
	require.True(t, d.HasTimeRange)
	require.Equal(t, 540, d.StartMin)
	require.Equal(t, 630, d.EndMin)
	require.NotNil(t, d.Date)
	require.Equal(t, time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC), *d.Date)
	require.Empty(t, d.Missing())
}

func TestParse_Inbox(t *testing.T) {
	d := parse(t, "process inbox item buy a new chair")
	require.Equal(t, intent.KindProcessInbox, d.Kind)
	require.Equal(t, "buy a new chair", d.Target.Title)
}

func TestParse_Capacity(t *testing.T) {
	d := parse(t, "set my work hours to 6")
	require.Equal(t, intent.KindSetCapacity, d.Kind)
	require.NotNil(t, d.Capacity)
	require.Equal(t, 6, d.Capacity.WorkHoursPerDay)

	d = parse(t, "set capacity buffer to 30%")
	require.Equal(t, 30, d.Capacity.BufferPercent)
}

func TestParse_Unrecognized(t *testing.T) {
	_, ok, err := NewKeywordParser().Parse(context.Background(), "how is the weather", parseNow)
	require.NoError(t, err)
	require.False(t, ok)
}
