package capacity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/task"
)

func TestDaily_Defaults(t *testing.T) {
	cap := Daily(config.DefaultCapacity())
	require.Equal(t, 480, cap.TotalMinutes)
	require.Equal(t, 420, cap.AvailableMinutes)
	require.Equal(t, 336, cap.UsableMinutes)
}

func TestWeekly_Defaults(t *testing.T) {
	cap := Weekly(config.DefaultCapacity())
	require.Equal(t, 2400, cap.TotalMinutes)
	require.Equal(t, 2100, cap.AvailableMinutes)
	require.Equal(t, 1680, cap.UsableMinutes)
}

func TestCapacity_Ordering(t *testing.T) {
	// usable <= available <= total, all non-negative, across clamped configs
	configs := []config.CapacityConfig{
		{WorkHoursPerDay: 1, BufferPercent: 50, BreakMinutesPerDay: 480, WorkDaysPerWeek: 1},
		{WorkHoursPerDay: 24, BufferPercent: 0, BreakMinutesPerDay: 0, WorkDaysPerWeek: 7},
		{WorkHoursPerDay: 6, BufferPercent: 33, BreakMinutesPerDay: 45, WorkDaysPerWeek: 4},
	}
	for _, cfg := range configs {
		for _, cap := range []Capacity{Daily(cfg.Clamp()), Weekly(cfg.Clamp())} {
			require.GreaterOrEqual(t, cap.UsableMinutes, 0)
			require.LessOrEqual(t, cap.UsableMinutes, cap.AvailableMinutes)
			require.LessOrEqual(t, cap.AvailableMinutes, cap.TotalMinutes)
		}
	}
}

func TestWeeklyLoad(t *testing.T) {
	week := "2026-W10"
	tasks := []task.Task{
		{ID: "t1", Kind: task.KindSimple, Status: task.StatusActive, CommittedWeek: week},
		{ID: "t2", Kind: task.KindSimple, Status: task.StatusActive, CommittedWeek: week, EstimatedMinutes: 90},
		{ID: "t3", Kind: task.KindSimple, Status: task.StatusDone, CommittedWeek: week},
		{ID: "t4", Kind: task.KindSimple, Status: task.StatusActive, CommittedWeek: "2026-W11"},
		{ID: "p1", Kind: task.KindProject, Status: task.StatusActive, CommittedWeek: week, Milestones: []task.Milestone{
			{ID: "m1", EstimatedMinutes: 120, Committed: true},
			{ID: "m2", EstimatedMinutes: 240, Committed: true, Completed: true},
			{ID: "m3", EstimatedMinutes: 300},
		}},
	}

	// t1 flat 60 + t2 override 90 + p1 committed incomplete milestone 120
	require.Equal(t, 270, WeeklyLoad(tasks, week, 60))
}

func TestDetectOverload(t *testing.T) {
	o := DetectOverload(1800, 1680)
	require.True(t, o.IsOverloaded)
	require.Equal(t, 120, o.ExcessMin)
	require.Equal(t, 107, o.Percentage)

	o = DetectOverload(1680, 1680)
	require.False(t, o.IsOverloaded)
	require.Equal(t, 0, o.ExcessMin)
	require.Equal(t, 100, o.Percentage)

	o = DetectOverload(0, 1680)
	require.False(t, o.IsOverloaded)
	require.Equal(t, 0, o.Percentage)
}

func TestDetectOverload_ExcessAlwaysNonNegative(t *testing.T) {
	for _, committed := range []int{0, 100, 1680, 5000} {
		o := DetectOverload(committed, 1680)
		require.Equal(t, o.IsOverloaded, committed > 1680)
		if committed > 1680 {
			require.Equal(t, committed-1680, o.ExcessMin)
		} else {
			require.Zero(t, o.ExcessMin)
		}
	}
}

func TestWeekToken(t *testing.T) {
	require.Equal(t, "2026-W09", task.WeekToken(time.Date(2026, 2, 24, 0, 0, 0, 0, time.UTC)))
}
