package guardrail

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/preview"
	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// week 2026-W10, default capacity gives 1680 usable weekly minutes
func guardSnapshot(committedMinutes int) *repository.Snapshot {
	snap := &repository.Snapshot{
		Capacity: config.DefaultCapacity(),
		ReadAt:   time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
	}
	if committedMinutes > 0 {
		snap.Tasks = []task.Task{{
			ID: "t1", Title: "Existing load", Kind: task.KindSimple,
			Status: task.StatusActive, EstimatedMinutes: committedMinutes,
			CommittedWeek: "2026-W10",
		}}
	}
	return snap
}

func TestCheck_AllowsWithinCapacity(t *testing.T) {
	v := Check(guardSnapshot(1000), &preview.Preview{Impact: preview.Impact{MinutesDelta: 600}})
	require.True(t, v.Allowed)
	require.Empty(t, v.Reason)
}

func TestCheck_BlocksExceedingCapacity(t *testing.T) {
	v := Check(guardSnapshot(1600), &preview.Preview{Impact: preview.Impact{MinutesDelta: 100}})
	require.False(t, v.Allowed)
	require.Contains(t, v.Reason, "exceed")
}

func TestCheck_BlocksAddingToOverloadedWeek(t *testing.T) {
	v := Check(guardSnapshot(1800), &preview.Preview{Impact: preview.Impact{MinutesDelta: 30}})
	require.False(t, v.Allowed)
	require.Contains(t, v.Reason, "already over capacity")
}

func TestCheck_LoadReducingAlwaysPasses(t *testing.T) {
	// even on an overloaded week, removing load is allowed
	v := Check(guardSnapshot(1800), &preview.Preview{Impact: preview.Impact{MinutesDelta: -200}})
	require.True(t, v.Allowed)

	v = Check(guardSnapshot(1800), &preview.Preview{Impact: preview.Impact{MinutesDelta: 0}})
	require.True(t, v.Allowed)
}

func TestCheck_ExactFitAllowed(t *testing.T) {
	v := Check(guardSnapshot(1000), &preview.Preview{Impact: preview.Impact{MinutesDelta: 680}})
	require.True(t, v.Allowed)
}
