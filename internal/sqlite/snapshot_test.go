package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/config"
	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/domain/task"
)

func TestSnapshotReader_ReadSnapshot(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()

	tasks := NewTaskRepository(db)
	objectives := NewObjectiveRepository(db)
	inbox := NewInboxRepository(db)
	calendar := NewCalendarRepository(db)
	settings := NewSettingsRepository(db, config.DefaultCapacity())

	require.NoError(t, objectives.Create(ctx, &objective.Objective{
		ID: "o1", Title: "Ship v2", Period: "2026-Q1", Status: objective.StatusActive,
	}))
	require.NoError(t, objectives.CreateKeyResult(ctx, &objective.KeyResult{
		ID: "kr1", ObjectiveID: "o1", Title: "Revenue", StartValue: 0, TargetValue: 100, CurrentValue: 40,
	}))
	require.NoError(t, tasks.Create(ctx, &task.Task{
		ID: "t1", Title: "Write report", Kind: task.KindSimple, Status: task.StatusActive, ObjectiveID: "o1",
	}))
	require.NoError(t, inbox.Create(ctx, &task.InboxItem{ID: "i1", Text: "Buy chair"}))
	require.NoError(t, inbox.Create(ctx, &task.InboxItem{ID: "i2", Text: "Old note", Processed: true}))
	require.NoError(t, calendar.Create(ctx, &task.CalendarBlock{
		ID: "b1", Title: "Standup", Date: "2026-03-03", StartMin: 570, EndMin: 630,
	}))

	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	reader := NewSnapshotReader(tasks, objectives, inbox, calendar, settings, func() time.Time { return now })

	snap, err := reader.ReadSnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Tasks, 1)
	require.Len(t, snap.Objectives, 1)
	require.Len(t, snap.KeyResults, 1)
	require.Len(t, snap.Blocks, 1)
	require.Equal(t, now, snap.ReadAt)

	// processed inbox items are not part of the working snapshot
	require.Len(t, snap.Inbox, 1)
	require.Equal(t, "i1", snap.Inbox[0].ID)

	// defaults apply until capacity is persisted
	require.Equal(t, config.DefaultCapacity(), snap.Capacity)

	custom := config.DefaultCapacity()
	custom.WorkHoursPerDay = 6
	require.NoError(t, settings.SetCapacity(ctx, custom))

	snap, err = reader.ReadSnapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, 6, snap.Capacity.WorkHoursPerDay)
}
