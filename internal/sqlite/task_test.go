package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

func TestTaskRepository_CRUD(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	due := time.Date(2026, 3, 6, 0, 0, 0, 0, time.UTC)
	created := task.Task{
		ID:               "t1",
		Title:            "Write report",
		Kind:             task.KindSimple,
		Status:           task.StatusActive,
		EstimatedMinutes: 90,
		CommittedWeek:    "2026-W10",
		DueDate:          &due,
		Priority:         task.PriorityHigh,
		ObjectiveID:      "",
		CreatedAt:        time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		ModifiedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(ctx, &created))

	got, err := repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "Write report", got.Title)
	require.Equal(t, task.KindSimple, got.Kind)
	require.Equal(t, 90, got.EstimatedMinutes)
	require.Equal(t, "2026-W10", got.CommittedWeek)
	require.NotNil(t, got.DueDate)
	require.True(t, got.DueDate.Equal(due))
	require.Empty(t, got.ObjectiveID)

	got.Title = "Publish report"
	got.Status = task.StatusDone
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, "t1")
	require.NoError(t, err)
	require.Equal(t, "Publish report", got.Title)
	require.Equal(t, task.StatusDone, got.Status)

	require.NoError(t, repo.Delete(ctx, "t1"))
	_, err = repo.Get(ctx, "t1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestTaskRepository_ProjectMilestones(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	project := task.Task{
		ID:     "p1",
		Title:  "Write book",
		Kind:   task.KindProject,
		Status: task.StatusActive,
		Milestones: []task.Milestone{
			{ID: "m1", Title: "Outline", EstimatedMinutes: 120, Order: 0},
			{ID: "m2", Title: "First draft", EstimatedMinutes: 600, Order: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, &project))

	got, err := repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Milestones, 2)
	require.Equal(t, "Outline", got.Milestones[0].Title)
	require.Equal(t, "First draft", got.Milestones[1].Title)

	// updating replaces the milestone set
	got.Milestones[0].Completed = true
	got.Milestones = append(got.Milestones, task.Milestone{ID: "m3", Title: "Revise", EstimatedMinutes: 300, Order: 2})
	require.NoError(t, repo.Update(ctx, got))

	got, err = repo.Get(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, got.Milestones, 3)
	require.True(t, got.Milestones[0].Completed)

	// deleting the project cascades to milestones
	require.NoError(t, repo.Delete(ctx, "p1"))
	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM milestones`).Scan(&count))
	require.Zero(t, count)
}

func TestTaskRepository_List(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Create(ctx, &task.Task{
			ID: id, Title: "Task " + id, Kind: task.KindSimple, Status: task.StatusActive,
		}))
	}

	tasks, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
}

func TestTaskRepository_UpdateMissing(t *testing.T) {
	db := NewTestDB(t)
	repo := NewTaskRepository(db)

	err := repo.Update(context.Background(), &task.Task{ID: "ghost", Kind: task.KindSimple, Status: task.StatusActive})
	require.ErrorIs(t, err, repository.ErrNotFound)
}
