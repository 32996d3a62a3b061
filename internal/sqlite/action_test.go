package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledeberg/tiller/internal/repository"
)

func createPendingAction(t *testing.T, repo *ActionRepository, id string) {
	t.Helper()
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.Create(context.Background(), &repository.PendingActionRecord{
		ID:          id,
		SessionID:   "s1",
		Status:      repository.ActionPending,
		PreviewJSON: []byte(`{"id":"` + id + `"}`),
		CreatedAt:   now,
		ExpiresAt:   now.Add(5 * time.Minute),
	}))
}

func TestActionRepository_CreateAndGet(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActionRepository(db)
	createPendingAction(t, repo, "a1")

	rec, err := repo.Get(context.Background(), "a1")
	require.NoError(t, err)
	require.Equal(t, "s1", rec.SessionID)
	require.Equal(t, repository.ActionPending, rec.Status)
	require.JSONEq(t, `{"id":"a1"}`, string(rec.PreviewJSON))
	require.True(t, rec.ExpiresAt.After(rec.CreatedAt))

	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestActionRepository_TransitionStatus(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActionRepository(db)
	ctx := context.Background()
	createPendingAction(t, repo, "a1")

	ok, err := repo.TransitionStatus(ctx, "a1", repository.ActionPending, repository.ActionConfirmed)
	require.NoError(t, err)
	require.True(t, ok)

	// the same transition again loses the compare-and-set
	ok, err = repo.TransitionStatus(ctx, "a1", repository.ActionPending, repository.ActionConfirmed)
	require.NoError(t, err)
	require.False(t, ok)

	// and so does any transition expecting the old status
	ok, err = repo.TransitionStatus(ctx, "a1", repository.ActionPending, repository.ActionCancelled)
	require.NoError(t, err)
	require.False(t, ok)

	rec, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, repository.ActionConfirmed, rec.Status)
}

func TestActionRepository_TransitionMissing(t *testing.T) {
	db := NewTestDB(t)
	repo := NewActionRepository(db)

	ok, err := repo.TransitionStatus(context.Background(), "ghost", repository.ActionPending, repository.ActionExpired)
	require.NoError(t, err)
	require.False(t, ok)
}
