package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledeberg/tiller/internal/repository"
)

// ActionRepository implements repository.ActionRepository for SQLite
type ActionRepository struct {
	db *DB
}

// NewActionRepository creates a new ActionRepository
func NewActionRepository(db *DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// Create inserts a pending action.
func (r *ActionRepository) Create(ctx context.Context, rec *repository.PendingActionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO pending_actions (id, session_id, status, preview_json, created_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Status, string(rec.PreviewJSON), rec.CreatedAt, rec.ExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to create pending action: %w", err)
	}
	return nil
}

// Get retrieves a pending action by ID.
func (r *ActionRepository) Get(ctx context.Context, id string) (*repository.PendingActionRecord, error) {
	var rec repository.PendingActionRecord
	var previewJSON string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, session_id, status, preview_json, created_at, expires_at
		 FROM pending_actions WHERE id = ?`, id).
		Scan(&rec.ID, &rec.SessionID, &rec.Status, &previewJSON, &rec.CreatedAt, &rec.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending action: %w", err)
	}
	rec.PreviewJSON = []byte(previewJSON)
	return &rec, nil
}

// TransitionStatus atomically moves the action from one status to another.
// The WHERE clause carries the expected status, so of any number of
// concurrent transitions exactly one sees an affected row.
func (r *ActionRepository) TransitionStatus(ctx context.Context, id string, from, to repository.ActionStatus) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE pending_actions SET status = ? WHERE id = ? AND status = ?`,
		to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to transition action status: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check transition result: %w", err)
	}
	return rows == 1, nil
}
