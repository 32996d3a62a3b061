package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// CalendarRepository implements repository.CalendarRepository for SQLite
type CalendarRepository struct {
	db *DB
}

// NewCalendarRepository creates a new CalendarRepository
func NewCalendarRepository(db *DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// Create inserts a calendar block.
func (r *CalendarRepository) Create(ctx context.Context, block *task.CalendarBlock) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO calendar_blocks (id, title, date, start_min, end_min, task_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		block.ID, block.Title, block.Date, block.StartMin, block.EndMin,
		nullString(block.TaskID), block.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create calendar block: %w", err)
	}
	return nil
}

// Delete removes a calendar block.
func (r *CalendarRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM calendar_blocks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete calendar block: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// ListByDate returns blocks on one date ordered by start time.
func (r *CalendarRepository) ListByDate(ctx context.Context, date string) ([]task.CalendarBlock, error) {
	return r.list(ctx,
		`SELECT id, title, date, start_min, end_min, task_id, created_at
		 FROM calendar_blocks WHERE date = ? ORDER BY start_min`, date)
}

// List returns every block ordered by date then start time.
func (r *CalendarRepository) List(ctx context.Context) ([]task.CalendarBlock, error) {
	return r.list(ctx,
		`SELECT id, title, date, start_min, end_min, task_id, created_at
		 FROM calendar_blocks ORDER BY date, start_min`)
}

func (r *CalendarRepository) list(ctx context.Context, query string, args ...any) ([]task.CalendarBlock, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list calendar blocks: %w", err)
	}
	defer rows.Close()

	var blocks []task.CalendarBlock
	for rows.Next() {
		var block task.CalendarBlock
		var taskID sql.NullString
		if err := rows.Scan(&block.ID, &block.Title, &block.Date, &block.StartMin, &block.EndMin, &taskID, &block.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan calendar block: %w", err)
		}
		block.TaskID = taskID.String
		blocks = append(blocks, block)
	}
	return blocks, rows.Err()
}
