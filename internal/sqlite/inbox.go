package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// InboxRepository implements repository.InboxRepository for SQLite
type InboxRepository struct {
	db *DB
}

// NewInboxRepository creates a new InboxRepository
func NewInboxRepository(db *DB) *InboxRepository {
	return &InboxRepository{db: db}
}

// Create inserts an inbox item.
func (r *InboxRepository) Create(ctx context.Context, item *task.InboxItem) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO inbox_items (id, text, processed, created_at) VALUES (?, ?, ?, ?)`,
		item.ID, item.Text, item.Processed, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create inbox item: %w", err)
	}
	return nil
}

// Get retrieves an inbox item by ID.
func (r *InboxRepository) Get(ctx context.Context, id string) (*task.InboxItem, error) {
	var item task.InboxItem
	err := r.db.QueryRowContext(ctx,
		`SELECT id, text, processed, created_at FROM inbox_items WHERE id = ?`, id).
		Scan(&item.ID, &item.Text, &item.Processed, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get inbox item: %w", err)
	}
	return &item, nil
}

// List returns inbox items, unprocessed only unless includeProcessed is set.
func (r *InboxRepository) List(ctx context.Context, includeProcessed bool) ([]task.InboxItem, error) {
	query := `SELECT id, text, processed, created_at FROM inbox_items`
	if !includeProcessed {
		query += ` WHERE processed = 0`
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list inbox items: %w", err)
	}
	defer rows.Close()

	var items []task.InboxItem
	for rows.Next() {
		var item task.InboxItem
		if err := rows.Scan(&item.ID, &item.Text, &item.Processed, &item.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inbox item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// MarkProcessed flags an item as triaged.
func (r *InboxRepository) MarkProcessed(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE inbox_items SET processed = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark inbox item processed: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}
