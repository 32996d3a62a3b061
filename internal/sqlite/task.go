package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledeberg/tiller/internal/domain/task"
	"github.com/ledeberg/tiller/internal/repository"
)

// TaskRepository implements repository.TaskRepository for SQLite
type TaskRepository struct {
	db *DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a task and its milestones.
func (r *TaskRepository) Create(ctx context.Context, t *task.Task) error {
	query := `
		INSERT INTO tasks (
			id, title, kind, status, estimated_minutes, committed_week,
			due_date, priority, objective_id, key_result_id, area_id,
			created_at, modified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Kind,
		t.Status,
		t.EstimatedMinutes,
		t.CommittedWeek,
		nullTime(t.DueDate),
		t.Priority,
		nullString(t.ObjectiveID),
		nullString(t.KeyResultID),
		nullString(t.AreaID),
		t.CreatedAt,
		t.ModifiedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}

	return r.replaceMilestones(ctx, t.ID, t.Milestones)
}

// Get retrieves a task by ID, milestones included.
func (r *TaskRepository) Get(ctx context.Context, id string) (*task.Task, error) {
	query := `
		SELECT
			id, title, kind, status, estimated_minutes, committed_week,
			due_date, priority, objective_id, key_result_id, area_id,
			created_at, modified_at
		FROM tasks
		WHERE id = ?
	`
	t, err := scanTask(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	milestones, err := r.loadMilestones(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Milestones = milestones
	return t, nil
}

// Update rewrites the task row and replaces its milestones.
func (r *TaskRepository) Update(ctx context.Context, t *task.Task) error {
	query := `
		UPDATE tasks
		SET title = ?, kind = ?, status = ?, estimated_minutes = ?,
		    committed_week = ?, due_date = ?, priority = ?, objective_id = ?,
		    key_result_id = ?, area_id = ?, modified_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		t.Title,
		t.Kind,
		t.Status,
		t.EstimatedMinutes,
		t.CommittedWeek,
		nullTime(t.DueDate),
		t.Priority,
		nullString(t.ObjectiveID),
		nullString(t.KeyResultID),
		nullString(t.AreaID),
		t.ModifiedAt,
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return r.replaceMilestones(ctx, t.ID, t.Milestones)
}

// Delete removes a task; milestones cascade.
func (r *TaskRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
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

// List returns all tasks with their milestones.
func (r *TaskRepository) List(ctx context.Context) ([]task.Task, error) {
	query := `
		SELECT
			id, title, kind, status, estimated_minutes, committed_week,
			due_date, priority, objective_id, key_result_id, area_id,
			created_at, modified_at
		FROM tasks
		ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}

	milestones, err := r.loadAllMilestones(ctx)
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		tasks[i].Milestones = milestones[tasks[i].ID]
	}
	return tasks, nil
}

func (r *TaskRepository) replaceMilestones(ctx context.Context, taskID string, milestones []task.Milestone) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM milestones WHERE task_id = ?`, taskID); err != nil {
		return fmt.Errorf("failed to clear milestones: %w", err)
	}
	for _, m := range milestones {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO milestones (id, task_id, title, estimated_minutes, committed, completed, position)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, taskID, m.Title, m.EstimatedMinutes, m.Committed, m.Completed, m.Order)
		if err != nil {
			return fmt.Errorf("failed to write milestone: %w", err)
		}
	}
	return nil
}

func (r *TaskRepository) loadMilestones(ctx context.Context, taskID string) ([]task.Milestone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, estimated_minutes, committed, completed, position
		 FROM milestones WHERE task_id = ? ORDER BY position, id`, taskID)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	defer rows.Close()

	var milestones []task.Milestone
	for rows.Next() {
		var m task.Milestone
		if err := rows.Scan(&m.ID, &m.Title, &m.EstimatedMinutes, &m.Committed, &m.Completed, &m.Order); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		milestones = append(milestones, m)
	}
	return milestones, rows.Err()
}

func (r *TaskRepository) loadAllMilestones(ctx context.Context) (map[string][]task.Milestone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, task_id, title, estimated_minutes, committed, completed, position
		 FROM milestones ORDER BY task_id, position, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load milestones: %w", err)
	}
	defer rows.Close()

	byTask := make(map[string][]task.Milestone)
	for rows.Next() {
		var m task.Milestone
		var taskID string
		if err := rows.Scan(&m.ID, &taskID, &m.Title, &m.EstimatedMinutes, &m.Committed, &m.Completed, &m.Order); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		byTask[taskID] = append(byTask[taskID], m)
	}
	return byTask, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	var t task.Task
	var dueDate sql.NullTime
	var objectiveID, keyResultID, areaID sql.NullString
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Kind,
		&t.Status,
		&t.EstimatedMinutes,
		&t.CommittedWeek,
		&dueDate,
		&t.Priority,
		&objectiveID,
		&keyResultID,
		&areaID,
		&t.CreatedAt,
		&t.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	t.ObjectiveID = objectiveID.String
	t.KeyResultID = keyResultID.String
	t.AreaID = areaID.String
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
