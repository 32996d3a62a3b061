package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledeberg/tiller/internal/domain/objective"
	"github.com/ledeberg/tiller/internal/repository"
)

// ObjectiveRepository implements repository.ObjectiveRepository for SQLite
type ObjectiveRepository struct {
	db *DB
}

// NewObjectiveRepository creates a new ObjectiveRepository
func NewObjectiveRepository(db *DB) *ObjectiveRepository {
	return &ObjectiveRepository{db: db}
}

// Create inserts an objective.
func (r *ObjectiveRepository) Create(ctx context.Context, obj *objective.Objective) error {
	query := `
		INSERT INTO objectives (id, title, period, status, area_id, created_at, modified_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		obj.ID, obj.Title, obj.Period, obj.Status, nullString(obj.AreaID), obj.CreatedAt, obj.ModifiedAt)
	if err != nil {
		return fmt.Errorf("failed to create objective: %w", err)
	}
	return nil
}

// Get retrieves an objective by ID.
func (r *ObjectiveRepository) Get(ctx context.Context, id string) (*objective.Objective, error) {
	query := `
		SELECT id, title, period, status, area_id, created_at, modified_at
		FROM objectives WHERE id = ?
	`
	var obj objective.Objective
	var areaID sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&obj.ID, &obj.Title, &obj.Period, &obj.Status, &areaID, &obj.CreatedAt, &obj.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get objective: %w", err)
	}
	obj.AreaID = areaID.String
	return &obj, nil
}

// Update rewrites an objective row.
func (r *ObjectiveRepository) Update(ctx context.Context, obj *objective.Objective) error {
	query := `
		UPDATE objectives
		SET title = ?, period = ?, status = ?, area_id = ?, modified_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		obj.Title, obj.Period, obj.Status, nullString(obj.AreaID), obj.ModifiedAt, obj.ID)
	if err != nil {
		return fmt.Errorf("failed to update objective: %w", err)
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

// Delete removes an objective; key results cascade.
func (r *ObjectiveRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM objectives WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete objective: %w", err)
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

// List returns all objectives.
func (r *ObjectiveRepository) List(ctx context.Context) ([]objective.Objective, error) {
	query := `
		SELECT id, title, period, status, area_id, created_at, modified_at
		FROM objectives ORDER BY created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list objectives: %w", err)
	}
	defer rows.Close()

	var objectives []objective.Objective
	for rows.Next() {
		var obj objective.Objective
		var areaID sql.NullString
		if err := rows.Scan(&obj.ID, &obj.Title, &obj.Period, &obj.Status, &areaID, &obj.CreatedAt, &obj.ModifiedAt); err != nil {
			return nil, fmt.Errorf("failed to scan objective: %w", err)
		}
		obj.AreaID = areaID.String
		objectives = append(objectives, obj)
	}
	return objectives, rows.Err()
}

// CreateKeyResult inserts a key result under its objective.
func (r *ObjectiveRepository) CreateKeyResult(ctx context.Context, kr *objective.KeyResult) error {
	query := `
		INSERT INTO key_results (id, objective_id, title, start_value, target_value, current_value, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		kr.ID, kr.ObjectiveID, kr.Title, kr.StartValue, kr.TargetValue, kr.CurrentValue, kr.CreatedAt, kr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create key result: %w", err)
	}
	return nil
}

// UpdateKeyResult rewrites a key result row.
func (r *ObjectiveRepository) UpdateKeyResult(ctx context.Context, kr *objective.KeyResult) error {
	query := `
		UPDATE key_results
		SET title = ?, start_value = ?, target_value = ?, current_value = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		kr.Title, kr.StartValue, kr.TargetValue, kr.CurrentValue, kr.UpdatedAt, kr.ID)
	if err != nil {
		return fmt.Errorf("failed to update key result: %w", err)
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

// ListKeyResults returns all key results across objectives.
func (r *ObjectiveRepository) ListKeyResults(ctx context.Context) ([]objective.KeyResult, error) {
	query := `
		SELECT id, objective_id, title, start_value, target_value, current_value, created_at, updated_at
		FROM key_results ORDER BY objective_id, created_at, id
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list key results: %w", err)
	}
	defer rows.Close()

	var results []objective.KeyResult
	for rows.Next() {
		var kr objective.KeyResult
		if err := rows.Scan(&kr.ID, &kr.ObjectiveID, &kr.Title, &kr.StartValue, &kr.TargetValue, &kr.CurrentValue, &kr.CreatedAt, &kr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan key result: %w", err)
		}
		results = append(results, kr)
	}
	return results, rows.Err()
}
