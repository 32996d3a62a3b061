package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ledeberg/tiller/internal/config"
)

const capacityKey = "capacity"

// SettingsRepository implements repository.SettingsRepository for SQLite.
// Settings are stored as JSON values in a key/value table.
type SettingsRepository struct {
	db       *DB
	defaults config.CapacityConfig
}

// NewSettingsRepository creates a new SettingsRepository. The defaults are
// returned until a capacity config has been persisted.
func NewSettingsRepository(db *DB, defaults config.CapacityConfig) *SettingsRepository {
	return &SettingsRepository{db: db, defaults: defaults.Clamp()}
}

// GetCapacity returns the persisted capacity config, or the defaults.
func (r *SettingsRepository) GetCapacity(ctx context.Context) (config.CapacityConfig, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, capacityKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return r.defaults, nil
	}
	if err != nil {
		return config.CapacityConfig{}, fmt.Errorf("failed to read capacity settings: %w", err)
	}

	var cfg config.CapacityConfig
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		return config.CapacityConfig{}, fmt.Errorf("failed to decode capacity settings: %w", err)
	}
	return cfg.Clamp(), nil
}

// SetCapacity persists the capacity config.
func (r *SettingsRepository) SetCapacity(ctx context.Context, cfg config.CapacityConfig) error {
	value, err := json.Marshal(cfg.Clamp())
	if err != nil {
		return fmt.Errorf("failed to encode capacity settings: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		capacityKey, string(value))
	if err != nil {
		return fmt.Errorf("failed to write capacity settings: %w", err)
	}
	return nil
}
