package sqlite

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// NewTestDB creates a new in-memory SQLite database for testing
func NewTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(":memory:")
	require.NoError(t, err, "failed to create test database")

	err = db.RunMigrations()
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// TestMigrations verifies that migrations run successfully
func TestMigrations(t *testing.T) {
	db := NewTestDB(t)

	tables := []string{
		"tasks",
		"milestones",
		"objectives",
		"key_results",
		"inbox_items",
		"calendar_blocks",
		"settings",
		"pending_actions",
	}

	for _, table := range tables {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&count)
		require.NoError(t, err, "failed to query table %s", table)
		require.Equal(t, 1, count, "table %s not found", table)
	}
}

// TestMigrationsIdempotent verifies migrations can run twice
func TestMigrationsIdempotent(t *testing.T) {
	db := NewTestDB(t)
	require.NoError(t, db.RunMigrations())
}

// TestForeignKeys verifies that foreign key constraints are enabled
func TestForeignKeys(t *testing.T) {
	db := NewTestDB(t)

	var enabled int
	err := db.QueryRow("PRAGMA foreign_keys").Scan(&enabled)
	require.NoError(t, err)
	require.Equal(t, 1, enabled, "foreign keys not enabled")
}

// TestStatusConstraints verifies the CHECK constraints on enumerated columns
func TestStatusConstraints(t *testing.T) {
	db := NewTestDB(t)

	_, err := db.Exec(
		`INSERT INTO tasks (id, title, kind, status) VALUES (?, ?, ?, ?)`,
		"t1", "Test", "simple", "invalid")
	require.Error(t, err, "should fail with invalid task status")

	_, err = db.Exec(
		`INSERT INTO pending_actions (id, session_id, status, preview_json, expires_at)
		 VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		"a1", "s1", "maybe", "{}")
	require.Error(t, err, "should fail with invalid action status")
}
