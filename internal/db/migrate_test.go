package db

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	// Run migrations a second time — should succeed without error.
	err := Migrate(db)
	require.NoError(t, err)

	err = Migrate(db)
	require.NoError(t, err)
}

func TestMigrate_CreatesAllTables(t *testing.T) {
	db := openTestDB(t)

	expected := []string{"clients", "fiscal_rules", "runs", "tasks"}
	for _, table := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, "table %s should exist", table)
		assert.Equal(t, table, name)
	}
}

func TestMigrate_CreatesIndexes(t *testing.T) {
	db := openTestDB(t)

	expected := []string{
		"idx_fiscal_rules_active",
		"idx_tasks_run",
		"idx_tasks_client_due",
	}
	for _, idx := range expected {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type='index' AND name=?`, idx).Scan(&name)
		require.NoError(t, err, "index %s should exist", idx)
	}
}

func TestMigrate_ForeignKeysEnabled(t *testing.T) {
	db := openTestDB(t)

	var fk int
	err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&fk)
	require.NoError(t, err)
	assert.Equal(t, 1, fk, "foreign keys should be enabled")
}

func TestMigrate_WALModeRequested(t *testing.T) {
	// In-memory SQLite uses "memory" journal mode; WAL only applies to file DBs.
	db := openTestDB(t)

	var mode string
	err := db.QueryRow(`PRAGMA journal_mode`).Scan(&mode)
	require.NoError(t, err)
	assert.Equal(t, "memory", mode)
}

func TestMigrate_RunsUniquePerClientExercice(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (client_id, created_at, updated_at) VALUES ('c1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO runs (id, client_id, exercice, created_at) VALUES ('r1', 'c1', 2025, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO runs (id, client_id, exercice, created_at) VALUES ('r2', 'c1', 2025, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "second run for the same client and exercice should be rejected")

	_, err = db.Exec(`INSERT INTO runs (id, client_id, exercice, created_at) VALUES ('r3', 'c1', 2026, '2025-01-01T00:00:00Z')`)
	assert.NoError(t, err)
}

func TestMigrate_RunsRequireClient(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO runs (id, client_id, exercice, created_at) VALUES ('r1', 'ghost', 2025, '2025-01-01T00:00:00Z')`)
	assert.Error(t, err, "foreign key to clients should be enforced")
}

func TestMigrate_TasksStatusCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO clients (client_id, created_at, updated_at) VALUES ('c1', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO runs (id, client_id, exercice, created_at) VALUES ('r1', 'c1', 2025, '2025-01-01T00:00:00Z')`)
	require.NoError(t, err)

	insert := `INSERT INTO tasks (id, run_id, client_id, exercice, position, name, due_date, due_epoch, status, source_rule_id, source_branch_id, created_at)
		VALUES (?, 'r1', 'c1', 2025, 0, 'CA3', '2025-02-24', 1740355200, ?, 'tva', 'tva#0', '2025-01-01T00:00:00Z')`

	_, err = db.Exec(insert, "t1", "INVALID")
	assert.Error(t, err, "invalid status should be rejected by CHECK constraint")

	_, err = db.Exec(insert, "t1", "todo")
	assert.NoError(t, err)
}

func TestMigrate_RuleActiveCheckConstraint(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Exec(`INSERT INTO fiscal_rules (id, name, is_active, document, created_at, updated_at)
		VALUES ('r', 'R', 2, '{}', '2025-01-01T00:00:00Z', '2025-01-01T00:00:00Z')`)
	assert.Error(t, err)
}
