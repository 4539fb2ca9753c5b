package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		client_id               TEXT PRIMARY KEY,
		name                    TEXT NOT NULL DEFAULT '',
		vat_regime              TEXT NOT NULL DEFAULT '',
		vat_frequency           TEXT NOT NULL DEFAULT '',
		vat_day                 INTEGER,
		tax_category            TEXT NOT NULL DEFAULT '',
		tax_regime              TEXT NOT NULL DEFAULT '',
		legal_form              TEXT NOT NULL DEFAULT '',
		activity                TEXT NOT NULL DEFAULT '',
		sector                  TEXT NOT NULL DEFAULT '',
		department              TEXT NOT NULL DEFAULT '',
		prior_year_revenue      TEXT,
		prior_year_cfe          TEXT,
		prior_year_cvae         TEXT,
		prior_year_payroll_tax  TEXT,
		commercial_area         TEXT,
		employee_count          INTEGER,
		unique_corp_tax_payment INTEGER,
		is_owner                INTEGER,
		has_business_premises   INTEGER,
		property_tax            INTEGER,
		vehicle_tax             INTEGER,
		closing_date            TEXT NOT NULL DEFAULT '',
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS fiscal_rules (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		is_active  INTEGER NOT NULL DEFAULT 1 CHECK(is_active IN (0, 1)),
		document   TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_fiscal_rules_active ON fiscal_rules(is_active)`,

	`CREATE TABLE IF NOT EXISTS runs (
		id         TEXT PRIMARY KEY,
		client_id  TEXT NOT NULL REFERENCES clients(client_id),
		exercice   INTEGER NOT NULL,
		task_count INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		UNIQUE(client_id, exercice)
	)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id               TEXT PRIMARY KEY,
		run_id           TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		client_id        TEXT NOT NULL,
		exercice         INTEGER NOT NULL,
		position         INTEGER NOT NULL,
		name             TEXT NOT NULL,
		category         TEXT NOT NULL DEFAULT '',
		form_code        TEXT NOT NULL DEFAULT '',
		due_date         TEXT NOT NULL,
		due_epoch        INTEGER NOT NULL,
		status           TEXT NOT NULL DEFAULT 'todo'
		                 CHECK(status IN ('todo','in_progress','done','skipped')),
		source_rule_id   TEXT NOT NULL,
		source_branch_id TEXT NOT NULL,
		created_at       TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_run ON tasks(run_id, position)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_client_due ON tasks(client_id, due_epoch)`,
}
