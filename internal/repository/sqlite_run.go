package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/domain"
)

// SQLiteRunRepo implements RunRepo using a SQLite database.
type SQLiteRunRepo struct {
	db db.DBTX
}

// NewSQLiteRunRepo creates a new SQLiteRunRepo.
func NewSQLiteRunRepo(conn db.DBTX) *SQLiteRunRepo {
	return &SQLiteRunRepo{db: conn}
}

const runColumns = `id, client_id, exercice, task_count, created_at`

// Create inserts the run. A second run for the same client and exercice fails
// with ErrRunExists.
func (r *SQLiteRunRepo) Create(ctx context.Context, run *domain.Run) error {
	query := `INSERT INTO runs (` + runColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.ClientID,
		run.Exercice,
		run.TaskCount,
		run.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("client %s exercice %d: %w", run.ClientID, run.Exercice, ErrRunExists)
		}
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

func (r *SQLiteRunRepo) GetByID(ctx context.Context, id string) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return run, err
}

func (r *SQLiteRunRepo) GetByClientExercice(ctx context.Context, clientID string, exercice int) (*domain.Run, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE client_id = ? AND exercice = ?`, clientID, exercice)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run for client %s exercice %d: %w", clientID, exercice, ErrNotFound)
	}
	return run, err
}

func (r *SQLiteRunRepo) ListByClient(ctx context.Context, clientID string) ([]*domain.Run, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE client_id = ? ORDER BY exercice`, clientID)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

func (r *SQLiteRunRepo) UpdateTaskCount(ctx context.Context, id string, count int) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE runs SET task_count = ? WHERE id = ?`, count, id); err != nil {
		return fmt.Errorf("updating run task count: %w", err)
	}
	return nil
}

func scanRun(row rowScanner) (*domain.Run, error) {
	var run domain.Run
	var createdAt string
	if err := row.Scan(&run.ID, &run.ClientID, &run.Exercice, &run.TaskCount, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning run: %w", err)
	}
	var err error
	run.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing run created_at: %w", err)
	}
	return &run, nil
}
