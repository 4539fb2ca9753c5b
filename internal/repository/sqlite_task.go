package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/domain"
)

// SQLiteTaskRepo implements TaskRepo using a SQLite database.
type SQLiteTaskRepo struct {
	db db.DBTX
}

// NewSQLiteTaskRepo creates a new SQLiteTaskRepo.
func NewSQLiteTaskRepo(conn db.DBTX) *SQLiteTaskRepo {
	return &SQLiteTaskRepo{db: conn}
}

// CreateBatch inserts the tasks in order; their position in the slice is kept
// so ListByRun returns them in generation order. Run it inside a transaction
// to get all-or-nothing behaviour.
func (r *SQLiteTaskRepo) CreateBatch(ctx context.Context, tasks []*domain.StoredTask) error {
	query := `INSERT INTO tasks (id, run_id, client_id, exercice, position, name, category, form_code,
		due_date, due_epoch, status, source_rule_id, source_branch_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for i, t := range tasks {
		status := t.Status
		if status == "" {
			status = domain.TaskTodo
		}
		_, err := r.db.ExecContext(ctx, query,
			t.ID,
			t.RunID,
			t.ClientID,
			t.Exercice,
			i,
			t.Name,
			t.Category,
			t.FormCode,
			t.DueDate.Format(dateLayout),
			t.DueEpoch(),
			string(status),
			t.SourceRuleID,
			t.SourceBranchID,
			t.CreatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return fmt.Errorf("inserting task %q: %w", t.Name, err)
		}
	}
	return nil
}

func (r *SQLiteTaskRepo) ListByRun(ctx context.Context, runID string) ([]*domain.StoredTask, error) {
	query := `SELECT id, run_id, client_id, exercice, name, category, form_code, due_date, status,
		source_rule_id, source_branch_id, created_at
		FROM tasks WHERE run_id = ? ORDER BY position`
	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*domain.StoredTask
	for rows.Next() {
		var t domain.StoredTask
		var dueDate, status, createdAt string
		if err := rows.Scan(
			&t.ID, &t.RunID, &t.ClientID, &t.Exercice, &t.Name, &t.Category, &t.FormCode,
			&dueDate, &status, &t.SourceRuleID, &t.SourceBranchID, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		t.Status = domain.TaskStatus(status)
		if t.DueDate, err = time.Parse(dateLayout, dueDate); err != nil {
			return nil, fmt.Errorf("parsing due_date: %w", err)
		}
		if t.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tasks: %w", err)
	}
	return tasks, nil
}
