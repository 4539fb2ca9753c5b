package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/ruledoc"
	"github.com/alexanderramin/echeance/internal/rules"
)

// SQLiteRuleRepo implements RuleRepo. Rules are stored as their authoring
// document (JSON) so that formula kinds unknown to this build survive a
// load/save cycle.
type SQLiteRuleRepo struct {
	db db.DBTX
}

// NewSQLiteRuleRepo creates a new SQLiteRuleRepo.
func NewSQLiteRuleRepo(conn db.DBTX) *SQLiteRuleRepo {
	return &SQLiteRuleRepo{db: conn}
}

const ruleColumns = `id, name, is_active, document, created_at, updated_at`

func (r *SQLiteRuleRepo) ListActive(ctx context.Context) ([]rules.FiscalRule, error) {
	stored, err := r.list(ctx, `SELECT `+ruleColumns+` FROM fiscal_rules WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	out := make([]rules.FiscalRule, 0, len(stored))
	for _, s := range stored {
		out = append(out, s.Rule())
	}
	return out, nil
}

func (r *SQLiteRuleRepo) List(ctx context.Context) ([]*StoredRule, error) {
	return r.list(ctx, `SELECT `+ruleColumns+` FROM fiscal_rules ORDER BY id`)
}

func (r *SQLiteRuleRepo) Get(ctx context.Context, id string) (*StoredRule, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+ruleColumns+` FROM fiscal_rules WHERE id = ?`, id)
	s, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return s, err
}

// Upsert stores the document under its ID. The activation flag is taken from
// the document.
func (r *SQLiteRuleRepo) Upsert(ctx context.Context, doc ruledoc.RuleDoc) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding rule %s: %w", doc.ID, err)
	}
	now := nowUTC()
	query := `INSERT INTO fiscal_rules (` + ruleColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			is_active = excluded.is_active,
			document = excluded.document,
			updated_at = excluded.updated_at`
	if _, err := r.db.ExecContext(ctx, query, doc.ID, doc.Name, boolToInt(doc.Active()), string(data), now, now); err != nil {
		return fmt.Errorf("upserting rule %s: %w", doc.ID, err)
	}
	return nil
}

func (r *SQLiteRuleRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE fiscal_rules SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("updating rule %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating rule %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("rule %s: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRuleRepo) list(ctx context.Context, query string) ([]*StoredRule, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing rules: %w", err)
	}
	defer rows.Close()

	var out []*StoredRule
	for rows.Next() {
		s, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rules: %w", err)
	}
	return out, nil
}

func scanRule(row rowScanner) (*StoredRule, error) {
	var s StoredRule
	var active int
	var document, createdAt, updatedAt string
	if err := row.Scan(&s.ID, &s.Name, &active, &document, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning rule: %w", err)
	}
	s.IsActive = intToBool(active)
	var err error
	if s.Document, err = ruledoc.UnmarshalRule([]byte(document)); err != nil {
		return nil, fmt.Errorf("decoding rule %s document: %w", s.ID, err)
	}
	s.CreatedAt, s.UpdatedAt, err = parseTimestamps(createdAt, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing rule timestamps: %w", err)
	}
	return &s, nil
}
