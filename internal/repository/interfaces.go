package repository

import (
	"context"
	"time"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/ruledoc"
	"github.com/alexanderramin/echeance/internal/rules"
)

// StoredRule is a rule document as persisted, with its activation state.
type StoredRule struct {
	ID        string
	Name      string
	IsActive  bool
	Document  ruledoc.RuleDoc
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Rule decodes the stored document into the engine model. The stored
// activation flag wins over the document's.
func (s *StoredRule) Rule() rules.FiscalRule {
	r := ruledoc.ToRule(s.Document)
	r.IsActive = s.IsActive
	return r
}

type ClientRepo interface {
	GetProfile(ctx context.Context, clientID string) (*domain.ClientFiscalProfile, error)
	List(ctx context.Context) ([]*domain.ClientFiscalProfile, error)
	Upsert(ctx context.Context, p *domain.ClientFiscalProfile) error
}

type RuleRepo interface {
	ListActive(ctx context.Context) ([]rules.FiscalRule, error)
	List(ctx context.Context) ([]*StoredRule, error)
	Get(ctx context.Context, id string) (*StoredRule, error)
	Upsert(ctx context.Context, doc ruledoc.RuleDoc) error
	SetActive(ctx context.Context, id string, active bool) error
}

type RunRepo interface {
	Create(ctx context.Context, run *domain.Run) error
	GetByID(ctx context.Context, id string) (*domain.Run, error)
	GetByClientExercice(ctx context.Context, clientID string, exercice int) (*domain.Run, error)
	ListByClient(ctx context.Context, clientID string) ([]*domain.Run, error)
	UpdateTaskCount(ctx context.Context, id string, count int) error
}

type TaskRepo interface {
	CreateBatch(ctx context.Context, tasks []*domain.StoredTask) error
	ListByRun(ctx context.Context, runID string) ([]*domain.StoredTask, error)
}
