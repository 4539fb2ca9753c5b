package service

import (
	"context"

	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/generation"
	"github.com/alexanderramin/echeance/internal/repository"
	"github.com/alexanderramin/echeance/internal/ruledoc"
)

// Obligations is a generated obligation list for one client and exercice.
type Obligations struct {
	ClientID    string
	Exercice    int
	Tasks       []domain.TaskInstance
	Diagnostics []generation.Diagnostic
}

// RunResult is the outcome of a committed run.
type RunResult struct {
	Run         *domain.Run
	Tasks       []*domain.StoredTask
	Diagnostics []generation.Diagnostic
}

type ObligationService interface {
	// Preview generates the obligation list of a stored client without
	// writing anything.
	Preview(ctx context.Context, clientID string, exercice int) (*Obligations, error)
	// PreviewProfile generates for an unsaved profile against the active rules.
	PreviewProfile(ctx context.Context, profile *domain.ClientFiscalProfile, exercice int) (*Obligations, error)
	// CreateRun creates the run and materializes its tasks in one transaction.
	CreateRun(ctx context.Context, clientID string, exercice int) (*RunResult, error)
	GetRun(ctx context.Context, id string) (*domain.Run, error)
	ListRuns(ctx context.Context, clientID string) ([]*domain.Run, error)
	ListRunTasks(ctx context.Context, runID string) ([]*domain.StoredTask, error)
}

type RuleService interface {
	ImportFile(ctx context.Context, path string) ([]string, error)
	Import(ctx context.Context, doc *ruledoc.Document) ([]string, error)
	List(ctx context.Context) ([]*repository.StoredRule, error)
	Export(ctx context.Context) (*ruledoc.Document, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type ClientService interface {
	ImportFile(ctx context.Context, path string) ([]string, error)
	Import(ctx context.Context, set *ruledoc.ProfileSet) ([]string, error)
	Get(ctx context.Context, clientID string) (*domain.ClientFiscalProfile, error)
	List(ctx context.Context) ([]*domain.ClientFiscalProfile, error)
}
