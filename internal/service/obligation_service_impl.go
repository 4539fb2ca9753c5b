package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/generation"
	"github.com/alexanderramin/echeance/internal/repository"
	"github.com/google/uuid"
)

type obligationService struct {
	runs      repository.RunRepo
	tasks     repository.TaskRepo
	uow       db.UnitOfWork
	generator *generation.Generator
	observer  UseCaseObserver
}

// NewObligationService wires the obligation use cases. Rules and profiles are
// always read through uow so each generation sees one consistent snapshot.
func NewObligationService(
	runs repository.RunRepo,
	tasks repository.TaskRepo,
	uow db.UnitOfWork,
	generator *generation.Generator,
	observers ...UseCaseObserver,
) ObligationService {
	if generator == nil {
		generator = generation.New()
	}
	return &obligationService{
		runs:      runs,
		tasks:     tasks,
		uow:       uow,
		generator: generator,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *obligationService) Preview(ctx context.Context, clientID string, exercice int) (out *Obligations, err error) {
	defer s.observe(ctx, "preview", time.Now().UTC(), map[string]any{
		"client_id": clientID,
		"exercice":  exercice,
	}, &out, &err)

	if err = checkExercice(exercice); err != nil {
		return nil, err
	}
	err = s.uow.Snapshot(ctx, func(ctx context.Context, tx db.DBTX) error {
		profile, err := repository.NewSQLiteClientRepo(tx).GetProfile(ctx, clientID)
		if err != nil {
			return fmt.Errorf("loading client: %w", err)
		}
		out, err = s.generate(ctx, repository.NewSQLiteRuleRepo(tx), profile, exercice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *obligationService) PreviewProfile(ctx context.Context, profile *domain.ClientFiscalProfile, exercice int) (out *Obligations, err error) {
	if profile == nil {
		return nil, fmt.Errorf("preview: profile is required")
	}
	defer s.observe(ctx, "preview-profile", time.Now().UTC(), map[string]any{
		"client_id": profile.ClientID,
		"exercice":  exercice,
	}, &out, &err)

	if err = checkExercice(exercice); err != nil {
		return nil, err
	}
	err = s.uow.Snapshot(ctx, func(ctx context.Context, tx db.DBTX) error {
		var err error
		out, err = s.generate(ctx, repository.NewSQLiteRuleRepo(tx), profile, exercice)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateRun inserts the run first so a concurrent run for the same client and
// exercice fails on the uniqueness constraint before any generation happens.
// Rules and profile are read through the same transaction.
func (s *obligationService) CreateRun(ctx context.Context, clientID string, exercice int) (result *RunResult, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"client_id": clientID,
		"exercice":  exercice,
	}
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "create-run",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if err = checkExercice(exercice); err != nil {
		return nil, err
	}

	run := &domain.Run{
		ID:        uuid.New().String(),
		ClientID:  clientID,
		Exercice:  exercice,
		CreatedAt: startedAt.Truncate(time.Second),
	}

	var generated *Obligations
	var stored []*domain.StoredTask
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txClients := repository.NewSQLiteClientRepo(tx)
		txRules := repository.NewSQLiteRuleRepo(tx)
		txRuns := repository.NewSQLiteRunRepo(tx)
		txTasks := repository.NewSQLiteTaskRepo(tx)

		profile, err := txClients.GetProfile(ctx, clientID)
		if err != nil {
			return fmt.Errorf("loading client: %w", err)
		}
		if err := txRuns.Create(ctx, run); err != nil {
			return fmt.Errorf("creating run: %w", err)
		}

		generated, err = s.generate(ctx, txRules, profile, exercice)
		if err != nil {
			return err
		}

		stored = materialize(run, generated.Tasks)
		if err := txTasks.CreateBatch(ctx, stored); err != nil {
			return fmt.Errorf("materializing tasks: %w", err)
		}
		run.TaskCount = len(stored)
		return txRuns.UpdateTaskCount(ctx, run.ID, run.TaskCount)
	})
	if err != nil {
		return nil, err
	}

	fields["run_id"] = run.ID
	fields["task_count"] = run.TaskCount
	fields["diagnostic_count"] = len(generated.Diagnostics)
	return &RunResult{Run: run, Tasks: stored, Diagnostics: generated.Diagnostics}, nil
}

func (s *obligationService) GetRun(ctx context.Context, id string) (*domain.Run, error) {
	return s.runs.GetByID(ctx, id)
}

func (s *obligationService) ListRuns(ctx context.Context, clientID string) ([]*domain.Run, error) {
	return s.runs.ListByClient(ctx, clientID)
}

func (s *obligationService) ListRunTasks(ctx context.Context, runID string) ([]*domain.StoredTask, error) {
	if _, err := s.runs.GetByID(ctx, runID); err != nil {
		return nil, err
	}
	return s.tasks.ListByRun(ctx, runID)
}

func (s *obligationService) generate(ctx context.Context, ruleRepo repository.RuleRepo, profile *domain.ClientFiscalProfile, exercice int) (*Obligations, error) {
	active, err := ruleRepo.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading rules: %w", err)
	}
	res := s.generator.Generate(active, profile, profile.ClientID, exercice)
	return &Obligations{
		ClientID:    profile.ClientID,
		Exercice:    exercice,
		Tasks:       res.Tasks,
		Diagnostics: res.Diagnostics,
	}, nil
}

func (s *obligationService) observe(ctx context.Context, name string, startedAt time.Time, fields map[string]any, out **Obligations, err *error) {
	if *err == nil && *out != nil {
		fields["task_count"] = len((*out).Tasks)
		fields["diagnostic_count"] = len((*out).Diagnostics)
	}
	s.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:      name,
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Success:   *err == nil,
		Err:       *err,
		Fields:    fields,
	})
}

// materialize binds generated instances to run, keeping generation order.
func materialize(run *domain.Run, instances []domain.TaskInstance) []*domain.StoredTask {
	stored := make([]*domain.StoredTask, 0, len(instances))
	for _, inst := range instances {
		stored = append(stored, &domain.StoredTask{
			ID:           uuid.New().String(),
			RunID:        run.ID,
			Status:       domain.TaskTodo,
			TaskInstance: inst,
			CreatedAt:    run.CreatedAt,
		})
	}
	return stored
}
