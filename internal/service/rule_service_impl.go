package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/repository"
	"github.com/alexanderramin/echeance/internal/ruledoc"
)

type ruleService struct {
	rules    repository.RuleRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewRuleService(rules repository.RuleRepo, uow db.UnitOfWork, observers ...UseCaseObserver) RuleService {
	return &ruleService{rules: rules, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *ruleService) ImportFile(ctx context.Context, path string) ([]string, error) {
	doc, err := ruledoc.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading rule file: %w", err)
	}
	return s.Import(ctx, doc)
}

// Import validates the whole document, then upserts every rule atomically.
// Nothing is written when any rule is invalid.
func (s *ruleService) Import(ctx context.Context, doc *ruledoc.Document) (ids []string, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		fields["rule_count"] = len(ids)
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-rules",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    fields,
		})
	}()

	if errs := ruledoc.Validate(doc); len(errs) > 0 {
		return nil, formatValidationErrors("rule", errs)
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txRules := repository.NewSQLiteRuleRepo(tx)
		for _, r := range doc.Rules {
			if err := txRules.Upsert(ctx, r); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

func (s *ruleService) List(ctx context.Context) ([]*repository.StoredRule, error) {
	return s.rules.List(ctx)
}

// Export returns every stored rule as an authoring document, with the stored
// activation state.
func (s *ruleService) Export(ctx context.Context) (*ruledoc.Document, error) {
	stored, err := s.rules.List(ctx)
	if err != nil {
		return nil, err
	}
	doc := &ruledoc.Document{Rules: make([]ruledoc.RuleDoc, 0, len(stored))}
	for _, sr := range stored {
		r := sr.Document
		active := sr.IsActive
		r.IsActive = &active
		doc.Rules = append(doc.Rules, r)
	}
	return doc, nil
}

func (s *ruleService) SetActive(ctx context.Context, id string, active bool) error {
	return s.rules.SetActive(ctx, id, active)
}
