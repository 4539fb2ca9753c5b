package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/repository"
	"github.com/alexanderramin/echeance/internal/ruledoc"
)

type clientService struct {
	clients  repository.ClientRepo
	uow      db.UnitOfWork
	observer UseCaseObserver
}

func NewClientService(clients repository.ClientRepo, uow db.UnitOfWork, observers ...UseCaseObserver) ClientService {
	return &clientService{clients: clients, uow: uow, observer: useCaseObserverOrNoop(observers)}
}

func (s *clientService) ImportFile(ctx context.Context, path string) ([]string, error) {
	set, err := ruledoc.LoadProfiles(path)
	if err != nil {
		return nil, fmt.Errorf("loading client file: %w", err)
	}
	return s.Import(ctx, set)
}

func (s *clientService) Import(ctx context.Context, set *ruledoc.ProfileSet) (ids []string, err error) {
	startedAt := time.Now().UTC()
	defer func() {
		s.observer.ObserveUseCase(ctx, UseCaseEvent{
			Name:      "import-clients",
			StartedAt: startedAt,
			Duration:  time.Since(startedAt),
			Success:   err == nil,
			Err:       err,
			Fields:    map[string]any{"client_count": len(ids)},
		})
	}()

	if errs := ruledoc.ValidateProfiles(set); len(errs) > 0 {
		return nil, formatValidationErrors("client", errs)
	}

	profiles := make([]*domain.ClientFiscalProfile, 0, len(set.Clients))
	for _, doc := range set.Clients {
		profiles = append(profiles, ruledoc.ToProfile(doc))
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txClients := repository.NewSQLiteClientRepo(tx)
		for _, p := range profiles {
			if err := txClients.Upsert(ctx, p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	ids = make([]string, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.ClientID)
	}
	return ids, nil
}

func (s *clientService) Get(ctx context.Context, clientID string) (*domain.ClientFiscalProfile, error) {
	return s.clients.GetProfile(ctx, clientID)
}

func (s *clientService) List(ctx context.Context) ([]*domain.ClientFiscalProfile, error) {
	return s.clients.List(ctx)
}
