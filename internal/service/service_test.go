package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/generation"
	"github.com/alexanderramin/echeance/internal/repository"
	"github.com/alexanderramin/echeance/internal/testutil"
	"github.com/stretchr/testify/require"
)

const (
	rulesFixture   = "../ruledoc/testdata/rules.yaml"
	clientsFixture = "../ruledoc/testdata/clients.yaml"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type fixture struct {
	db       *sql.DB
	clients  *repository.SQLiteClientRepo
	rules    *repository.SQLiteRuleRepo
	runs     *repository.SQLiteRunRepo
	tasks    *repository.SQLiteTaskRepo
	observer *recordingObserver
}

// newFixture opens a database seeded with the testdata rules and clients.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		db:       database,
		clients:  repository.NewSQLiteClientRepo(database),
		rules:    repository.NewSQLiteRuleRepo(database),
		runs:     repository.NewSQLiteRunRepo(database),
		tasks:    repository.NewSQLiteTaskRepo(database),
		observer: &recordingObserver{},
	}
	uow := testutil.NewTestUoW(database)
	ctx := context.Background()

	_, err := NewRuleService(f.rules, uow).ImportFile(ctx, rulesFixture)
	require.NoError(t, err)
	_, err = NewClientService(f.clients, uow).ImportFile(ctx, clientsFixture)
	require.NoError(t, err)
	return f
}

func (f *fixture) obligations(uow db.UnitOfWork) ObligationService {
	return NewObligationService(f.runs, f.tasks, uow, generation.New(), f.observer)
}

func (f *fixture) count(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, f.db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}
