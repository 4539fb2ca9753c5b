package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/echeance/internal/db"
	"github.com/alexanderramin/echeance/internal/domain"
	"github.com/alexanderramin/echeance/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedClient(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	require.NoError(t, NewSQLiteClientRepo(db).Upsert(context.Background(), testutil.NewTestProfile(id)))
}

func TestRunRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedClient(t, db, "acme")
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()

	run := testutil.NewTestRun("acme", 2025)
	require.NoError(t, repo.Create(ctx, run))
	require.NoError(t, repo.UpdateTaskCount(ctx, run.ID, 19))

	got, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", got.ClientID)
	assert.Equal(t, 2025, got.Exercice)
	assert.Equal(t, 19, got.TaskCount)
	assert.True(t, run.CreatedAt.Equal(got.CreatedAt))

	byKey, err := repo.GetByClientExercice(ctx, "acme", 2025)
	require.NoError(t, err)
	assert.Equal(t, run.ID, byKey.ID)
}

func TestRunRepo_DuplicateClientExercice(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedClient(t, db, "acme")
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestRun("acme", 2025)))
	err := repo.Create(ctx, testutil.NewTestRun("acme", 2025))
	assert.ErrorIs(t, err, ErrRunExists)

	require.NoError(t, repo.Create(ctx, testutil.NewTestRun("acme", 2026)))
}

func TestRunRepo_UnknownClientRejected(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	err := repo.Create(context.Background(), testutil.NewTestRun("ghost", 2025))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrRunExists)
}

func TestRunRepo_NotFound(t *testing.T) {
	repo := NewSQLiteRunRepo(testutil.NewTestDB(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = repo.GetByClientExercice(ctx, "acme", 2025)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunRepo_ListByClient(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedClient(t, db, "acme")
	seedClient(t, db, "other")
	repo := NewSQLiteRunRepo(db)
	ctx := context.Background()

	for _, r := range []*domain.Run{
		testutil.NewTestRun("acme", 2026),
		testutil.NewTestRun("other", 2025),
		testutil.NewTestRun("acme", 2024),
	} {
		require.NoError(t, repo.Create(ctx, r))
	}

	runs, err := repo.ListByClient(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 2024, runs[0].Exercice)
	assert.Equal(t, 2026, runs[1].Exercice)

	none, err := repo.ListByClient(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestTaskRepo_CreateBatchAndList(t *testing.T) {
	db := testutil.NewTestDB(t)
	seedClient(t, db, "acme")
	run := testutil.NewTestRun("acme", 2025)
	require.NoError(t, NewSQLiteRunRepo(db).Create(context.Background(), run))
	repo := NewSQLiteTaskRepo(db)
	ctx := context.Background()

	mk := func(name string, due time.Time) *domain.StoredTask {
		return &domain.StoredTask{
			ID:    uuid.New().String(),
			RunID: run.ID,
			TaskInstance: domain.TaskInstance{
				Name:           name,
				Category:       "TVA",
				DueDate:        due,
				ClientID:       "acme",
				Exercice:       2025,
				SourceRuleID:   "tva",
				SourceBranchID: "tva#0",
			},
			CreatedAt: run.CreatedAt,
		}
	}
	feb := time.Date(2025, time.February, 24, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2025, time.March, 24, 0, 0, 0, 0, time.UTC)
	done := mk("B", mar)
	done.Status = domain.TaskDone
	require.NoError(t, repo.CreateBatch(ctx, []*domain.StoredTask{mk("Z", feb), done}))

	tasks, err := repo.ListByRun(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Z", tasks[0].Name, "insertion order is kept")
	assert.Equal(t, feb, tasks[0].DueDate)
	assert.Equal(t, domain.TaskTodo, tasks[0].Status, "empty status defaults to todo")
	assert.Equal(t, domain.TaskDone, tasks[1].Status)
	assert.Equal(t, "tva#0", tasks[1].SourceBranchID)
	assert.Equal(t, mar.Unix(), tasks[1].DueEpoch())
}

func TestTaskRepo_BatchIsAtomicInsideTx(t *testing.T) {
	database := testutil.NewTestDB(t)
	seedClient(t, database, "acme")
	run := testutil.NewTestRun("acme", 2025)
	require.NoError(t, NewSQLiteRunRepo(database).Create(context.Background(), run))

	dup := uuid.New().String()
	task := func(id string) *domain.StoredTask {
		return &domain.StoredTask{
			ID:           id,
			RunID:        run.ID,
			TaskInstance: domain.TaskInstance{Name: "T", DueDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ClientID: "acme", Exercice: 2025},
		}
	}
	uow := testutil.NewTestUoW(database)
	err := uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
		return NewSQLiteTaskRepo(tx).CreateBatch(ctx, []*domain.StoredTask{task(dup), task(dup)})
	})
	require.Error(t, err)

	tasks, err := NewSQLiteTaskRepo(database).ListByRun(context.Background(), run.ID)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}
