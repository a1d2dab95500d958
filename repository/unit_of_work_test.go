package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"gaznger/events"
	"gaznger/models"
	"gaznger/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnitOfWork_CommitFlushesEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var mu sync.Mutex
	var received []events.Event
	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, e)
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user := testutil.CreateTestUser("uow@example.com")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	uow.EventBus().Publish(events.UserRegisteredEvent{UserID: user.ID, Email: user.Email})

	// Nothing emitted before commit.
	mu.Lock()
	assert.Empty(t, received)
	mu.Unlock()

	require.NoError(t, uow.Commit())

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, time.Second, 10*time.Millisecond)

	// The row survived the commit.
	got, err := NewUserRepository(testDB.DB).GetByEmail(ctx, "uow@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.ID)
}

func TestUnitOfWork_RollbackDiscardsWritesAndEvents(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	bus := events.NewBus()
	var fired bool
	var mu sync.Mutex
	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, e events.Event) {
		mu.Lock()
		defer mu.Unlock()
		fired = true
	})

	factory := NewUnitOfWorkFactory(testDB.DB, bus)

	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))

	user := testutil.CreateTestUser("rollback@example.com")
	require.NoError(t, uow.UserRepository().Create(ctx, user))
	uow.EventBus().Publish(events.UserRegisteredEvent{UserID: user.ID, Email: user.Email})

	require.NoError(t, uow.Rollback())

	got, err := NewUserRepository(testDB.DB).GetByEmail(ctx, "rollback@example.com")
	require.NoError(t, err)
	assert.Nil(t, got)

	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.False(t, fired)
	mu.Unlock()
}

func TestSettlementRunRepository_CreateAndGetLatest(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repo := NewSettlementRunRepository(testDB.DB)

	latest, err := repo.GetLatest(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	run := &models.SettlementRun{
		StartedAt:      time.Now(),
		EntriesSettled: 3,
		EntriesLapsed:  1,
		EntriesSkipped: 0,
		PointsApplied:  120,
		Summary:        map[string]any{"eligible": 4},
	}
	require.NoError(t, repo.Create(ctx, run))
	assert.NotZero(t, run.ID)

	latest, err = repo.GetLatest(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.EntriesSettled)
	assert.Equal(t, int64(120), latest.PointsApplied)
}
