package repository

import (
	"context"
	"testing"
	"time"

	"gaznger/models"
	"gaznger/repository/testutil"
	"gaznger/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPointRepository_InsertAndGetByUser(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPointRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("ledger@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	entry := testutil.CreateTestPointEntry(user.ID, 50)
	require.NoError(t, repo.Insert(ctx, entry))
	assert.NotZero(t, entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())

	entries, err := repo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(50), entries[0].Change)
	assert.Equal(t, models.PointKindEarn, entries[0].Kind)
	assert.True(t, entries[0].Settled)
}

func TestPointRepository_ListEligibleUnsettled(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPointRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("eligible@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)
	longPast := now.Add(-2 * time.Hour)

	// Eligible: window opened, not expired.
	eligible := &models.PointEntry{UserID: user.ID, Change: 10, Kind: models.PointKindEarn, PendingUntil: &past, ExpiresAt: &future}
	// Window still closed.
	stillPending := &models.PointEntry{UserID: user.ID, Change: 20, Kind: models.PointKindEarn, PendingUntil: &future}
	// Window opened but already expired.
	expired := &models.PointEntry{UserID: user.ID, Change: 30, Kind: models.PointKindEarn, PendingUntil: &longPast, ExpiresAt: &past}
	// Settled at creation; no pending window.
	immediate := &models.PointEntry{UserID: user.ID, Change: 40, Kind: models.PointKindEarn, Settled: true}

	for _, e := range []*models.PointEntry{eligible, stillPending, expired, immediate} {
		require.NoError(t, repo.Insert(ctx, e))
	}

	entries, err := repo.ListEligibleUnsettled(ctx, now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, eligible.ID, entries[0].ID)
}

func TestPointRepository_MarkSettled_ClaimsOnce(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPointRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("claim@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	entry := testutil.CreateTestPendingEntry(user.ID, 25, time.Minute, time.Hour)
	require.NoError(t, repo.Insert(ctx, entry))

	claimed, err := repo.MarkSettled(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, claimed)

	// Second claim must lose.
	claimed, err = repo.MarkSettled(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, claimed)
}

func TestPointRepository_MarkLapsed(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPointRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("lapse@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	now := time.Now()
	past := now.Add(-time.Hour)
	longPast := now.Add(-2 * time.Hour)
	future := now.Add(time.Hour)

	expired := &models.PointEntry{UserID: user.ID, Change: 10, Kind: models.PointKindEarn, PendingUntil: &longPast, ExpiresAt: &past}
	alive := &models.PointEntry{UserID: user.ID, Change: 20, Kind: models.PointKindEarn, PendingUntil: &past, ExpiresAt: &future}
	require.NoError(t, repo.Insert(ctx, expired))
	require.NoError(t, repo.Insert(ctx, alive))

	lapsed, err := repo.MarkLapsed(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), lapsed)

	// A lapsed entry can no longer be claimed.
	claimed, err := repo.MarkSettled(ctx, expired.ID)
	require.NoError(t, err)
	assert.False(t, claimed)

	// And it no longer shows up as eligible.
	entries, err := repo.ListEligibleUnsettled(ctx, now)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alive.ID, entries[0].ID)
}

func TestPointRepository_SumEligible(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPointRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("sum@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	now := time.Now()
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	entries := []*models.PointEntry{
		{UserID: user.ID, Change: 100, Kind: models.PointKindEarn, Settled: true},
		{UserID: user.ID, Change: -30, Kind: models.PointKindRedeem, Settled: true},
		// Pending window still closed: excluded.
		{UserID: user.ID, Change: 500, Kind: models.PointKindEarn, PendingUntil: &future},
		// Expired: excluded.
		{UserID: user.ID, Change: 700, Kind: models.PointKindEarn, PendingUntil: &past, ExpiresAt: &past},
	}
	for _, e := range entries {
		require.NoError(t, repo.Insert(ctx, e))
	}

	sum, err := repo.SumEligible(ctx, user.ID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(70), sum)
}

func TestPointRepository_SumEligible_ClampsAtZero(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	repo := NewPointRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("clamp@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	entry := &models.PointEntry{UserID: user.ID, Change: -200, Kind: models.PointKindRedeem, Settled: true}
	require.NoError(t, repo.Insert(ctx, entry))

	sum, err := repo.SumEligible(ctx, user.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
}

func TestUserRepository_ApplyPointsDelta(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	userRepo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	user := testutil.CreateTestUser("delta@example.com")
	require.NoError(t, userRepo.Create(ctx, user))

	balance, err := userRepo.ApplyPointsDelta(ctx, user.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance)

	// Deduction past zero clamps instead of going negative.
	balance, err = userRepo.ApplyPointsDelta(ctx, user.ID, -250)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	_, err = userRepo.ApplyPointsDelta(ctx, 999999, 10)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}
