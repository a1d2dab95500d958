package service

import (
	"context"
	"testing"
	"time"

	"gaznger/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestPointsService_Award_Immediate(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	user := &models.User{ID: 42, Points: 100}

	uow.UserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.UserID == 42 && e.Change == 25 && e.Kind == models.PointKindEarn && e.Settled
	})).Return(nil)
	uow.UserRepo.On("ApplyPointsDelta", ctx, int64(42), int64(25)).Return(int64(125), nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()

	balance, entry, err := service.Award(ctx, AwardRequest{
		UserID:      42,
		Change:      25,
		Description: "welcome bonus",
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(125), balance)
	assert.True(t, entry.Settled)
	assert.True(t, uow.Committed)

	uow.UserRepo.AssertExpectations(t)
	uow.PointRepo.AssertExpectations(t)
	uow.Publisher.AssertExpectations(t)
}

func TestPointsService_Award_Pending(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	user := &models.User{ID: 42, Points: 100}
	pendingUntil := time.Now().Add(24 * time.Hour)

	uow.UserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.UserID == 42 && e.Change == 50 && !e.Settled && e.PendingUntil != nil
	})).Return(nil)
	uow.Publisher.On("Publish", mock.MatchedBy(func(e interface{}) bool {
		return true
	})).Return()

	balance, entry, err := service.Award(ctx, AwardRequest{
		UserID:       42,
		Change:       50,
		PendingUntil: &pendingUntil,
	})

	assert.NoError(t, err)
	// Pending awards leave the cached balance untouched.
	assert.Equal(t, int64(100), balance)
	assert.False(t, entry.Settled)

	uow.UserRepo.AssertNotCalled(t, "ApplyPointsDelta", mock.Anything, mock.Anything, mock.Anything)
	uow.PointRepo.AssertExpectations(t)
}

func TestPointsService_Award_PastPendingWindowSettlesImmediately(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	user := &models.User{ID: 42, Points: 0}
	pendingUntil := time.Now().Add(-time.Hour)

	uow.UserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.Settled
	})).Return(nil)
	uow.UserRepo.On("ApplyPointsDelta", ctx, int64(42), int64(10)).Return(int64(10), nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()

	balance, _, err := service.Award(ctx, AwardRequest{
		UserID:       42,
		Change:       10,
		PendingUntil: &pendingUntil,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(10), balance)
	uow.UserRepo.AssertExpectations(t)
}

func TestPointsService_Award_ZeroChange(t *testing.T) {
	ctx := context.Background()

	service := NewPointsService(NewMockUnitOfWorkFactory(NewMockUnitOfWork()))

	_, _, err := service.Award(ctx, AwardRequest{UserID: 42, Change: 0})

	assert.ErrorIs(t, err, ErrInvalidChange)
}

func TestPointsService_Award_ExpiryBeforePendingWindow(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	// The window never opens before the entry expires; the entry is still
	// recorded and left for the sweep to lapse.
	pendingUntil := time.Now().Add(time.Hour)
	expiresAt := time.Now().Add(30 * time.Minute)

	uow.UserRepo.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42, Points: 100}, nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.Change == 30 && !e.Settled && !e.Lapsed
	})).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()

	balance, entry, err := service.Award(ctx, AwardRequest{
		UserID:       42,
		Change:       30,
		PendingUntil: &pendingUntil,
		ExpiresAt:    &expiresAt,
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(100), balance, "balance must not change")
	assert.False(t, entry.Settled)
	uow.UserRepo.AssertNotCalled(t, "ApplyPointsDelta", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, uow.Committed)
}

func TestPointsService_Award_UserNotFound(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	uow.UserRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	_, _, err := service.Award(ctx, AwardRequest{UserID: 99, Change: 10})

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.True(t, uow.RolledBack)
	uow.PointRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestPointsService_Award_RedeemKindDerivedFromSign(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	user := &models.User{ID: 42, Points: 100}

	uow.UserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.Change == -30 && e.Kind == models.PointKindRedeem
	})).Return(nil)
	uow.UserRepo.On("ApplyPointsDelta", ctx, int64(42), int64(-30)).Return(int64(70), nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()

	balance, entry, err := service.Award(ctx, AwardRequest{UserID: 42, Change: -30})

	assert.NoError(t, err)
	assert.Equal(t, int64(70), balance)
	assert.Equal(t, models.PointKindRedeem, entry.Kind)
}

func TestPointsService_GetHistory_DerivesStatus(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	future := time.Now().Add(time.Hour)
	past := time.Now().Add(-time.Hour)
	entries := []*models.PointEntry{
		{ID: 1, Change: 10, Settled: true},
		{ID: 2, Change: 20, PendingUntil: &future},
		{ID: 3, Change: 30, ExpiresAt: &past},
	}

	uow.PointRepo.On("GetByUser", ctx, int64(42), 50).Return(entries, nil)

	history, err := service.GetHistory(ctx, 42, 0)

	assert.NoError(t, err)
	assert.Len(t, history, 3)
	assert.Equal(t, models.PointStatusAvailable, history[0].Status)
	assert.Equal(t, models.PointStatusPending, history[1].Status)
	assert.Equal(t, models.PointStatusExpired, history[2].Status)
}

func TestPointsService_EffectiveBalance(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewPointsService(NewMockUnitOfWorkFactory(uow))

	now := time.Now()
	user := &models.User{ID: 42, Points: 80}

	uow.UserRepo.On("GetByID", ctx, int64(42)).Return(user, nil)
	uow.PointRepo.On("SumEligible", ctx, int64(42), now).Return(int64(80), nil)

	sum, err := service.EffectiveBalance(ctx, 42, now)

	assert.NoError(t, err)
	assert.Equal(t, int64(80), sum)
}
