package service

import (
	"context"
	"fmt"
	"time"

	"gaznger/events"
	"gaznger/models"

	log "github.com/sirupsen/logrus"
)

type pointsService struct {
	uowFactory UnitOfWorkFactory
}

// NewPointsService creates a new points service
func NewPointsService(uowFactory UnitOfWorkFactory) PointsService {
	return &pointsService{
		uowFactory: uowFactory,
	}
}

// Award appends a ledger entry for the change and applies it to the cached
// balance unless the entry is pending. A zero change is rejected; a pending
// window in the past is treated as no window at all, so the entry settles
// immediately instead of waiting a full sweep interval for nothing. An
// expiry inside the pending window is accepted: the entry is recorded,
// never becomes eligible, and the sweep lapses it.
func (s *pointsService) Award(ctx context.Context, req AwardRequest) (int64, *models.PointEntry, error) {
	if req.Change == 0 {
		return 0, nil, ErrInvalidChange
	}

	kind := req.Kind
	if kind == "" {
		kind = models.KindForChange(req.Change)
	}

	now := time.Now()
	isPending := req.PendingUntil != nil && req.PendingUntil.After(now)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, req.UserID)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, nil, ErrUserNotFound
	}

	entry := &models.PointEntry{
		UserID:       req.UserID,
		Change:       req.Change,
		Kind:         kind,
		Description:  req.Description,
		PendingUntil: req.PendingUntil,
		ExpiresAt:    req.ExpiresAt,
		Settled:      !isPending,
	}

	if err := uow.PointRepository().Insert(ctx, entry); err != nil {
		return 0, nil, fmt.Errorf("failed to insert point entry: %w", err)
	}

	balance := user.Points
	if !isPending {
		balance, err = uow.UserRepository().ApplyPointsDelta(ctx, req.UserID, req.Change)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to apply points delta: %w", err)
		}
	}

	uow.EventBus().Publish(events.PointsChangeEvent{
		UserID:       req.UserID,
		EntryID:      entry.ID,
		ChangeAmount: req.Change,
		NewBalance:   balance,
		Kind:         kind,
		Pending:      isPending,
	})

	if err := uow.Commit(); err != nil {
		return 0, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":  req.UserID,
		"entryID": entry.ID,
		"change":  req.Change,
		"kind":    kind,
		"pending": isPending,
		"balance": balance,
	}).Info("Point entry recorded")

	return balance, entry, nil
}

// GetBalance returns the cached balance, the same number every other read
// path in the system sees.
func (s *pointsService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	balance, err := uow.UserRepository().GetPoints(ctx, userID)
	if err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return balance, nil
}

// GetHistory returns recent ledger entries annotated with their display
// status as of now.
func (s *pointsService) GetHistory(ctx context.Context, userID int64, limit int) ([]HistoryEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.PointRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get point history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	now := time.Now()
	history := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		history = append(history, HistoryEntry{
			Entry:  entry,
			Status: entry.StatusAt(now),
		})
	}

	return history, nil
}

// EffectiveBalance recomputes the balance from the ledger alone. It can
// disagree with the cached balance for entries whose pending window opened
// since the last sweep; it exists as an audit tool, not a serving path.
func (s *pointsService) EffectiveBalance(ctx context.Context, userID int64, now time.Time) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return 0, ErrUserNotFound
	}

	sum, err := uow.PointRepository().SumEligible(ctx, userID, now)
	if err != nil {
		return 0, fmt.Errorf("failed to sum ledger: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if sum != user.Points {
		log.WithFields(log.Fields{
			"userID":        userID,
			"cachedBalance": user.Points,
			"ledgerBalance": sum,
		}).Warn("Ledger balance differs from cached balance")
	}

	return sum, nil
}
