package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gaznger/events"
	"gaznger/models"

	log "github.com/sirupsen/logrus"
)

type settlementService struct {
	uowFactory UnitOfWorkFactory
}

// NewSettlementService creates a new settlement service
func NewSettlementService(uowFactory UnitOfWorkFactory) SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
	}
}

// SettlePendingPoints runs one settlement sweep:
//
//  1. Entries whose expiry passed without being settled are marked lapsed.
//     Lapsing is terminal; a lapsed entry never reaches a balance.
//  2. Every unsettled entry whose pending window has opened and which has
//     not expired is folded into its owner's cached balance.
//
// Each entry is settled in its own transaction that first claims the entry
// with a guarded settled-flag update and only then touches the balance, so
// an entry is applied at most once even if sweeps overlap. A failure on one
// entry is logged and skipped; it stays unsettled for the next sweep.
func (s *settlementService) SettlePendingPoints(ctx context.Context) (*models.SettlementRun, error) {
	startedAt := time.Now()

	lapsed, err := s.lapseExpired(ctx, startedAt)
	if err != nil {
		return nil, err
	}

	entries, err := s.listEligible(ctx, startedAt)
	if err != nil {
		return nil, err
	}

	var settled, skipped int
	var pointsApplied int64
	for _, entry := range entries {
		applied, err := s.settleEntry(ctx, entry)
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"entryID": entry.ID,
				"userID":  entry.UserID,
			}).Error("Failed to settle point entry")
			skipped++
			continue
		}
		if !applied {
			skipped++
			continue
		}
		settled++
		pointsApplied += entry.Change
	}

	run := &models.SettlementRun{
		StartedAt:      startedAt,
		EntriesSettled: settled,
		EntriesLapsed:  int(lapsed),
		EntriesSkipped: skipped,
		PointsApplied:  pointsApplied,
		Summary: map[string]any{
			"eligible":    len(entries),
			"duration_ms": time.Since(startedAt).Milliseconds(),
		},
	}

	if err := s.recordRun(ctx, run); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"runID":         run.ID,
		"settled":       settled,
		"lapsed":        lapsed,
		"skipped":       skipped,
		"pointsApplied": pointsApplied,
	}).Info("Settlement sweep complete")

	return run, nil
}

// lapseExpired terminally marks expired unsettled entries.
func (s *settlementService) lapseExpired(ctx context.Context, now time.Time) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lapsed, err := uow.PointRepository().MarkLapsed(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to lapse expired entries: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return lapsed, nil
}

func (s *settlementService) listEligible(ctx context.Context, now time.Time) ([]*models.PointEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	entries, err := uow.PointRepository().ListEligibleUnsettled(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("failed to list eligible entries: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return entries, nil
}

// settleEntry claims and applies a single entry. Returns false without error
// when the entry was already claimed by a concurrent sweep or its owner no
// longer exists; a missing owner leaves the entry unsettled rather than
// silently consuming it.
func (s *settlementService) settleEntry(ctx context.Context, entry *models.PointEntry) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	claimed, err := uow.PointRepository().MarkSettled(ctx, entry.ID)
	if err != nil {
		return false, fmt.Errorf("failed to claim entry: %w", err)
	}
	if !claimed {
		return false, nil
	}

	newBalance, err := uow.UserRepository().ApplyPointsDelta(ctx, entry.UserID, entry.Change)
	if errors.Is(err, ErrUserNotFound) {
		log.WithFields(log.Fields{
			"entryID": entry.ID,
			"userID":  entry.UserID,
		}).Warn("Skipping entry for missing user")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to apply points delta: %w", err)
	}

	uow.EventBus().Publish(events.PointsChangeEvent{
		UserID:       entry.UserID,
		EntryID:      entry.ID,
		ChangeAmount: entry.Change,
		NewBalance:   newBalance,
		Kind:         entry.Kind,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// LastRun returns the most recent recorded sweep.
func (s *settlementService) LastRun(ctx context.Context) (*models.SettlementRun, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	run, err := uow.SettlementRunRepository().GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest settlement run: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return run, nil
}

func (s *settlementService) recordRun(ctx context.Context, run *models.SettlementRun) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.SettlementRunRepository().Create(ctx, run); err != nil {
		return fmt.Errorf("failed to record settlement run: %w", err)
	}

	uow.EventBus().Publish(events.SettlementCompleteEvent{
		RunID:          run.ID,
		EntriesSettled: run.EntriesSettled,
		PointsApplied:  run.PointsApplied,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
