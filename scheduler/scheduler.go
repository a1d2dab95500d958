// Package scheduler runs the periodic settlement sweep.
package scheduler

import (
	"context"
	"time"

	"gaznger/service"

	log "github.com/sirupsen/logrus"
)

// TokenPruner removes expired refresh tokens.
type TokenPruner interface {
	PruneExpiredTokens(ctx context.Context) (int64, error)
}

// Scheduler drives the settlement sweep on a fixed interval. One sweep runs
// immediately on Start so a restart never leaves eligible entries waiting a
// full interval. Each tick also prunes expired refresh tokens.
type Scheduler struct {
	settlement service.SettlementService
	pruner     TokenPruner
	interval   time.Duration
	done       chan struct{}
}

// New creates a scheduler for the settlement service.
func New(settlement service.SettlementService, pruner TokenPruner, interval time.Duration) *Scheduler {
	return &Scheduler{
		settlement: settlement,
		pruner:     pruner,
		interval:   interval,
		done:       make(chan struct{}),
	}
}

// Start runs the sweep loop until the context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	log.WithField("interval", s.interval).Info("Starting settlement scheduler")

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("Settlement scheduler stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	run, err := s.settlement.SettlePendingPoints(ctx)
	if err != nil {
		log.WithError(err).Error("Settlement sweep failed")
		return
	}
	log.WithFields(log.Fields{
		"runID":   run.ID,
		"settled": run.EntriesSettled,
		"lapsed":  run.EntriesLapsed,
	}).Debug("Scheduled settlement sweep finished")

	if s.pruner != nil {
		if _, err := s.pruner.PruneExpiredTokens(ctx); err != nil {
			log.WithError(err).Error("Refresh token pruning failed")
		}
	}
}

// Wait blocks until the sweep loop has exited after context cancellation.
func (s *Scheduler) Wait() {
	<-s.done
}
