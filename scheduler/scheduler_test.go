package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gaznger/models"

	"github.com/stretchr/testify/assert"
)

type countingSettlement struct {
	calls atomic.Int64
}

func (c *countingSettlement) SettlePendingPoints(ctx context.Context) (*models.SettlementRun, error) {
	c.calls.Add(1)
	return &models.SettlementRun{StartedAt: time.Now()}, nil
}

func (c *countingSettlement) LastRun(ctx context.Context) (*models.SettlementRun, error) {
	return nil, nil
}

type countingPruner struct {
	calls atomic.Int64
}

func (c *countingPruner) PruneExpiredTokens(ctx context.Context) (int64, error) {
	c.calls.Add(1)
	return 0, nil
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	settlement := &countingSettlement{}
	pruner := &countingPruner{}
	s := New(settlement, pruner, 20*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	s.Start(ctx)

	assert.Eventually(t, func() bool {
		return settlement.calls.Load() >= 3 && pruner.calls.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.Wait()

	after := settlement.calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, settlement.calls.Load(), "no sweeps after stop")
}
