package metrics

import (
	"context"
	"testing"
	"time"

	"gaznger/events"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRegisterEventMetrics_SettlementDirections(t *testing.T) {
	bus := events.NewBus()
	RegisterEventMetrics(bus)
	ctx := context.Background()

	earnedBefore := testutil.ToFloat64(SettlementPointsApplied.WithLabelValues("earned"))
	redeemedBefore := testutil.ToFloat64(SettlementPointsApplied.WithLabelValues("redeemed"))
	runsBefore := testutil.ToFloat64(SettlementRuns)

	bus.Emit(ctx, events.SettlementCompleteEvent{RunID: 1, EntriesSettled: 2, PointsApplied: 70})
	// A redeem-heavy sweep has a negative net; it must still be recorded.
	bus.Emit(ctx, events.SettlementCompleteEvent{RunID: 2, EntriesSettled: 1, PointsApplied: -40})

	assert.Eventually(t, func() bool {
		return testutil.ToFloat64(SettlementRuns) == runsBefore+2
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, earnedBefore+70, testutil.ToFloat64(SettlementPointsApplied.WithLabelValues("earned")))
	assert.Equal(t, redeemedBefore+40, testutil.ToFloat64(SettlementPointsApplied.WithLabelValues("redeemed")))
}
