// Package metrics exposes the application's Prometheus instrumentation,
// served on /metrics by the HTTP server.
package metrics

import (
	"context"

	"gaznger/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var PointEntriesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaznger_point_entries_recorded_total",
	Help: "Ledger entries recorded, by kind.",
}, []string{"kind"})

var SettlementRuns = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gaznger_settlement_runs_total",
	Help: "Completed settlement sweeps.",
})

var SettlementEntriesSettled = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gaznger_settlement_entries_settled_total",
	Help: "Ledger entries folded into balances by the settlement sweep.",
})

// Net points applied per sweep can be negative when redeem entries dominate,
// so the counter carries a direction label instead of a signed value.
var SettlementPointsApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaznger_settlement_points_applied_total",
	Help: "Absolute points applied to balances by the settlement sweep, by direction.",
}, []string{"direction"})

var OrdersPlaced = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gaznger_orders_placed_total",
	Help: "Fuel orders placed.",
})

var UsersRegistered = promauto.NewCounter(prometheus.CounterOpts{
	Name: "gaznger_users_registered_total",
	Help: "Users registered.",
})

var HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "gaznger_http_requests_total",
	Help: "HTTP requests served, by method and status class.",
}, []string{"method", "status"})

// RegisterEventMetrics keeps the business counters current by observing the
// event bus instead of threading counters through every service.
func RegisterEventMetrics(bus *events.Bus) {
	bus.Subscribe(events.EventTypePointsChange, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.PointsChangeEvent); ok {
			PointEntriesRecorded.WithLabelValues(string(e.Kind)).Inc()
		}
	})

	bus.Subscribe(events.EventTypeSettlementComplete, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.SettlementCompleteEvent)
		if !ok {
			return
		}
		SettlementRuns.Inc()
		SettlementEntriesSettled.Add(float64(e.EntriesSettled))
		if e.PointsApplied >= 0 {
			SettlementPointsApplied.WithLabelValues("earned").Add(float64(e.PointsApplied))
		} else {
			SettlementPointsApplied.WithLabelValues("redeemed").Add(float64(-e.PointsApplied))
		}
	})

	bus.Subscribe(events.EventTypeOrderPlaced, func(ctx context.Context, event events.Event) {
		OrdersPlaced.Inc()
	})

	bus.Subscribe(events.EventTypeUserRegistered, func(ctx context.Context, event events.Event) {
		UsersRegistered.Inc()
	})
}
