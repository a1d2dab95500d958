package events

import (
	"context"
	"sync"

	"gaznger/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypePointsChange       EventType = "points_change"
	EventTypeUserRegistered     EventType = "user_registered"
	EventTypeOrderPlaced        EventType = "order_placed"
	EventTypeOrderStatusChange  EventType = "order_status_change"
	EventTypeSettlementComplete EventType = "settlement_complete"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// PointsChangeEvent represents a ledger entry being applied to a balance
type PointsChangeEvent struct {
	UserID       int64
	EntryID      int64
	ChangeAmount int64
	NewBalance   int64
	Kind         models.PointKind
	Pending      bool
}

func (e PointsChangeEvent) Type() EventType {
	return EventTypePointsChange
}

// UserRegisteredEvent represents a new user registration
type UserRegisteredEvent struct {
	UserID int64
	Email  string
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// OrderPlacedEvent represents a freshly placed fuel order
type OrderPlacedEvent struct {
	OrderID   int64
	UserID    int64
	StationID int64
}

func (e OrderPlacedEvent) Type() EventType {
	return EventTypeOrderPlaced
}

// OrderStatusChangeEvent represents an order status transition
type OrderStatusChangeEvent struct {
	OrderID   int64
	UserID    int64
	OldStatus models.OrderStatus
	NewStatus models.OrderStatus
}

func (e OrderStatusChangeEvent) Type() EventType {
	return EventTypeOrderStatusChange
}

// SettlementCompleteEvent represents a finished settlement sweep
type SettlementCompleteEvent struct {
	RunID          int64
	EntriesSettled int
	PointsApplied  int64
}

func (e SettlementCompleteEvent) Type() EventType {
	return EventTypeSettlementComplete
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers. Handlers run
// asynchronously so a slow subscriber cannot block the publisher.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for _, handler := range handlers {
		go func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler)
	}
}

// TransactionalBus stashes events published during a unit of work and
// flushes them to the real bus only after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush emits all pending events. Called after a successful commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the request that produced them; do not tie their
	// handling to the transaction context.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events. Called after rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
