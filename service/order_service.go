package service

import (
	"context"
	"fmt"
	"time"

	"gaznger/config"
	"gaznger/events"
	"gaznger/models"

	log "github.com/sirupsen/logrus"
	"github.com/shopspring/decimal"
)

type orderService struct {
	uowFactory UnitOfWorkFactory
	rewards    config.RewardConfig
}

// NewOrderService creates a new order service
func NewOrderService(uowFactory UnitOfWorkFactory, rewards config.RewardConfig) OrderService {
	return &orderService{
		uowFactory: uowFactory,
		rewards:    rewards,
	}
}

// PlaceOrder creates a fuel order in pending status and records the pending
// loyalty award in the same transaction. The award is held for the configured
// window and lapses if the settlement sweep never sees it before expiry.
func (s *orderService) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error) {
	quantity, err := decimal.NewFromString(req.Quantity)
	if err != nil || !quantity.IsPositive() {
		return nil, fmt.Errorf("%w: quantity must be a positive number", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	fuel, err := uow.FuelTypeRepository().GetByID(ctx, req.FuelTypeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel type: %w", err)
	}
	if fuel == nil {
		return nil, ErrFuelTypeNotFound
	}

	station, err := uow.StationRepository().GetByID(ctx, req.StationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get station: %w", err)
	}
	if station == nil {
		return nil, ErrStationNotFound
	}

	addr, err := uow.AddressRepository().GetByID(ctx, req.DeliveryAddressID)
	if err != nil {
		return nil, fmt.Errorf("failed to get address: %w", err)
	}
	if addr == nil || addr.UserID != req.UserID {
		return nil, ErrAddressNotFound
	}

	// Station-specific pricing wins over the catalog default.
	price := fuel.PricePerUnit
	for _, sf := range station.Fuels {
		if sf.FuelTypeID == fuel.ID {
			price = sf.PricePerUnit
			break
		}
	}

	order := &models.Order{
		UserID:            req.UserID,
		FuelTypeID:        fuel.ID,
		StationID:         station.ID,
		Quantity:          quantity,
		Unit:              fuel.Unit,
		TotalPrice:        quantity.Mul(price),
		Status:            models.OrderStatusPending,
		DeliveryAddressID: addr.ID,
	}
	if err := uow.OrderRepository().Create(ctx, order); err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	if s.rewards.OrderPlaced > 0 {
		now := time.Now()
		pendingUntil := now.Add(s.rewards.OrderPlacedHold)
		expiresAt := now.Add(s.rewards.OrderPlacedExpiry)
		entry := &models.PointEntry{
			UserID:       req.UserID,
			Change:       s.rewards.OrderPlaced,
			Kind:         models.PointKindEarn,
			Description:  fmt.Sprintf("Order #%d placed", order.ID),
			PendingUntil: &pendingUntil,
			ExpiresAt:    &expiresAt,
		}
		if err := uow.PointRepository().Insert(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record order award: %w", err)
		}

		uow.EventBus().Publish(events.PointsChangeEvent{
			UserID:       req.UserID,
			EntryID:      entry.ID,
			ChangeAmount: entry.Change,
			Kind:         entry.Kind,
			Pending:      true,
		})
	}

	uow.EventBus().Publish(events.OrderPlacedEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		StationID: order.StationID,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"orderID":   order.ID,
		"userID":    order.UserID,
		"stationID": order.StationID,
		"total":     order.TotalPrice.String(),
	}).Info("Order placed")

	return order, nil
}

// GetOrder retrieves a single order.
func (s *orderService) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	order, err := uow.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return order, nil
}

// GetUserOrders returns a user's orders, newest first.
func (s *orderService) GetUserOrders(ctx context.Context, userID int64) ([]*models.Order, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	orders, err := uow.OrderRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return orders, nil
}

// UpdateStatus advances an order through the delivery lifecycle. Delivery is
// terminal and grants the delivery award immediately; no hold applies.
func (s *orderService) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error) {
	if !models.ValidOrderStatus(status) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	order, err := uow.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status == models.OrderStatusDelivered {
		return nil, fmt.Errorf("%w: order already delivered", ErrInvalidStatus)
	}
	if order.Status == status {
		return nil, fmt.Errorf("%w: order already %s", ErrInvalidStatus, status)
	}

	if err := uow.OrderRepository().UpdateStatus(ctx, orderID, status); err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}

	oldStatus := order.Status
	order.Status = status

	if status == models.OrderStatusDelivered && s.rewards.OrderDelivered > 0 {
		entry := &models.PointEntry{
			UserID:      order.UserID,
			Change:      s.rewards.OrderDelivered,
			Kind:        models.PointKindEarn,
			Description: fmt.Sprintf("Order #%d delivered", order.ID),
			Settled:     true,
		}
		if err := uow.PointRepository().Insert(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record delivery award: %w", err)
		}
		newBalance, err := uow.UserRepository().ApplyPointsDelta(ctx, order.UserID, entry.Change)
		if err != nil {
			return nil, fmt.Errorf("failed to apply delivery award: %w", err)
		}

		uow.EventBus().Publish(events.PointsChangeEvent{
			UserID:       order.UserID,
			EntryID:      entry.ID,
			ChangeAmount: entry.Change,
			NewBalance:   newBalance,
			Kind:         entry.Kind,
		})
	}

	uow.EventBus().Publish(events.OrderStatusChangeEvent{
		OrderID:   order.ID,
		UserID:    order.UserID,
		OldStatus: oldStatus,
		NewStatus: status,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"orderID":   order.ID,
		"oldStatus": oldStatus,
		"newStatus": status,
	}).Info("Order status updated")

	return order, nil
}

// RateOrder records a station rating for a delivered order, refreshes the
// station's average and grants the rating award immediately.
func (s *orderService) RateOrder(ctx context.Context, orderID, userID int64, score int, comment string) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, fmt.Errorf("%w: score must be between 1 and 5", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	order, err := uow.OrderRepository().GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	if order == nil || order.UserID != userID {
		return nil, ErrOrderNotFound
	}
	if order.Status != models.OrderStatusDelivered {
		return nil, ErrOrderNotDelivered
	}

	rating := &models.Rating{
		UserID:    userID,
		StationID: order.StationID,
		OrderID:   order.ID,
		Score:     score,
		Comment:   comment,
	}
	if err := uow.RatingRepository().Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	avg, err := uow.RatingRepository().AverageForStation(ctx, order.StationID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute station average: %w", err)
	}
	if err := uow.StationRepository().UpdateRating(ctx, order.StationID, avg); err != nil {
		return nil, fmt.Errorf("failed to update station rating: %w", err)
	}

	if s.rewards.RatingSubmitted > 0 {
		entry := &models.PointEntry{
			UserID:      userID,
			Change:      s.rewards.RatingSubmitted,
			Kind:        models.PointKindEarn,
			Description: fmt.Sprintf("Rated order #%d", order.ID),
			Settled:     true,
		}
		if err := uow.PointRepository().Insert(ctx, entry); err != nil {
			return nil, fmt.Errorf("failed to record rating award: %w", err)
		}
		newBalance, err := uow.UserRepository().ApplyPointsDelta(ctx, userID, entry.Change)
		if err != nil {
			return nil, fmt.Errorf("failed to apply rating award: %w", err)
		}

		uow.EventBus().Publish(events.PointsChangeEvent{
			UserID:       userID,
			EntryID:      entry.ID,
			ChangeAmount: entry.Change,
			NewBalance:   newBalance,
			Kind:         entry.Kind,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return rating, nil
}
