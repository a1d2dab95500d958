package service

import (
	"context"
	"testing"
	"time"

	"gaznger/config"
	"gaznger/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testRewards() config.RewardConfig {
	return config.RewardConfig{
		OrderPlaced:       50,
		OrderDelivered:    100,
		RatingSubmitted:   20,
		OrderPlacedHold:   24 * time.Hour,
		OrderPlacedExpiry: 30 * 24 * time.Hour,
	}
}

func TestOrderService_PlaceOrder(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	fuel := &models.FuelType{ID: 1, Name: "Petrol", Unit: "L", PricePerUnit: decimal.NewFromInt(650)}
	station := &models.Station{ID: 5, Fuels: []models.StationFuel{
		{FuelTypeID: 1, PricePerUnit: decimal.NewFromInt(700)},
	}}
	addr := &models.Address{ID: 9, UserID: 42}

	uow.FuelTypeRepo.On("GetByID", ctx, int64(1)).Return(fuel, nil)
	uow.StationRepo.On("GetByID", ctx, int64(5)).Return(station, nil)
	uow.AddressRepo.On("GetByID", ctx, int64(9)).Return(addr, nil)
	uow.OrderRepo.On("Create", ctx, mock.MatchedBy(func(o *models.Order) bool {
		// Station price wins over the catalog price: 10 * 700.
		return o.UserID == 42 &&
			o.Status == models.OrderStatusPending &&
			o.TotalPrice.Equal(decimal.NewFromInt(7000))
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Order).ID = 77
	}).Return(nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.UserID == 42 && e.Change == 50 && !e.Settled &&
			e.PendingUntil != nil && e.ExpiresAt != nil
	})).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()
	uow.Publisher.On("Publish", mock.AnythingOfType("events.OrderPlacedEvent")).Return()

	order, err := service.PlaceOrder(ctx, PlaceOrderRequest{
		UserID:            42,
		FuelTypeID:        1,
		StationID:         5,
		Quantity:          "10",
		DeliveryAddressID: 9,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(77), order.ID)
	assert.True(t, uow.Committed)

	// The placement award is pending; the balance must not move yet.
	uow.UserRepo.AssertNotCalled(t, "ApplyPointsDelta", mock.Anything, mock.Anything, mock.Anything)
	uow.Publisher.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_InvalidQuantity(t *testing.T) {
	ctx := context.Background()

	service := NewOrderService(NewMockUnitOfWorkFactory(NewMockUnitOfWork()), testRewards())

	for _, quantity := range []string{"", "abc", "0", "-5"} {
		_, err := service.PlaceOrder(ctx, PlaceOrderRequest{
			UserID:     42,
			Quantity:   quantity,
			FuelTypeID: 1,
			StationID:  5,
		})
		assert.ErrorIs(t, err, ErrInvalidInput, "quantity %q", quantity)
	}
}

func TestOrderService_PlaceOrder_ForeignAddressRejected(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	fuel := &models.FuelType{ID: 1, Unit: "L", PricePerUnit: decimal.NewFromInt(650)}

	uow.FuelTypeRepo.On("GetByID", ctx, int64(1)).Return(fuel, nil)
	uow.StationRepo.On("GetByID", ctx, int64(5)).Return(&models.Station{ID: 5}, nil)
	uow.AddressRepo.On("GetByID", ctx, int64(9)).Return(&models.Address{ID: 9, UserID: 7}, nil)

	_, err := service.PlaceOrder(ctx, PlaceOrderRequest{
		UserID:            42,
		FuelTypeID:        1,
		StationID:         5,
		Quantity:          "10",
		DeliveryAddressID: 9,
	})

	assert.ErrorIs(t, err, ErrAddressNotFound)
	uow.OrderRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_Delivered(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	order := &models.Order{ID: 77, UserID: 42, Status: models.OrderStatusInTransit}

	uow.OrderRepo.On("GetByID", ctx, int64(77)).Return(order, nil)
	uow.OrderRepo.On("UpdateStatus", ctx, int64(77), models.OrderStatusDelivered).Return(nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.UserID == 42 && e.Change == 100 && e.Settled
	})).Return(nil)
	uow.UserRepo.On("ApplyPointsDelta", ctx, int64(42), int64(100)).Return(int64(150), nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()
	uow.Publisher.On("Publish", mock.AnythingOfType("events.OrderStatusChangeEvent")).Return()

	updated, err := service.UpdateStatus(ctx, 77, models.OrderStatusDelivered)

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)

	uow.UserRepo.AssertExpectations(t)
	uow.Publisher.AssertExpectations(t)
}

func TestOrderService_UpdateStatus_InTransitGrantsNothing(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	order := &models.Order{ID: 77, UserID: 42, Status: models.OrderStatusPending}

	uow.OrderRepo.On("GetByID", ctx, int64(77)).Return(order, nil)
	uow.OrderRepo.On("UpdateStatus", ctx, int64(77), models.OrderStatusInTransit).Return(nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.OrderStatusChangeEvent")).Return()

	_, err := service.UpdateStatus(ctx, 77, models.OrderStatusInTransit)

	require.NoError(t, err)
	uow.PointRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_DeliveredIsTerminal(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	order := &models.Order{ID: 77, UserID: 42, Status: models.OrderStatusDelivered}

	uow.OrderRepo.On("GetByID", ctx, int64(77)).Return(order, nil)

	_, err := service.UpdateStatus(ctx, 77, models.OrderStatusInTransit)

	assert.ErrorIs(t, err, ErrInvalidStatus)
	uow.OrderRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_UpdateStatus_UnknownStatus(t *testing.T) {
	ctx := context.Background()

	service := NewOrderService(NewMockUnitOfWorkFactory(NewMockUnitOfWork()), testRewards())

	_, err := service.UpdateStatus(ctx, 77, models.OrderStatus("teleported"))

	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestOrderService_RateOrder(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	order := &models.Order{ID: 77, UserID: 42, StationID: 5, Status: models.OrderStatusDelivered}

	uow.OrderRepo.On("GetByID", ctx, int64(77)).Return(order, nil)
	uow.RatingRepo.On("Create", ctx, mock.MatchedBy(func(r *models.Rating) bool {
		return r.UserID == 42 && r.StationID == 5 && r.OrderID == 77 && r.Score == 4
	})).Return(nil)
	uow.RatingRepo.On("AverageForStation", ctx, int64(5)).Return(4.2, nil)
	uow.StationRepo.On("UpdateRating", ctx, int64(5), 4.2).Return(nil)
	uow.PointRepo.On("Insert", ctx, mock.MatchedBy(func(e *models.PointEntry) bool {
		return e.Change == 20 && e.Settled
	})).Return(nil)
	uow.UserRepo.On("ApplyPointsDelta", ctx, int64(42), int64(20)).Return(int64(170), nil)
	uow.Publisher.On("Publish", mock.AnythingOfType("events.PointsChangeEvent")).Return()

	rating, err := service.RateOrder(ctx, 77, 42, 4, "fast delivery")

	require.NoError(t, err)
	assert.Equal(t, 4, rating.Score)

	uow.StationRepo.AssertExpectations(t)
}

func TestOrderService_RateOrder_NotDelivered(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	order := &models.Order{ID: 77, UserID: 42, Status: models.OrderStatusInTransit}

	uow.OrderRepo.On("GetByID", ctx, int64(77)).Return(order, nil)

	_, err := service.RateOrder(ctx, 77, 42, 5, "")

	assert.ErrorIs(t, err, ErrOrderNotDelivered)
}

func TestOrderService_RateOrder_WrongUser(t *testing.T) {
	ctx := context.Background()

	uow := NewMockUnitOfWork()
	service := NewOrderService(NewMockUnitOfWorkFactory(uow), testRewards())

	order := &models.Order{ID: 77, UserID: 7, Status: models.OrderStatusDelivered}

	uow.OrderRepo.On("GetByID", ctx, int64(77)).Return(order, nil)

	_, err := service.RateOrder(ctx, 77, 42, 5, "")

	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderService_RateOrder_ScoreOutOfRange(t *testing.T) {
	ctx := context.Background()

	service := NewOrderService(NewMockUnitOfWorkFactory(NewMockUnitOfWork()), testRewards())

	for _, score := range []int{0, 6, -1} {
		_, err := service.RateOrder(ctx, 77, 42, score, "")
		assert.ErrorIs(t, err, ErrInvalidInput, "score %d", score)
	}
}
