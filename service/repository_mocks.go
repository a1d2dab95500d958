package service

import (
	"context"
	"time"

	"gaznger/events"
	"gaznger/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) ApplyPointsDelta(ctx context.Context, userID int64, delta int64) (int64, error) {
	args := m.Called(ctx, userID, delta)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetPoints(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) AddDeviceToken(ctx context.Context, userID int64, token string) error {
	args := m.Called(ctx, userID, token)
	return args.Error(0)
}

// MockPointRepository is a mock implementation of PointRepository
type MockPointRepository struct {
	mock.Mock
}

func (m *MockPointRepository) Insert(ctx context.Context, entry *models.PointEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockPointRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointEntry, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointEntry), args.Error(1)
}

func (m *MockPointRepository) ListEligibleUnsettled(ctx context.Context, now time.Time) ([]*models.PointEntry, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PointEntry), args.Error(1)
}

func (m *MockPointRepository) MarkSettled(ctx context.Context, entryID int64) (bool, error) {
	args := m.Called(ctx, entryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPointRepository) MarkLapsed(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPointRepository) SumEligible(ctx context.Context, userID int64, now time.Time) (int64, error) {
	args := m.Called(ctx, userID, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockSettlementRunRepository is a mock implementation of SettlementRunRepository
type MockSettlementRunRepository struct {
	mock.Mock
}

func (m *MockSettlementRunRepository) Create(ctx context.Context, run *models.SettlementRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockSettlementRunRepository) GetLatest(ctx context.Context) (*models.SettlementRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SettlementRun), args.Error(1)
}

// MockFuelTypeRepository is a mock implementation of FuelTypeRepository
type MockFuelTypeRepository struct {
	mock.Mock
}

func (m *MockFuelTypeRepository) GetByID(ctx context.Context, id int64) (*models.FuelType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FuelType), args.Error(1)
}

func (m *MockFuelTypeRepository) GetByName(ctx context.Context, name string) (*models.FuelType, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FuelType), args.Error(1)
}

func (m *MockFuelTypeRepository) GetAll(ctx context.Context) ([]*models.FuelType, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.FuelType), args.Error(1)
}

func (m *MockFuelTypeRepository) Create(ctx context.Context, fuel *models.FuelType) error {
	args := m.Called(ctx, fuel)
	return args.Error(0)
}

// MockStationRepository is a mock implementation of StationRepository
type MockStationRepository struct {
	mock.Mock
}

func (m *MockStationRepository) List(ctx context.Context, filter models.StationFilter) ([]*models.Station, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Station), args.Error(1)
}

func (m *MockStationRepository) GetByID(ctx context.Context, id int64) (*models.Station, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Station), args.Error(1)
}

func (m *MockStationRepository) Create(ctx context.Context, station *models.Station) error {
	args := m.Called(ctx, station)
	return args.Error(0)
}

func (m *MockStationRepository) UpdateRating(ctx context.Context, stationID int64, rating float64) error {
	args := m.Called(ctx, stationID, rating)
	return args.Error(0)
}

// MockOrderRepository is a mock implementation of OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, order *models.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Order), args.Error(1)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	args := m.Called(ctx, orderID, status)
	return args.Error(0)
}

// MockRatingRepository is a mock implementation of RatingRepository
type MockRatingRepository struct {
	mock.Mock
}

func (m *MockRatingRepository) Create(ctx context.Context, rating *models.Rating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingRepository) AverageForStation(ctx context.Context, stationID int64) (float64, error) {
	args := m.Called(ctx, stationID)
	return args.Get(0).(float64), args.Error(1)
}

// MockNotificationRepository is a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockRefreshTokenRepository is a mock implementation of RefreshTokenRepository
type MockRefreshTokenRepository struct {
	mock.Mock
}

func (m *MockRefreshTokenRepository) Create(ctx context.Context, token *models.RefreshToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) GetByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefreshToken), args.Error(1)
}

func (m *MockRefreshTokenRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockRefreshTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockAddressRepository is a mock implementation of AddressRepository
type MockAddressRepository struct {
	mock.Mock
}

func (m *MockAddressRepository) Create(ctx context.Context, addr *models.Address) error {
	args := m.Called(ctx, addr)
	return args.Error(0)
}

func (m *MockAddressRepository) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Address), args.Error(1)
}

func (m *MockAddressRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Address, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Address), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockPushSender is a mock implementation of PushSender
type MockPushSender struct {
	mock.Mock
}

func (m *MockPushSender) Send(ctx context.Context, deviceTokens []string, title, body string) error {
	args := m.Called(ctx, deviceTokens, title, body)
	return args.Error(0)
}

// MockUnitOfWork is a lightweight UnitOfWork double. Begin, Commit and
// Rollback always succeed; repository getters return the configured mocks.
type MockUnitOfWork struct {
	UserRepo          *MockUserRepository
	PointRepo         *MockPointRepository
	SettlementRunRepo *MockSettlementRunRepository
	FuelTypeRepo      *MockFuelTypeRepository
	StationRepo       *MockStationRepository
	OrderRepo         *MockOrderRepository
	RatingRepo        *MockRatingRepository
	NotificationRepo  *MockNotificationRepository
	RefreshTokenRepo  *MockRefreshTokenRepository
	AddressRepo       *MockAddressRepository
	Publisher         *MockEventPublisher

	Begun      bool
	Committed  bool
	RolledBack bool
}

// NewMockUnitOfWork creates a MockUnitOfWork with fresh repository mocks.
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		UserRepo:          new(MockUserRepository),
		PointRepo:         new(MockPointRepository),
		SettlementRunRepo: new(MockSettlementRunRepository),
		FuelTypeRepo:      new(MockFuelTypeRepository),
		StationRepo:       new(MockStationRepository),
		OrderRepo:         new(MockOrderRepository),
		RatingRepo:        new(MockRatingRepository),
		NotificationRepo:  new(MockNotificationRepository),
		RefreshTokenRepo:  new(MockRefreshTokenRepository),
		AddressRepo:       new(MockAddressRepository),
		Publisher:         new(MockEventPublisher),
	}
}

func (u *MockUnitOfWork) Begin(ctx context.Context) error {
	u.Begun = true
	return nil
}

func (u *MockUnitOfWork) Commit() error {
	u.Committed = true
	return nil
}

func (u *MockUnitOfWork) Rollback() error {
	if !u.Committed {
		u.RolledBack = true
	}
	return nil
}

func (u *MockUnitOfWork) UserRepository() UserRepository                   { return u.UserRepo }
func (u *MockUnitOfWork) PointRepository() PointRepository                 { return u.PointRepo }
func (u *MockUnitOfWork) SettlementRunRepository() SettlementRunRepository { return u.SettlementRunRepo }
func (u *MockUnitOfWork) FuelTypeRepository() FuelTypeRepository           { return u.FuelTypeRepo }
func (u *MockUnitOfWork) StationRepository() StationRepository             { return u.StationRepo }
func (u *MockUnitOfWork) OrderRepository() OrderRepository                 { return u.OrderRepo }
func (u *MockUnitOfWork) RatingRepository() RatingRepository               { return u.RatingRepo }
func (u *MockUnitOfWork) NotificationRepository() NotificationRepository   { return u.NotificationRepo }
func (u *MockUnitOfWork) RefreshTokenRepository() RefreshTokenRepository   { return u.RefreshTokenRepo }
func (u *MockUnitOfWork) AddressRepository() AddressRepository             { return u.AddressRepo }
func (u *MockUnitOfWork) EventBus() EventPublisher                         { return u.Publisher }

// MockUnitOfWorkFactory hands out units of work in order, reusing the last
// one once the queue is exhausted.
type MockUnitOfWorkFactory struct {
	queue []*MockUnitOfWork
	next  int
}

// NewMockUnitOfWorkFactory creates a factory that serves the given units.
func NewMockUnitOfWorkFactory(uows ...*MockUnitOfWork) *MockUnitOfWorkFactory {
	return &MockUnitOfWorkFactory{queue: uows}
}

func (f *MockUnitOfWorkFactory) Create() UnitOfWork {
	if len(f.queue) == 0 {
		panic("mock unit of work factory is empty")
	}
	uow := f.queue[f.next]
	if f.next < len(f.queue)-1 {
		f.next++
	}
	return uow
}
