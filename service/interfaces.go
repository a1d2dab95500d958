package service

import (
	"context"
	"time"

	"gaznger/events"
	"gaznger/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by ID, (nil, nil) when absent
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by email, (nil, nil) when absent
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// Create creates a new user; points start at zero
	Create(ctx context.Context, user *models.User) error

	// ApplyPointsDelta atomically applies a signed change to the cached
	// balance, clamped at zero, and returns the resulting balance.
	// Returns ErrUserNotFound if the user does not exist.
	ApplyPointsDelta(ctx context.Context, userID int64, delta int64) (int64, error)

	// GetPoints returns the cached point balance
	GetPoints(ctx context.Context, userID int64) (int64, error)

	// AddDeviceToken registers a push device token, ignoring duplicates
	AddDeviceToken(ctx context.Context, userID int64, token string) error
}

// PointRepository defines the interface for the append-only point ledger
type PointRepository interface {
	// Insert appends a ledger entry
	Insert(ctx context.Context, entry *models.PointEntry) error

	// GetByUser returns ledger entries for a user, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PointEntry, error)

	// ListEligibleUnsettled returns unsettled entries whose pending window
	// has opened and which have not expired as of now
	ListEligibleUnsettled(ctx context.Context, now time.Time) ([]*models.PointEntry, error)

	// MarkSettled claims an entry for settlement; false means another
	// sweep already settled it
	MarkSettled(ctx context.Context, entryID int64) (bool, error)

	// MarkLapsed terminally marks expired unsettled entries, returning the count
	MarkLapsed(ctx context.Context, now time.Time) (int64, error)

	// SumEligible computes the effective balance from the ledger
	SumEligible(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// SettlementRunRepository defines the interface for settlement sweep bookkeeping
type SettlementRunRepository interface {
	// Create records a completed settlement sweep
	Create(ctx context.Context, run *models.SettlementRun) error

	// GetLatest returns the most recent run, (nil, nil) if none
	GetLatest(ctx context.Context) (*models.SettlementRun, error)
}

// FuelTypeRepository defines the interface for the fuel catalog
type FuelTypeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.FuelType, error)
	GetByName(ctx context.Context, name string) (*models.FuelType, error)
	GetAll(ctx context.Context) ([]*models.FuelType, error)
	Create(ctx context.Context, fuel *models.FuelType) error
}

// StationRepository defines the interface for gas station data access
type StationRepository interface {
	List(ctx context.Context, filter models.StationFilter) ([]*models.Station, error)
	GetByID(ctx context.Context, id int64) (*models.Station, error)
	Create(ctx context.Context, station *models.Station) error
	UpdateRating(ctx context.Context, stationID int64, rating float64) error
}

// OrderRepository defines the interface for order data access
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id int64) (*models.Order, error)
	GetByUser(ctx context.Context, userID int64) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

// RatingRepository defines the interface for station rating data access
type RatingRepository interface {
	Create(ctx context.Context, rating *models.Rating) error
	AverageForStation(ctx context.Context, stationID int64) (float64, error)
}

// NotificationRepository defines the interface for notification data access
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
}

// RefreshTokenRepository defines the interface for stored refresh tokens
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Delete(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// AddressRepository defines the interface for address book data access
type AddressRepository interface {
	Create(ctx context.Context, addr *models.Address) error
	GetByID(ctx context.Context, id int64) (*models.Address, error)
	GetByUser(ctx context.Context, userID int64) ([]*models.Address, error)
}

// EventPublisher publishes events that are flushed after commit
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transaction-scoped repositories
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	PointRepository() PointRepository
	SettlementRunRepository() SettlementRunRepository
	FuelTypeRepository() FuelTypeRepository
	StationRepository() StationRepository
	OrderRepository() OrderRepository
	RatingRepository() RatingRepository
	NotificationRepository() NotificationRepository
	RefreshTokenRepository() RefreshTokenRepository
	AddressRepository() AddressRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AwardRequest carries the inputs of a single point award or adjustment.
type AwardRequest struct {
	UserID       int64
	Change       int64
	Kind         models.PointKind // derived from the sign of Change when empty
	Description  string
	PendingUntil *time.Time
	ExpiresAt    *time.Time
}

// HistoryEntry is a ledger entry with its derived display status.
type HistoryEntry struct {
	Entry  *models.PointEntry
	Status models.PointStatus
}

// PointsService defines the points ledger operations
type PointsService interface {
	// Award appends a ledger entry and, unless the entry is pending,
	// applies its effect to the cached balance. Returns the resulting
	// balance (unchanged for pending awards) and the entry.
	Award(ctx context.Context, req AwardRequest) (int64, *models.PointEntry, error)

	// GetBalance returns the cached point balance
	GetBalance(ctx context.Context, userID int64) (int64, error)

	// GetHistory returns ledger entries with derived display status, newest first
	GetHistory(ctx context.Context, userID int64, limit int) ([]HistoryEntry, error)

	// EffectiveBalance recomputes the balance from the ledger; audit/
	// consistency-check read path
	EffectiveBalance(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// SettlementService defines the pending point settlement sweep
type SettlementService interface {
	// SettlePendingPoints folds every eligible pending entry into its
	// owner's cached balance exactly once and records a run. Idempotent
	// and safe to invoke concurrently with itself.
	SettlePendingPoints(ctx context.Context) (*models.SettlementRun, error)

	// LastRun returns the most recent recorded run, (nil, nil) if none
	LastRun(ctx context.Context) (*models.SettlementRun, error)
}

// TokenPair is an issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// RegisterRequest carries registration inputs.
type RegisterRequest struct {
	Email        string
	Phone        string
	Password     string
	DisplayName  string
	Gender       string
	ProfileImage string
}

// AuthService defines registration and session management
type AuthService interface {
	Register(ctx context.Context, req RegisterRequest) (*models.User, *TokenPair, error)
	Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Logout(ctx context.Context, refreshToken string) error

	// PruneExpiredTokens deletes refresh tokens past their expiry and
	// returns how many were removed
	PruneExpiredTokens(ctx context.Context) (int64, error)
}

// PlaceOrderRequest carries order placement inputs.
type PlaceOrderRequest struct {
	UserID            int64
	FuelTypeID        int64
	StationID         int64
	Quantity          string // decimal string, validated by the service
	DeliveryAddressID int64
}

// OrderService defines order lifecycle operations
type OrderService interface {
	PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	GetUserOrders(ctx context.Context, userID int64) ([]*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) (*models.Order, error)
	RateOrder(ctx context.Context, orderID, userID int64, score int, comment string) (*models.Rating, error)
}

// StationService defines catalog operations for stations and fuel types
type StationService interface {
	ListStations(ctx context.Context, filter models.StationFilter) ([]*models.Station, error)
	GetStation(ctx context.Context, id int64) (*models.Station, error)
	CreateStation(ctx context.Context, station *models.Station) error
	ListFuelTypes(ctx context.Context) ([]*models.FuelType, error)
	CreateFuelType(ctx context.Context, fuel *models.FuelType) error
}

// UserService defines profile, address book and device operations
type UserService interface {
	GetProfile(ctx context.Context, userID int64) (*models.User, error)
	SaveAddress(ctx context.Context, addr *models.Address) error
	GetAddresses(ctx context.Context, userID int64) ([]*models.Address, error)
	RegisterDevice(ctx context.Context, userID int64, token string) error
}

// PushSender delivers a push payload for a set of device tokens. The
// concrete implementation hands the payload to the delivery worker queue.
type PushSender interface {
	Send(ctx context.Context, deviceTokens []string, title, body string) error
}

// NotificationService defines in-app notification operations
type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error)
	MarkRead(ctx context.Context, id int64) error
	Send(ctx context.Context, userID int64, kind models.NotificationType, title, body string, push bool) (*models.Notification, error)
}
