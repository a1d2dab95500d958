package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/events"
	"gaznger/service"

	"github.com/jackc/pgx/v5"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db               *database.DB
	tx               pgx.Tx
	ctx              context.Context
	transactionalBus *events.TransactionalBus

	userRepo          service.UserRepository
	pointRepo         service.PointRepository
	settlementRunRepo service.SettlementRunRepository
	fuelTypeRepo      service.FuelTypeRepository
	stationRepo       service.StationRepository
	orderRepo         service.OrderRepository
	ratingRepo        service.RatingRepository
	notificationRepo  service.NotificationRepository
	refreshTokenRepo  service.RefreshTokenRepository
	addressRepo       service.AddressRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	u.userRepo = newUserRepositoryWithTx(tx)
	u.pointRepo = newPointRepositoryWithTx(tx)
	u.settlementRunRepo = newSettlementRunRepositoryWithTx(tx)
	u.fuelTypeRepo = newFuelTypeRepositoryWithTx(tx)
	u.stationRepo = newStationRepositoryWithTx(tx)
	u.orderRepo = newOrderRepositoryWithTx(tx)
	u.ratingRepo = newRatingRepositoryWithTx(tx)
	u.notificationRepo = newNotificationRepositoryWithTx(tx)
	u.refreshTokenRepo = newRefreshTokenRepositoryWithTx(tx)
	u.addressRepo = newAddressRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction and flushes pending events
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction and discards pending events.
// Safe to call after Commit; it becomes a no-op.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

func (u *unitOfWork) PointRepository() service.PointRepository {
	if u.pointRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.pointRepo
}

func (u *unitOfWork) SettlementRunRepository() service.SettlementRunRepository {
	if u.settlementRunRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.settlementRunRepo
}

func (u *unitOfWork) FuelTypeRepository() service.FuelTypeRepository {
	if u.fuelTypeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.fuelTypeRepo
}

func (u *unitOfWork) StationRepository() service.StationRepository {
	if u.stationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.stationRepo
}

func (u *unitOfWork) OrderRepository() service.OrderRepository {
	if u.orderRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.orderRepo
}

func (u *unitOfWork) RatingRepository() service.RatingRepository {
	if u.ratingRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ratingRepo
}

func (u *unitOfWork) NotificationRepository() service.NotificationRepository {
	if u.notificationRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.notificationRepo
}

func (u *unitOfWork) RefreshTokenRepository() service.RefreshTokenRepository {
	if u.refreshTokenRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.refreshTokenRepo
}

func (u *unitOfWork) AddressRepository() service.AddressRepository {
	if u.addressRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.addressRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
