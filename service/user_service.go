package service

import (
	"context"
	"fmt"

	"gaznger/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int64) (*models.User, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return user, nil
}

func (s *userService) SaveAddress(ctx context.Context, addr *models.Address) error {
	if addr.Street == "" || addr.City == "" {
		return fmt.Errorf("%w: street and city are required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.AddressRepository().Create(ctx, addr); err != nil {
		return fmt.Errorf("failed to create address: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *userService) GetAddresses(ctx context.Context, userID int64) ([]*models.Address, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	addresses, err := uow.AddressRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return addresses, nil
}

func (s *userService) RegisterDevice(ctx context.Context, userID int64, token string) error {
	if token == "" {
		return fmt.Errorf("%w: device token is required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.UserRepository().AddDeviceToken(ctx, userID, token); err != nil {
		return fmt.Errorf("failed to add device token: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
