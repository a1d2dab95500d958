package service

import (
	"context"
	"fmt"

	"gaznger/models"
)

type stationService struct {
	uowFactory UnitOfWorkFactory
}

// NewStationService creates a new station service
func NewStationService(uowFactory UnitOfWorkFactory) StationService {
	return &stationService{
		uowFactory: uowFactory,
	}
}

func (s *stationService) ListStations(ctx context.Context, filter models.StationFilter) ([]*models.Station, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stations, err := uow.StationRepository().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list stations: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return stations, nil
}

func (s *stationService) GetStation(ctx context.Context, id int64) (*models.Station, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	station, err := uow.StationRepository().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get station: %w", err)
	}
	if station == nil {
		return nil, ErrStationNotFound
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return station, nil
}

func (s *stationService) CreateStation(ctx context.Context, station *models.Station) error {
	if station.Name == "" || station.Address == "" {
		return fmt.Errorf("%w: name and address are required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Every listed fuel must exist in the catalog.
	for i, sf := range station.Fuels {
		fuel, err := uow.FuelTypeRepository().GetByID(ctx, sf.FuelTypeID)
		if err != nil {
			return fmt.Errorf("failed to get fuel type: %w", err)
		}
		if fuel == nil {
			return ErrFuelTypeNotFound
		}
		station.Fuels[i].FuelName = fuel.Name
		station.Fuels[i].Unit = fuel.Unit
	}

	if err := uow.StationRepository().Create(ctx, station); err != nil {
		return fmt.Errorf("failed to create station: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *stationService) ListFuelTypes(ctx context.Context) ([]*models.FuelType, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	fuels, err := uow.FuelTypeRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list fuel types: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return fuels, nil
}

func (s *stationService) CreateFuelType(ctx context.Context, fuel *models.FuelType) error {
	if fuel.Name == "" || fuel.Unit == "" || !fuel.PricePerUnit.IsPositive() {
		return fmt.Errorf("%w: name, unit and a positive price are required", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.FuelTypeRepository().GetByName(ctx, fuel.Name)
	if err != nil {
		return fmt.Errorf("failed to check fuel type: %w", err)
	}
	if existing != nil {
		return ErrFuelTypeExists
	}

	if err := uow.FuelTypeRepository().Create(ctx, fuel); err != nil {
		return fmt.Errorf("failed to create fuel type: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
