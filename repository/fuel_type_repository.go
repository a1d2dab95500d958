package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// FuelTypeRepository implements the service.FuelTypeRepository interface
type FuelTypeRepository struct {
	q queryable
}

// NewFuelTypeRepository creates a new fuel type repository
func NewFuelTypeRepository(db *database.DB) *FuelTypeRepository {
	return &FuelTypeRepository{q: db.Pool}
}

// newFuelTypeRepositoryWithTx creates a new fuel type repository with a transaction
func newFuelTypeRepositoryWithTx(tx queryable) *FuelTypeRepository {
	return &FuelTypeRepository{q: tx}
}

func scanFuelType(row pgx.Row) (*models.FuelType, error) {
	var fuel models.FuelType
	var price string
	err := row.Scan(&fuel.ID, &fuel.Name, &fuel.Unit, &price, &fuel.CreatedAt, &fuel.UpdatedAt)
	if err != nil {
		return nil, err
	}
	fuel.PricePerUnit, err = decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("invalid price for fuel type %d: %w", fuel.ID, err)
	}
	return &fuel, nil
}

// GetByID retrieves a fuel type by ID, returning (nil, nil) when absent
func (r *FuelTypeRepository) GetByID(ctx context.Context, id int64) (*models.FuelType, error) {
	query := `
		SELECT id, name, unit, price_per_unit::text, created_at, updated_at
		FROM fuel_types
		WHERE id = $1
	`

	fuel, err := scanFuelType(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel type %d: %w", id, err)
	}

	return fuel, nil
}

// GetByName retrieves a fuel type by name, returning (nil, nil) when absent
func (r *FuelTypeRepository) GetByName(ctx context.Context, name string) (*models.FuelType, error) {
	query := `
		SELECT id, name, unit, price_per_unit::text, created_at, updated_at
		FROM fuel_types
		WHERE name = $1
	`

	fuel, err := scanFuelType(r.q.QueryRow(ctx, query, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel type %s: %w", name, err)
	}

	return fuel, nil
}

// GetAll returns all fuel types
func (r *FuelTypeRepository) GetAll(ctx context.Context) ([]*models.FuelType, error) {
	query := `
		SELECT id, name, unit, price_per_unit::text, created_at, updated_at
		FROM fuel_types
		ORDER BY name
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get fuel types: %w", err)
	}
	defer rows.Close()

	var fuels []*models.FuelType
	for rows.Next() {
		fuel, err := scanFuelType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan fuel type: %w", err)
		}
		fuels = append(fuels, fuel)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate fuel types: %w", err)
	}

	return fuels, nil
}

// Create creates a new fuel type
func (r *FuelTypeRepository) Create(ctx context.Context, fuel *models.FuelType) error {
	query := `
		INSERT INTO fuel_types (name, unit, price_per_unit)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, fuel.Name, fuel.Unit, fuel.PricePerUnit.String()).
		Scan(&fuel.ID, &fuel.CreatedAt, &fuel.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create fuel type %s: %w", fuel.Name, err)
	}

	return nil
}
