package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/models"

	"github.com/jackc/pgx/v5"
)

// AddressRepository implements the service.AddressRepository interface
type AddressRepository struct {
	q queryable
}

// NewAddressRepository creates a new address repository
func NewAddressRepository(db *database.DB) *AddressRepository {
	return &AddressRepository{q: db.Pool}
}

// newAddressRepositoryWithTx creates a new address repository with a transaction
func newAddressRepositoryWithTx(tx queryable) *AddressRepository {
	return &AddressRepository{q: tx}
}

// Create stores a delivery address
func (r *AddressRepository) Create(ctx context.Context, addr *models.Address) error {
	query := `
		INSERT INTO addresses (user_id, label, street, city, state, country, postal_code, latitude, longitude)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		addr.UserID,
		addr.Label,
		addr.Street,
		addr.City,
		addr.State,
		addr.Country,
		addr.PostalCode,
		addr.Latitude,
		addr.Longitude,
	).Scan(&addr.ID, &addr.CreatedAt, &addr.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create address for user %d: %w", addr.UserID, err)
	}

	return nil
}

// GetByID retrieves an address by ID, returning (nil, nil) when absent
func (r *AddressRepository) GetByID(ctx context.Context, id int64) (*models.Address, error) {
	query := `
		SELECT id, user_id, label, street, city, state, country, postal_code, latitude, longitude, created_at, updated_at
		FROM addresses
		WHERE id = $1
	`

	var addr models.Address
	err := r.q.QueryRow(ctx, query, id).Scan(
		&addr.ID,
		&addr.UserID,
		&addr.Label,
		&addr.Street,
		&addr.City,
		&addr.State,
		&addr.Country,
		&addr.PostalCode,
		&addr.Latitude,
		&addr.Longitude,
		&addr.CreatedAt,
		&addr.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get address %d: %w", id, err)
	}

	return &addr, nil
}

// GetByUser returns a user's address book
func (r *AddressRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Address, error) {
	query := `
		SELECT id, user_id, label, street, city, state, country, postal_code, latitude, longitude, created_at, updated_at
		FROM addresses
		WHERE user_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get addresses for user %d: %w", userID, err)
	}
	defer rows.Close()

	var addresses []*models.Address
	for rows.Next() {
		var addr models.Address
		err := rows.Scan(
			&addr.ID,
			&addr.UserID,
			&addr.Label,
			&addr.Street,
			&addr.City,
			&addr.State,
			&addr.Country,
			&addr.PostalCode,
			&addr.Latitude,
			&addr.Longitude,
			&addr.CreatedAt,
			&addr.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, &addr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate addresses: %w", err)
	}

	return addresses, nil
}
