package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/models"
	"gaznger/service"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, fuel_type_id, station_id, quantity::text, unit, total_price::text, status, delivery_address_id, created_at, updated_at`

// OrderRepository implements the service.OrderRepository interface
type OrderRepository struct {
	q queryable
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *database.DB) *OrderRepository {
	return &OrderRepository{q: db.Pool}
}

// newOrderRepositoryWithTx creates a new order repository with a transaction
func newOrderRepositoryWithTx(tx queryable) *OrderRepository {
	return &OrderRepository{q: tx}
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var order models.Order
	var quantity, totalPrice string
	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.FuelTypeID,
		&order.StationID,
		&quantity,
		&order.Unit,
		&totalPrice,
		&order.Status,
		&order.DeliveryAddressID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if order.Quantity, err = decimal.NewFromString(quantity); err != nil {
		return nil, fmt.Errorf("invalid quantity for order %d: %w", order.ID, err)
	}
	if order.TotalPrice, err = decimal.NewFromString(totalPrice); err != nil {
		return nil, fmt.Errorf("invalid total price for order %d: %w", order.ID, err)
	}
	return &order, nil
}

// Create creates a new order in pending status
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	query := `
		INSERT INTO orders (user_id, fuel_type_id, station_id, quantity, unit, total_price, status, delivery_address_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		order.UserID,
		order.FuelTypeID,
		order.StationID,
		order.Quantity.String(),
		order.Unit,
		order.TotalPrice.String(),
		order.Status,
		order.DeliveryAddressID,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create order for user %d: %w", order.UserID, err)
	}

	return nil
}

// GetByID retrieves an order by ID, returning (nil, nil) when absent
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order %d: %w", id, err)
	}

	return order, nil
}

// GetByUser returns a user's orders, newest first
func (r *OrderRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %d: %w", userID, err)
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate orders: %w", err)
	}

	return orders, nil
}

// UpdateStatus updates an order's delivery status
func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error {
	result, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, orderID,
	)
	if err != nil {
		return fmt.Errorf("failed to update status for order %d: %w", orderID, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrOrderNotFound
	}
	return nil
}
