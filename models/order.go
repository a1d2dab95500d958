package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the delivery state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusInTransit OrderStatus = "in-transit"
	OrderStatusDelivered OrderStatus = "delivered"
)

// ValidOrderStatus reports whether s is a known order status.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusInTransit, OrderStatusDelivered:
		return true
	}
	return false
}

// Order is a fuel delivery order.
type Order struct {
	ID                int64           `db:"id" json:"id"`
	UserID            int64           `db:"user_id" json:"userId"`
	FuelTypeID        int64           `db:"fuel_type_id" json:"fuelTypeId"`
	StationID         int64           `db:"station_id" json:"stationId"`
	Quantity          decimal.Decimal `db:"quantity" json:"quantity"`
	Unit              string          `db:"unit" json:"unit"`
	TotalPrice        decimal.Decimal `db:"total_price" json:"totalPrice"`
	Status            OrderStatus     `db:"status" json:"status"`
	DeliveryAddressID int64           `db:"delivery_address_id" json:"deliveryAddressId"`
	CreatedAt         time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updatedAt"`
}
