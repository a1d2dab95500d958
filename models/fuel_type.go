package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FuelType is a sellable fuel product (Petrol, Diesel, Gas, Oil).
type FuelType struct {
	ID           int64           `db:"id" json:"id"`
	Name         string          `db:"name" json:"name"`
	Unit         string          `db:"unit" json:"unit"` // "L" or "kg"
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"pricePerUnit"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt"`
}
