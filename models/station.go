package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// StationFuel is a fuel offered by a station at a station-specific price.
type StationFuel struct {
	FuelTypeID   int64           `db:"fuel_type_id" json:"fuelTypeId"`
	FuelName     string          `db:"fuel_name" json:"fuelName"`
	Unit         string          `db:"unit" json:"unit"`
	PricePerUnit decimal.Decimal `db:"price_per_unit" json:"pricePerUnit"`
}

// Station is a gas station that fulfills delivery orders.
type Station struct {
	ID        int64         `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	Address   string        `db:"address" json:"address"`
	State     string        `db:"state" json:"state"`
	LGA       string        `db:"lga" json:"lga"`
	Latitude  float64       `db:"latitude" json:"latitude"`
	Longitude float64       `db:"longitude" json:"longitude"`
	Fuels     []StationFuel `db:"-" json:"fuels"`
	Rating    float64       `db:"rating" json:"rating"`
	Verified  bool          `db:"verified" json:"verified"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time     `db:"updated_at" json:"updatedAt"`
}

// StationFilter narrows station listings.
type StationFilter struct {
	Verified *bool
	State    string
	LGA      string
	// Bounding-box radius search; all three must be set to apply.
	Latitude  *float64
	Longitude *float64
	RadiusKM  *float64
}
