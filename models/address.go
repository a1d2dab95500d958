package models

import (
	"time"
)

// Address is a saved delivery address in a user's address book.
type Address struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"userId"`
	Label      string    `db:"label" json:"label"` // e.g. "Home", "Office"
	Street     string    `db:"street" json:"street"`
	City       string    `db:"city" json:"city"`
	State      string    `db:"state" json:"state"`
	Country    string    `db:"country" json:"country"`
	PostalCode string    `db:"postal_code" json:"postalCode"`
	Latitude   float64   `db:"latitude" json:"latitude"`
	Longitude  float64   `db:"longitude" json:"longitude"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time `db:"updated_at" json:"updatedAt"`
}
