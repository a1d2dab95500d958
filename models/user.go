package models

import (
	"time"
)

// Gender values accepted at registration.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Default profile images assigned at registration when none is supplied.
const (
	DefaultMaleImage   = "https://avatar.iran.liara.run/public/19"
	DefaultFemaleImage = "https://avatar.iran.liara.run/public/57"
)

// User represents a registered customer with a cached loyalty point balance.
// Points is denormalized from the ledger and is never negative; it is mutated
// only by the points service and the settlement sweep.
type User struct {
	ID           int64     `db:"id"`
	Email        string    `db:"email"`
	Phone        string    `db:"phone"`
	PasswordHash string    `db:"password_hash"`
	DisplayName  string    `db:"display_name"`
	Gender       string    `db:"gender"`
	ProfileImage string    `db:"profile_image"`
	Points       int64     `db:"points"`
	DeviceTokens []string  `db:"device_tokens"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// DefaultProfileImage returns the placeholder avatar for a gender.
func DefaultProfileImage(gender string) string {
	if gender == GenderFemale {
		return DefaultFemaleImage
	}
	return DefaultMaleImage
}
