package models

import (
	"time"
)

// RefreshToken is a stored refresh token; presenting a token that has no
// matching row is treated as invalid even if its signature still verifies.
type RefreshToken struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}
