package models

import (
	"time"
)

// Rating is a user's score for a station, tied to a delivered order.
type Rating struct {
	ID        int64     `db:"id" json:"id"`
	UserID    int64     `db:"user_id" json:"userId"`
	StationID int64     `db:"station_id" json:"stationId"`
	OrderID   int64     `db:"order_id" json:"orderId"`
	Score     int       `db:"score" json:"score"`
	Comment   string    `db:"comment" json:"comment,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
