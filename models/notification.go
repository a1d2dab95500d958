package models

import (
	"time"
)

// NotificationType classifies a notification.
type NotificationType string

const (
	NotificationTypeOrder   NotificationType = "order"
	NotificationTypeMessage NotificationType = "message"
	NotificationTypePromo   NotificationType = "promo"
)

// ValidNotificationType reports whether t is a known notification type.
func ValidNotificationType(t NotificationType) bool {
	switch t {
	case NotificationTypeOrder, NotificationTypeMessage, NotificationTypePromo:
		return true
	}
	return false
}

// Notification is an in-app message for a user.
type Notification struct {
	ID        int64            `db:"id" json:"id"`
	UserID    int64            `db:"user_id" json:"userId"`
	Type      NotificationType `db:"type" json:"type"`
	Title     string           `db:"title" json:"title"`
	Body      string           `db:"body" json:"body"`
	Read      bool             `db:"read" json:"read"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}
