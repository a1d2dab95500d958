package repository

import (
	"context"
	"fmt"

	"gaznger/database"
	"gaznger/models"
	"gaznger/service"
)

// NotificationRepository implements the service.NotificationRepository interface
type NotificationRepository struct {
	q queryable
}

// NewNotificationRepository creates a new notification repository
func NewNotificationRepository(db *database.DB) *NotificationRepository {
	return &NotificationRepository{q: db.Pool}
}

// newNotificationRepositoryWithTx creates a new notification repository with a transaction
func newNotificationRepositoryWithTx(tx queryable) *NotificationRepository {
	return &NotificationRepository{q: tx}
}

// Create stores a notification
func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (user_id, type, title, body)
		VALUES ($1, $2, $3, $4)
		RETURNING id, read, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, n.UserID, n.Type, n.Title, n.Body).
		Scan(&n.ID, &n.Read, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification for user %d: %w", n.UserID, err)
	}

	return nil
}

// GetByUser returns a user's notifications, newest first
func (r *NotificationRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	query := `
		SELECT id, user_id, type, title, body, read, created_at, updated_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications for user %d: %w", userID, err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		var n models.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &n.Read, &n.CreatedAt, &n.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}

	return notifications, nil
}

// MarkRead flags a notification as read
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx,
		`UPDATE notifications SET read = TRUE, updated_at = NOW() WHERE id = $1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification %d read: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return service.ErrNotificationNotFound
	}
	return nil
}
