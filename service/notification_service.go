package service

import (
	"context"
	"fmt"

	"gaznger/events"
	"gaznger/models"

	log "github.com/sirupsen/logrus"
)

type notificationService struct {
	uowFactory UnitOfWorkFactory
	push       PushSender // nil when push delivery is disabled
}

// NewNotificationService creates a new notification service
func NewNotificationService(uowFactory UnitOfWorkFactory, push PushSender) NotificationService {
	return &notificationService{
		uowFactory: uowFactory,
		push:       push,
	}
}

func (s *notificationService) GetUserNotifications(ctx context.Context, userID int64) ([]*models.Notification, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	notifications, err := uow.NotificationRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get notifications: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.NotificationRepository().MarkRead(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Send stores an in-app notification and, when push is requested and
// configured, fans the payload out to the user's registered devices. Push
// failures are logged, never surfaced; the stored notification is the source
// of truth.
func (s *notificationService) Send(ctx context.Context, userID int64, kind models.NotificationType, title, body string, push bool) (*models.Notification, error) {
	if !models.ValidNotificationType(kind) {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, kind)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	n := &models.Notification{
		UserID: userID,
		Type:   kind,
		Title:  title,
		Body:   body,
	}
	if err := uow.NotificationRepository().Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	if push && s.push != nil && len(user.DeviceTokens) > 0 {
		if err := s.push.Send(ctx, user.DeviceTokens, title, body); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"userID":         userID,
				"notificationID": n.ID,
			}).Error("Failed to enqueue push notification")
		}
	}

	return n, nil
}

// RegisterOrderNotifications subscribes order lifecycle notifications on the
// event bus. Events fire after commit, so notifications never reference
// rolled-back orders.
func RegisterOrderNotifications(bus *events.Bus, notifications NotificationService) {
	bus.Subscribe(events.EventTypeOrderPlaced, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.OrderPlacedEvent)
		if !ok {
			return
		}
		_, err := notifications.Send(ctx, e.UserID, models.NotificationTypeOrder,
			"Order placed",
			fmt.Sprintf("Your order #%d has been placed.", e.OrderID),
			true,
		)
		if err != nil {
			log.WithError(err).WithField("orderID", e.OrderID).Error("Failed to send order placed notification")
		}
	})

	bus.Subscribe(events.EventTypeOrderStatusChange, func(ctx context.Context, event events.Event) {
		e, ok := event.(events.OrderStatusChangeEvent)
		if !ok {
			return
		}
		_, err := notifications.Send(ctx, e.UserID, models.NotificationTypeOrder,
			"Order update",
			fmt.Sprintf("Your order #%d is now %s.", e.OrderID, e.NewStatus),
			true,
		)
		if err != nil {
			log.WithError(err).WithField("orderID", e.OrderID).Error("Failed to send order status notification")
		}
	})
}
