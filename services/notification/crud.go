package notification

import (
	"context"
	"errors"
	"fmt"

	notificationRepo "vecino/database/repository/notification"
	"vecino/models"
)

// Query lists notifications newest-first according to the filter, capped at
// 100 records.
func (s *DefaultNotificationService) Query(ctx context.Context, filter notificationRepo.QueryFilter) ([]models.Notification, error) {
	return s.Repo.Query(filter)
}

// MarkRead sets readAt on one owned notification. Re-marking an already-read
// notification is a no-op, not an error.
func (s *DefaultNotificationService) MarkRead(ctx context.Context, callerID, notificationID string) error {
	n, err := s.Repo.GetByID(notificationID)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if n.UserID != callerID {
		return ErrUnauthorized
	}
	if n.ReadAt != nil {
		return nil
	}
	if err := s.Repo.MarkRead(notificationID, s.clock()); err != nil {
		return err
	}
	s.invalidateBadge(ctx, callerID)
	return nil
}

// MarkAllRead sets readAt on every unread notification of the caller.
func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, callerID string) (int64, error) {
	count, err := s.Repo.MarkAllRead(callerID, s.clock())
	if err != nil {
		return 0, err
	}
	s.invalidateBadge(ctx, callerID)
	return count, nil
}

// Delete removes a notification after verifying the caller owns it. A
// notification can only be deleted once it is out of flight; delivery logs
// survive the deletion for audit purposes.
func (s *DefaultNotificationService) Delete(ctx context.Context, callerID, notificationID string) error {
	n, err := s.Repo.GetByID(notificationID)
	if err != nil {
		if errors.Is(err, notificationRepo.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}
	if n.UserID != callerID {
		return ErrUnauthorized
	}
	if n.Status == models.StatusDispatching {
		return fmt.Errorf("%w: notification %s is being delivered", ErrInvalidInput, notificationID)
	}
	return s.Repo.Delete(notificationID)
}

// ConfirmDelivered records an async provider delivery confirmation as an
// appended log transition and fills the notification's deliveredAt if this
// is its first confirmed delivery.
func (s *DefaultNotificationService) ConfirmDelivered(ctx context.Context, notificationID string, channel models.Channel, providerMessageID string) error {
	now := s.clock()
	if err := s.Logs.AppendDelivered(notificationID, channel, providerMessageID, now); err != nil {
		return err
	}

	n, err := s.Repo.GetByID(notificationID)
	if err != nil {
		// Notification deleted after delivery; the log transition stands.
		return nil
	}
	if n.DeliveredAt == nil {
		return s.Repo.UpdateFields(notificationID, map[string]any{"deliveredAt": now})
	}
	return nil
}
