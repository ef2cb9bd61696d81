package deliverylogRepo

import (
	"time"

	"vecino/models"
)

// DeliveryLogRepository defines append-only persistence for channel-level
// send attempts. Records are never mutated after creation; a later provider
// confirmation appends a delivered transition record.
type DeliveryLogRepository interface {
	// Append persists one send-attempt record.
	Append(log *models.DeliveryLog) error
	// AppendDelivered records an async provider confirmation for a previous
	// (notification, channel) attempt as a new delivered record.
	AppendDelivered(notificationID string, channel models.Channel, providerMessageID string, at time.Time) error
	// FindByNotification returns all attempts for one notification, oldest first.
	FindByNotification(notificationID string) ([]models.DeliveryLog, error)
	// FindByUserRange returns the user's logs within [start, end] for stats.
	// Nil bounds are open-ended.
	FindByUserRange(userID string, start, end *time.Time) ([]models.DeliveryLog, error)
}
