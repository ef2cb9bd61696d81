package notificationRepo

import (
	"time"

	"vecino/models"
)

// QueryFilter narrows a notification listing. Zero values are ignored.
type QueryFilter struct {
	UserID     string
	Type       models.NotificationType
	Status     models.NotificationStatus
	Priority   models.Priority
	UnreadOnly bool
	StartDate  *time.Time
	EndDate    *time.Time
	Limit      int
}

// NotificationRepository defines data access for notifications.
type NotificationRepository interface {
	// Create inserts a new notification record.
	Create(n *models.Notification) error
	// CreateMany inserts a batch of notifications in a single write.
	CreateMany(ns []*models.Notification) error
	// GetByID retrieves a notification by its unique ID.
	GetByID(id string) (*models.Notification, error)
	// Update replaces the stored document for the notification.
	Update(n *models.Notification) error
	// UpdateFields applies a partial $set-style update.
	UpdateFields(id string, fields map[string]any) error
	// MarkDispatching atomically claims a pending notification for dispatch.
	// Returns false when the notification is no longer pending, i.e. another
	// sweep worker won the race or the record reached a terminal status.
	MarkDispatching(id string) (bool, error)
	// FindDue returns pending notifications whose scheduled time has passed,
	// oldest first, capped at limit.
	FindDue(now time.Time, limit int) ([]models.Notification, error)
	// Query lists notifications newest-first according to the filter.
	Query(filter QueryFilter) ([]models.Notification, error)
	// MarkRead sets readAt once; re-marking an already-read record is a no-op.
	MarkRead(id string, at time.Time) error
	// MarkAllRead sets readAt on every unread notification of the user.
	MarkAllRead(userID string, at time.Time) (int64, error)
	// CountUnread returns the number of unread notifications for the user.
	CountUnread(userID string) (int64, error)
	// Delete removes a notification record by its ID.
	Delete(id string) error
}
