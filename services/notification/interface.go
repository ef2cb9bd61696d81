package notification

import (
	"context"
	"fmt"
	"time"

	deliverylogRepo "vecino/database/repository/deliverylog"
	notificationRepo "vecino/database/repository/notification"
	preferencesRepo "vecino/database/repository/preferences"
	"vecino/models"
	"vecino/services/user"

	"go.uber.org/zap"
)

// CreateInput is one notification request. Title and Body default to the
// type's template when left empty. Channels default to {push, in_app};
// Priority defaults to normal.
type CreateInput struct {
	UserID      string                    `json:"userId"`
	Type        models.NotificationType   `json:"type"`
	Title       string                    `json:"title"`
	Body        string                    `json:"body"`
	Data        map[string]string         `json:"data,omitempty"`
	Priority    models.Priority           `json:"priority,omitempty"`
	Channels    []models.Channel          `json:"channels,omitempty"`
	ScheduledAt *time.Time                `json:"scheduledAt,omitempty"`
	ExpiresAt   *time.Time                `json:"expiresAt,omitempty"`
	MaxRetries  int                       `json:"maxRetries,omitempty"`
}

// RedeliveryScheduler enqueues a redelivery attempt for a rescheduled
// notification. The periodic sweep is the safety net; the scheduler just
// makes redelivery prompt.
type RedeliveryScheduler interface {
	ScheduleRedelivery(notificationID string, at time.Time) error
}

// NotificationService is the delivery engine's entry point. Domain services
// (payments, reservations, meetings) call Create and CreateBulk; they never
// read engine state directly.
type NotificationService interface {
	// Create validates, persists and, when due, immediately dispatches one
	// notification.
	Create(ctx context.Context, input CreateInput) (*models.Notification, error)
	// CreateBulk persists one notification per recipient as a single batch
	// write, then dispatches each independently. One recipient's failure
	// never aborts the batch or its siblings.
	CreateBulk(ctx context.Context, userIDs []string, input CreateInput) ([]*models.Notification, error)
	// Sweep dispatches every pending notification whose scheduled time has
	// passed. Safe to run from concurrent workers; the conditional
	// pending->dispatching claim makes delivery at-least-once.
	Sweep(ctx context.Context, now time.Time) (int, error)
	// DispatchDue claims and dispatches a single due notification.
	DispatchDue(ctx context.Context, notificationID string) error

	// Query lists notifications newest-first, capped at 100 records.
	Query(ctx context.Context, filter notificationRepo.QueryFilter) ([]models.Notification, error)
	// MarkRead is idempotent; re-marking an already-read record is a no-op.
	MarkRead(ctx context.Context, callerID, notificationID string) error
	MarkAllRead(ctx context.Context, callerID string) (int64, error)
	// Delete verifies ownership before removing the notification. Delivery
	// logs survive for audit purposes.
	Delete(ctx context.Context, callerID, notificationID string) error
	// ConfirmDelivered records an async provider delivery confirmation.
	ConfirmDelivered(ctx context.Context, notificationID string, channel models.Channel, providerMessageID string) error

	// GetStats aggregates delivery outcomes over a user/date-range filter.
	GetStats(ctx context.Context, userID string, start, end *time.Time) (*models.DeliveryStats, error)

	// Preference operations. GetPreferences creates defaults lazily.
	GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, patch models.PreferencesPatch) (*models.NotificationPreferences, error)
	ResetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error)
	ToggleType(ctx context.Context, userID string, t models.NotificationType, enabled bool) (*models.NotificationPreferences, error)
	SetQuietHours(ctx context.Context, userID string, window models.QuietHours) (*models.NotificationPreferences, error)
	ClearQuietHours(ctx context.Context, userID string) (*models.NotificationPreferences, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo      notificationRepo.NotificationRepository
	Prefs     preferencesRepo.PreferencesRepository
	Logs      deliverylogRepo.DeliveryLogRepository
	Users     user.UserService
	Registry  *AdapterRegistry
	Scheduler RedeliveryScheduler
	Logger    *zap.Logger

	// SweepLimit caps how many due records one sweep run claims. Zero means
	// the repository default.
	SweepLimit int

	// InvalidateBadge drops any cached unread count after read-state changes.
	InvalidateBadge func(ctx context.Context, userID string)

	now func() time.Time
}

func (s *DefaultNotificationService) invalidateBadge(ctx context.Context, userID string) {
	if s.InvalidateBadge != nil {
		s.InvalidateBadge(ctx, userID)
	}
}

func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	prefs preferencesRepo.PreferencesRepository,
	logs deliverylogRepo.DeliveryLogRepository,
	users user.UserService,
	registry *AdapterRegistry,
	scheduler RedeliveryScheduler,
	logger *zap.Logger,
) (*DefaultNotificationService, error) {
	if repo == nil || prefs == nil || logs == nil || users == nil || registry == nil {
		return nil, fmt.Errorf("notification service initialization error: missing dependency")
	}
	return &DefaultNotificationService{
		Repo:      repo,
		Prefs:     prefs,
		Logs:      logs,
		Users:     users,
		Registry:  registry,
		Scheduler: scheduler,
		Logger:    logger,
	}, nil
}

// clock returns the service time source, defaulting to time.Now.
func (s *DefaultNotificationService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func (s *DefaultNotificationService) log() *zap.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return zap.NewNop()
}
