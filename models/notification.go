package models

import "time"

// Channel identifies one delivery transport.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSms   Channel = "sms"
	ChannelInApp Channel = "in_app"
)

// AllChannels lists every supported delivery channel.
var AllChannels = []Channel{ChannelPush, ChannelEmail, ChannelSms, ChannelInApp}

// NotificationType is the closed set of portal events that produce notifications.
type NotificationType string

const (
	TypeReservationConfirmation  NotificationType = "reservation_confirmation"
	TypeReservationUpdate        NotificationType = "reservation_update"
	TypeReservationCancellation  NotificationType = "reservation_cancellation"
	TypeReservationReminder      NotificationType = "reservation_reminder"
	TypeMeetingScheduled         NotificationType = "meeting_scheduled"
	TypeMeetingUpdated           NotificationType = "meeting_updated"
	TypeMeetingCancelled         NotificationType = "meeting_cancelled"
	TypeMeetingRescheduled       NotificationType = "meeting_rescheduled"
	TypeMeetingNotesPublished    NotificationType = "meeting_notes_published"
	TypeVoteCreated              NotificationType = "vote_created"
	TypeVoteClosed               NotificationType = "vote_closed"
	TypeAgreementActivated       NotificationType = "agreement_activated"
	TypePaymentDue               NotificationType = "payment_due"
	TypePaymentOverdue           NotificationType = "payment_overdue"
	TypePaymentConfirmed         NotificationType = "payment_confirmed"
	TypeSystemAnnouncement       NotificationType = "system_announcement"
)

// AllNotificationTypes lists every valid notification type.
var AllNotificationTypes = []NotificationType{
	TypeReservationConfirmation, TypeReservationUpdate, TypeReservationCancellation,
	TypeReservationReminder, TypeMeetingScheduled, TypeMeetingUpdated,
	TypeMeetingCancelled, TypeMeetingRescheduled, TypeMeetingNotesPublished,
	TypeVoteCreated, TypeVoteClosed, TypeAgreementActivated,
	TypePaymentDue, TypePaymentOverdue, TypePaymentConfirmed,
	TypeSystemAnnouncement,
}

// NotificationStatus is the lifecycle status of a notification.
// sent, failed and cancelled are terminal. dispatching is the transient
// in-flight marker claimed by a sweep worker; it never survives a dispatch.
type NotificationStatus string

const (
	StatusPending     NotificationStatus = "pending"
	StatusDispatching NotificationStatus = "dispatching"
	StatusSent        NotificationStatus = "sent"
	StatusFailed      NotificationStatus = "failed"
	StatusCancelled   NotificationStatus = "cancelled"
)

// Priority orders notifications for transport-level urgency mapping.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// RescheduleReason tags why a pending notification had its scheduledAt moved.
type RescheduleReason string

const (
	RescheduleRetryBackoff RescheduleReason = "retry_backoff"
	RescheduleQuietHours   RescheduleReason = "quiet_hours"
)

// DefaultMaxRetries bounds redelivery attempts after total channel failure.
const DefaultMaxRetries = 3

// Notification is one request to inform a resident.
type Notification struct {
	ID               string             `bson:"id" json:"id"`
	UserID           string             `bson:"userId" json:"userId"`
	Type             NotificationType   `bson:"type" json:"type"`
	Title            string             `bson:"title" json:"title"`
	Body             string             `bson:"body" json:"body"`
	Data             map[string]string  `bson:"data,omitempty" json:"data,omitempty"`
	Status           NotificationStatus `bson:"status" json:"status"`
	Priority         Priority           `bson:"priority" json:"priority"`
	Channels         []Channel          `bson:"channels" json:"channels"`
	ScheduledAt      *time.Time         `bson:"scheduledAt,omitempty" json:"scheduledAt,omitempty"`
	SentAt           *time.Time         `bson:"sentAt,omitempty" json:"sentAt,omitempty"`
	DeliveredAt      *time.Time         `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	ReadAt           *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	ExpiresAt        *time.Time         `bson:"expiresAt,omitempty" json:"expiresAt,omitempty"`
	RetryCount       int                `bson:"retryCount" json:"retryCount"`
	MaxRetries       int                `bson:"maxRetries" json:"maxRetries"`
	RescheduleReason RescheduleReason   `bson:"rescheduleReason,omitempty" json:"rescheduleReason,omitempty"`
	FailureReason    string             `bson:"failureReason,omitempty" json:"failureReason,omitempty"`
	CreatedAt        time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether the notification can no longer be dispatched.
func (n *Notification) IsTerminal() bool {
	return n.Status == StatusSent || n.Status == StatusFailed || n.Status == StatusCancelled
}

// DueAt returns the moment the notification becomes eligible for dispatch.
// A nil scheduledAt means it was due at creation.
func (n *Notification) DueAt() time.Time {
	if n.ScheduledAt != nil {
		return *n.ScheduledAt
	}
	return n.CreatedAt
}

// ValidType reports whether t is a member of the closed type enum.
func ValidType(t NotificationType) bool {
	for _, v := range AllNotificationTypes {
		if v == t {
			return true
		}
	}
	return false
}

// ValidChannel reports whether c is a supported delivery channel.
func ValidChannel(c Channel) bool {
	for _, v := range AllChannels {
		if v == c {
			return true
		}
	}
	return false
}

// ValidPriority reports whether p is a supported priority level.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
