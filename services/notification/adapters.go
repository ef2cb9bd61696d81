package notification

import (
	"context"
	"fmt"

	"vecino/models"

	"firebase.google.com/go/v4/messaging"
	"github.com/mrz1836/postmark"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

// DeliveryResult is what a channel adapter reports on success. Delivered
// means the transport confirmed receipt synchronously; otherwise the attempt
// is logged as sent and may be confirmed asynchronously later.
type DeliveryResult struct {
	Provider          string
	ProviderMessageID string
	Delivered         bool
}

// ChannelAdapter sends one notification through one delivery transport.
// Implementations must be safe for concurrent use; the dispatcher fans out
// across channels in parallel.
type ChannelAdapter interface {
	Channel() models.Channel
	Send(ctx context.Context, n *models.Notification, user *models.User) (*DeliveryResult, error)
}

// AdapterRegistry holds one adapter per delivery channel. New channels are
// added by registering an adapter, without touching the dispatcher.
type AdapterRegistry struct {
	adapters map[models.Channel]ChannelAdapter
}

// NewAdapterRegistry builds a registry from the given adapters.
func NewAdapterRegistry(adapters ...ChannelAdapter) *AdapterRegistry {
	reg := &AdapterRegistry{adapters: make(map[models.Channel]ChannelAdapter, len(adapters))}
	for _, a := range adapters {
		reg.adapters[a.Channel()] = a
	}
	return reg
}

// Get returns the adapter registered for the channel.
func (r *AdapterRegistry) Get(c models.Channel) (ChannelAdapter, bool) {
	a, ok := r.adapters[c]
	return a, ok
}

// --- Push (FCM) ---

// fcmSender is the slice of *messaging.Client the push adapter uses.
type fcmSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// UnreadCounter supplies the current unread count for the push badge.
type UnreadCounter func(ctx context.Context, userID string) int

// PushAdapter delivers via Firebase Cloud Messaging. FCM accepts the message
// synchronously, so a successful send is recorded as delivered.
type PushAdapter struct {
	Client fcmSender
	Unread UnreadCounter
}

func (a *PushAdapter) Channel() models.Channel { return models.ChannelPush }

func (a *PushAdapter) Send(ctx context.Context, n *models.Notification, user *models.User) (*DeliveryResult, error) {
	if user.FCMToken == "" {
		return nil, fmt.Errorf("%w: user %s has no registered device token", ErrProvider, user.ID)
	}

	data := make(map[string]string, len(n.Data)+1)
	for k, v := range n.Data {
		data[k] = v
	}
	data["type"] = string(n.Type)

	badge := 0
	if a.Unread != nil {
		badge = a.Unread(ctx, user.ID)
	}

	msg := &messaging.Message{
		Token: user.FCMToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: androidMessagePriority(n.Priority),
			Notification: &messaging.AndroidNotification{
				ChannelID: string(n.Type),
				Sound:     "default",
				Priority:  androidNotificationPriority(n.Priority),
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  apnsPriority(n.Priority),
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					Badge: &badge,
				},
			},
		},
	}

	id, err := a.Client.Send(ctx, msg)
	if err != nil {
		return nil, fmt.Errorf("%w: fcm send failed: %v", ErrProvider, err)
	}
	return &DeliveryResult{Provider: "fcm", ProviderMessageID: id, Delivered: true}, nil
}

func androidMessagePriority(p models.Priority) string {
	if p == models.PriorityHigh || p == models.PriorityUrgent {
		return "high"
	}
	return "normal"
}

func androidNotificationPriority(p models.Priority) messaging.AndroidNotificationPriority {
	switch p {
	case models.PriorityLow:
		return messaging.PriorityLow
	case models.PriorityHigh:
		return messaging.PriorityHigh
	case models.PriorityUrgent:
		return messaging.PriorityMax
	default:
		return messaging.PriorityDefault
	}
}

func apnsPriority(p models.Priority) string {
	if p == models.PriorityHigh || p == models.PriorityUrgent {
		return "10"
	}
	return "5"
}

// --- Email (Postmark) ---

type emailSender interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// EmailAdapter delivers via Postmark's transactional API.
type EmailAdapter struct {
	Client emailSender
	Sender string
}

func (a *EmailAdapter) Channel() models.Channel { return models.ChannelEmail }

func (a *EmailAdapter) Send(ctx context.Context, n *models.Notification, user *models.User) (*DeliveryResult, error) {
	if user.Email == "" {
		return nil, fmt.Errorf("%w: user %s has no email address", ErrProvider, user.ID)
	}

	resp, err := a.Client.SendEmail(ctx, postmark.Email{
		From:     a.Sender,
		To:       user.Email,
		Subject:  n.Title,
		HTMLBody: fmt.Sprintf("<html><body><p>%s</p></body></html>", n.Body),
		TextBody: n.Body,
		Tag:      string(n.Type),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: postmark send failed: %v", ErrProvider, err)
	}
	if resp.ErrorCode > 0 {
		return nil, fmt.Errorf("%w: postmark error %d: %s", ErrProvider, resp.ErrorCode, resp.Message)
	}
	return &DeliveryResult{Provider: "postmark", ProviderMessageID: resp.MessageID}, nil
}

// --- SMS (Twilio) ---

type smsSender interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// SmsAdapter delivers via Twilio's messaging API.
type SmsAdapter struct {
	Client     smsSender
	FromNumber string
}

func (a *SmsAdapter) Channel() models.Channel { return models.ChannelSms }

func (a *SmsAdapter) Send(ctx context.Context, n *models.Notification, user *models.User) (*DeliveryResult, error) {
	if user.Phone == "" {
		return nil, fmt.Errorf("%w: user %s has no phone number", ErrProvider, user.ID)
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(user.Phone)
	params.SetFrom(a.FromNumber)
	params.SetBody(fmt.Sprintf("%s: %s", n.Title, n.Body))

	resp, err := a.Client.CreateMessage(params)
	if err != nil {
		return nil, fmt.Errorf("%w: twilio send failed: %v", ErrProvider, err)
	}
	id := ""
	if resp.Sid != nil {
		id = *resp.Sid
	}
	return &DeliveryResult{Provider: "twilio", ProviderMessageID: id}, nil
}

// --- In-app ---

// InAppAdapter always succeeds: the persisted notification itself is the
// delivery, so the log is marked delivered immediately.
type InAppAdapter struct{}

func (a *InAppAdapter) Channel() models.Channel { return models.ChannelInApp }

func (a *InAppAdapter) Send(ctx context.Context, n *models.Notification, user *models.User) (*DeliveryResult, error) {
	return &DeliveryResult{Provider: "in_app", Delivered: true}, nil
}
