package models

import "time"

// DeliveryStatus is the outcome of one channel-level send attempt.
type DeliveryStatus string

const (
	DeliverySent      DeliveryStatus = "sent"
	DeliveryDelivered DeliveryStatus = "delivered"
	DeliveryFailed    DeliveryStatus = "failed"
)

// DeliveryLog records one (notification, channel) send attempt. Logs are
// append-only history: a later provider confirmation appends a delivered
// transition instead of rewriting the original record, and logs survive
// deletion of their notification for audit purposes.
type DeliveryLog struct {
	ID                string         `bson:"id" json:"id"`
	NotificationID    string         `bson:"notificationId" json:"notificationId"`
	UserID            string         `bson:"userId" json:"userId"`
	Channel           Channel        `bson:"channel" json:"channel"`
	Status            DeliveryStatus `bson:"status" json:"status"`
	Provider          string         `bson:"provider,omitempty" json:"provider,omitempty"`
	ProviderMessageID string         `bson:"providerMessageId,omitempty" json:"providerMessageId,omitempty"`
	ErrorMessage      string         `bson:"errorMessage,omitempty" json:"errorMessage,omitempty"`
	CreatedAt         time.Time      `bson:"createdAt" json:"createdAt"`
	DeliveredAt       *time.Time     `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
}

// ChannelStats is the per-channel slice of a stats report.
type ChannelStats struct {
	Sent      int     `json:"sent"`
	Delivered int     `json:"delivered"`
	Failed    int     `json:"failed"`
	Rate      float64 `json:"rate"`
}

// DeliveryStats aggregates delivery outcomes over a user/date-range filter.
type DeliveryStats struct {
	TotalSent           int                      `json:"totalSent"`
	TotalDelivered      int                      `json:"totalDelivered"`
	TotalFailed         int                      `json:"totalFailed"`
	DeliveryRate        float64                  `json:"deliveryRate"`
	AverageDeliveryTime float64                  `json:"averageDeliveryTimeMs"`
	Channels            map[Channel]ChannelStats `json:"channels"`
}
