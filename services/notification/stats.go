package notification

import (
	"context"
	"time"

	"vecino/models"
)

// GetStats aggregates delivery outcomes for a user over an optional date
// range. Rates are zero-safe: an empty window yields 0, never a division
// error.
func (s *DefaultNotificationService) GetStats(ctx context.Context, userID string, start, end *time.Time) (*models.DeliveryStats, error) {
	logs, err := s.Logs.FindByUserRange(userID, start, end)
	if err != nil {
		return nil, err
	}
	return AggregateStats(logs), nil
}

// attemptKey identifies one (notification, channel) attempt. Delivered
// transitions appended later collapse onto the original attempt.
type attemptKey struct {
	notificationID string
	channel        models.Channel
}

type attemptState struct {
	channel     models.Channel
	sent        bool
	delivered   bool
	failed      bool
	firstSeen   time.Time
	deliveredAt *time.Time
}

// AggregateStats folds raw delivery logs into the stats report. Logs are
// grouped per (notification, channel) pair so a sent record plus its
// delivered transition count as one delivered attempt, not two.
func AggregateStats(logs []models.DeliveryLog) *models.DeliveryStats {
	attempts := make(map[attemptKey]*attemptState)
	for i := range logs {
		l := &logs[i]
		key := attemptKey{l.NotificationID, l.Channel}
		st, ok := attempts[key]
		if !ok {
			st = &attemptState{channel: l.Channel, firstSeen: l.CreatedAt}
			attempts[key] = st
		}
		if l.CreatedAt.Before(st.firstSeen) {
			st.firstSeen = l.CreatedAt
		}
		switch l.Status {
		case models.DeliverySent:
			st.sent = true
		case models.DeliveryDelivered:
			st.delivered = true
			if st.deliveredAt == nil && l.DeliveredAt != nil {
				st.deliveredAt = l.DeliveredAt
			}
		case models.DeliveryFailed:
			st.failed = true
		}
	}

	stats := &models.DeliveryStats{Channels: make(map[models.Channel]models.ChannelStats)}
	var deliveryTimeTotal float64
	var deliveryTimeCount int

	for _, st := range attempts {
		ch := stats.Channels[st.channel]
		switch {
		case st.delivered:
			stats.TotalSent++
			stats.TotalDelivered++
			ch.Sent++
			ch.Delivered++
			if st.deliveredAt != nil {
				deliveryTimeTotal += float64(st.deliveredAt.Sub(st.firstSeen).Milliseconds())
				deliveryTimeCount++
			}
		case st.sent:
			stats.TotalSent++
			ch.Sent++
		case st.failed:
			stats.TotalFailed++
			ch.Failed++
		}
		stats.Channels[st.channel] = ch
	}

	if stats.TotalSent > 0 {
		stats.DeliveryRate = float64(stats.TotalDelivered) / float64(stats.TotalSent) * 100
	}
	if deliveryTimeCount > 0 {
		stats.AverageDeliveryTime = deliveryTimeTotal / float64(deliveryTimeCount)
	}
	for _, ch := range []models.Channel{models.ChannelPush, models.ChannelEmail, models.ChannelSms, models.ChannelInApp} {
		cs := stats.Channels[ch]
		if cs.Sent > 0 {
			cs.Rate = float64(cs.Delivered) / float64(cs.Sent) * 100
		}
		stats.Channels[ch] = cs
	}
	return stats
}
