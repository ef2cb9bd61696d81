package notification

import (
	"context"
	"fmt"
	"sync"

	"vecino/models"

	"go.uber.org/zap"
)

// channelAttempt is the settled outcome of one channel send.
type channelAttempt struct {
	channel models.Channel
	result  *DeliveryResult
	err     error
}

// dispatch runs the delivery pipeline for one claimed notification: resolve
// effective channels, honour quiet hours, fan out across channels, log every
// attempt, then apply the aggregate rule. The caller must have claimed the
// record via MarkDispatching first.
func (s *DefaultNotificationService) dispatch(ctx context.Context, notificationID string) error {
	n, err := s.Repo.GetByID(notificationID)
	if err != nil {
		return err
	}

	u, err := s.Users.GetUserByID(n.UserID)
	if err != nil {
		// Repository-level failure: release the claim so the sweep retries
		// the whole dispatch; this never counts against retryCount.
		s.releaseClaim(n)
		return fmt.Errorf("user lookup failed for notification %s: %w", n.ID, err)
	}
	if !u.Active {
		return s.finalizeCancelled(n)
	}

	prefs, err := s.GetPreferences(ctx, n.UserID)
	if err != nil {
		s.releaseClaim(n)
		return fmt.Errorf("preference lookup failed for notification %s: %w", n.ID, err)
	}

	channels, cancelled := EffectiveChannels(n, prefs)
	if cancelled {
		return s.finalizeCancelled(n)
	}

	now := s.clock()
	if IsQuietHours(prefs, now) {
		// Deferral, not failure: retryCount untouched, status stays pending.
		next := NextAvailableTime(prefs, now)
		n.Status = models.StatusPending
		n.ScheduledAt = &next
		n.RescheduleReason = models.RescheduleQuietHours
		if err := s.Repo.Update(n); err != nil {
			return err
		}
		s.scheduleRedelivery(n.ID, next)
		s.log().Info("notification deferred to end of quiet hours",
			zap.String("notificationId", n.ID), zap.Time("nextAttempt", next))
		return nil
	}

	if len(channels) == 0 {
		return s.handleTotalFailure(n, "no enabled delivery channel")
	}

	n.Priority = EffectivePriority(n, prefs)

	attempts := s.fanOut(ctx, n, u, channels)

	var lastErr string
	succeeded, delivered := 0, 0
	for i := range attempts {
		a := &attempts[i]
		if a.err != nil {
			lastErr = a.err.Error()
			continue
		}
		succeeded++
		if a.result.Delivered {
			delivered++
		}
	}

	if succeeded == 0 {
		return s.handleTotalFailure(n, lastErr)
	}

	// Aggregate rule: one successful channel marks the whole notification
	// sent, even when sibling channels failed. deliveredAt comes from the
	// first attempt the transport confirmed; sent-only attempts leave it for
	// the async provider confirmation.
	sentAt := s.clock()
	n.Status = models.StatusSent
	n.SentAt = &sentAt
	if delivered > 0 {
		n.DeliveredAt = &sentAt
	}
	n.RescheduleReason = ""
	n.FailureReason = ""
	if err := s.Repo.Update(n); err != nil {
		return err
	}
	s.log().Info("notification sent",
		zap.String("notificationId", n.ID),
		zap.Int("channelsAttempted", len(attempts)),
		zap.Int("channelsSucceeded", succeeded))
	return nil
}

// fanOut sends through every effective channel concurrently and waits for
// all attempts to settle. Each attempt is isolated: a panic or error in one
// channel never prevents the others from running.
func (s *DefaultNotificationService) fanOut(ctx context.Context, n *models.Notification, u *models.User, channels []models.Channel) []channelAttempt {
	attempts := make([]channelAttempt, len(channels))
	var wg sync.WaitGroup
	for i, ch := range channels {
		wg.Add(1)
		go func(i int, ch models.Channel) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					attempts[i] = channelAttempt{channel: ch, err: fmt.Errorf("%w: adapter panic: %v", ErrProvider, r)}
					s.appendLog(n, attempts[i])
				}
			}()

			adapter, ok := s.Registry.Get(ch)
			if !ok {
				attempts[i] = channelAttempt{channel: ch, err: fmt.Errorf("%w: no adapter registered for channel %s", ErrProvider, ch)}
				s.appendLog(n, attempts[i])
				return
			}

			result, err := adapter.Send(ctx, n, u)
			attempts[i] = channelAttempt{channel: ch, result: result, err: err}
			s.appendLog(n, attempts[i])
		}(i, ch)
	}
	wg.Wait()
	return attempts
}

// appendLog records one channel attempt. Log persistence failures are
// reported but do not alter the attempt's outcome.
func (s *DefaultNotificationService) appendLog(n *models.Notification, a channelAttempt) {
	entry := &models.DeliveryLog{
		NotificationID: n.ID,
		UserID:         n.UserID,
		Channel:        a.channel,
	}
	if a.err != nil {
		entry.Status = models.DeliveryFailed
		entry.ErrorMessage = a.err.Error()
	} else {
		entry.Provider = a.result.Provider
		entry.ProviderMessageID = a.result.ProviderMessageID
		if a.result.Delivered {
			entry.Status = models.DeliveryDelivered
			deliveredAt := s.clock()
			entry.DeliveredAt = &deliveredAt
		} else {
			entry.Status = models.DeliverySent
		}
	}

	if err := s.Logs.Append(entry); err != nil {
		s.log().Error("failed to append delivery log",
			zap.String("notificationId", n.ID),
			zap.String("channel", string(a.channel)),
			zap.Error(err))
	}
}

// finalizeCancelled marks a notification cancelled (type disabled or
// recipient inactive); terminal, no dispatch, no retry.
func (s *DefaultNotificationService) finalizeCancelled(n *models.Notification) error {
	n.Status = models.StatusCancelled
	n.RescheduleReason = ""
	if err := s.Repo.Update(n); err != nil {
		return err
	}
	s.log().Info("notification cancelled by preferences",
		zap.String("notificationId", n.ID), zap.String("type", string(n.Type)))
	return nil
}

// releaseClaim puts a claimed notification back to pending after an
// orchestration-level error so the sweep can retry the dispatch itself.
func (s *DefaultNotificationService) releaseClaim(n *models.Notification) {
	n.Status = models.StatusPending
	if err := s.Repo.Update(n); err != nil {
		s.log().Error("failed to release dispatch claim",
			zap.String("notificationId", n.ID), zap.Error(err))
	}
}
