package notification

import (
	"math"
	"time"

	"vecino/models"

	"go.uber.org/zap"
)

// handleTotalFailure applies the retry policy after every effective channel
// failed. Below the retry bound the notification goes back to pending with
// an exponential backoff; at the bound it becomes permanently failed but
// stays queryable with a human-readable failure reason.
func (s *DefaultNotificationService) handleTotalFailure(n *models.Notification, lastErr string) error {
	if n.RetryCount < n.MaxRetries {
		n.RetryCount++
	}

	if n.RetryCount >= n.MaxRetries {
		n.Status = models.StatusFailed
		n.RescheduleReason = ""
		n.FailureReason = lastErr
		if n.FailureReason == "" {
			n.FailureReason = ErrRetriesExhausted.Error()
		}
		if err := s.Repo.Update(n); err != nil {
			return err
		}
		s.log().Warn("notification permanently failed",
			zap.String("notificationId", n.ID),
			zap.Int("retryCount", n.RetryCount),
			zap.String("reason", n.FailureReason))
		return nil
	}

	delay := backoffDelay(n.RetryCount)
	next := s.clock().Add(delay)
	n.Status = models.StatusPending
	n.ScheduledAt = &next
	n.RescheduleReason = models.RescheduleRetryBackoff
	if err := s.Repo.Update(n); err != nil {
		return err
	}
	s.scheduleRedelivery(n.ID, next)
	s.log().Info("notification rescheduled with backoff",
		zap.String("notificationId", n.ID),
		zap.Int("retryCount", n.RetryCount),
		zap.Duration("delay", delay))
	return nil
}

// backoffDelay is exponential in the retry count: 2^retryCount minutes.
func backoffDelay(retryCount int) time.Duration {
	return time.Duration(math.Pow(2, float64(retryCount))) * time.Minute
}
