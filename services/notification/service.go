package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	"vecino/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Create validates, persists and, when due, immediately dispatches one
// notification. Future-dated notifications are left for the sweep.
func (s *DefaultNotificationService) Create(ctx context.Context, input CreateInput) (*models.Notification, error) {
	n, err := s.buildNotification(input)
	if err != nil {
		return nil, err
	}

	if err := s.Repo.Create(n); err != nil {
		return nil, fmt.Errorf("failed to persist notification: %w", err)
	}

	if !n.DueAt().After(s.clock()) {
		if err := s.DispatchDue(ctx, n.ID); err != nil {
			return nil, err
		}
		return s.Repo.GetByID(n.ID)
	}

	s.scheduleRedelivery(n.ID, n.DueAt())
	return n, nil
}

// CreateBulk persists one notification per recipient as a single batch write,
// then dispatches each independently. Channel and provider failures stay
// isolated per recipient; the batch call itself only fails on persistence.
func (s *DefaultNotificationService) CreateBulk(ctx context.Context, userIDs []string, input CreateInput) ([]*models.Notification, error) {
	if len(userIDs) == 0 {
		return nil, fmt.Errorf("%w: no recipients", ErrInvalidInput)
	}

	ns := make([]*models.Notification, 0, len(userIDs))
	for _, uid := range userIDs {
		in := input
		in.UserID = uid
		n, err := s.buildNotification(in)
		if err != nil {
			return nil, err
		}
		ns = append(ns, n)
	}

	if err := s.Repo.CreateMany(ns); err != nil {
		return nil, fmt.Errorf("failed to persist notification batch: %w", err)
	}

	due := !ns[0].DueAt().After(s.clock())
	var wg sync.WaitGroup
	for _, n := range ns {
		if !due {
			s.scheduleRedelivery(n.ID, n.DueAt())
			continue
		}
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if err := s.DispatchDue(ctx, id); err != nil {
				s.log().Warn("bulk dispatch failed for recipient",
					zap.String("notificationId", id), zap.Error(err))
			}
		}(n.ID)
	}
	wg.Wait()

	out := make([]*models.Notification, 0, len(ns))
	for _, n := range ns {
		fresh, err := s.Repo.GetByID(n.ID)
		if err != nil {
			out = append(out, n)
			continue
		}
		out = append(out, fresh)
	}
	return out, nil
}

// Sweep dispatches every pending notification whose scheduled time has
// passed. Losing the pending->dispatching claim means another worker picked
// the record up; the loser skips it.
func (s *DefaultNotificationService) Sweep(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Repo.FindDue(now, s.SweepLimit)
	if err != nil {
		return 0, fmt.Errorf("sweep query failed: %w", err)
	}

	dispatched := 0
	for i := range due {
		n := due[i]
		claimed, err := s.Repo.MarkDispatching(n.ID)
		if err != nil {
			s.log().Warn("sweep claim failed", zap.String("notificationId", n.ID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}
		if err := s.dispatch(ctx, n.ID); err != nil {
			s.log().Warn("sweep dispatch failed", zap.String("notificationId", n.ID), zap.Error(err))
			continue
		}
		dispatched++
	}
	return dispatched, nil
}

// DispatchDue claims and dispatches a single due notification. Callers that
// lose the claim race return without error: someone else is delivering it.
func (s *DefaultNotificationService) DispatchDue(ctx context.Context, notificationID string) error {
	claimed, err := s.Repo.MarkDispatching(notificationID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}
	return s.dispatch(ctx, notificationID)
}

// buildNotification validates the input and fills defaults.
func (s *DefaultNotificationService) buildNotification(input CreateInput) (*models.Notification, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrInvalidInput)
	}
	if !models.ValidType(input.Type) {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, input.Type)
	}
	for _, ch := range input.Channels {
		if !models.ValidChannel(ch) {
			return nil, fmt.Errorf("%w: unknown channel %q", ErrInvalidInput, ch)
		}
	}

	channels := input.Channels
	if len(channels) == 0 {
		channels = []models.Channel{models.ChannelPush, models.ChannelInApp}
	}
	priority := input.Priority
	if priority == "" {
		priority = models.PriorityNormal
	} else if !models.ValidPriority(priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, priority)
	}
	maxRetries := input.MaxRetries
	if maxRetries <= 0 {
		maxRetries = models.DefaultMaxRetries
	}

	title, body := input.Title, input.Body
	if title == "" || body == "" {
		t, b, ok := RenderTemplate(input.Type, input.Data)
		if ok {
			if title == "" {
				title = t
			}
			if body == "" {
				body = b
			}
		}
	}

	now := s.clock()
	scheduledAt := input.ScheduledAt
	if scheduledAt != nil && scheduledAt.Before(now) {
		// Past schedules mean immediate delivery.
		scheduledAt = nil
	}

	return &models.Notification{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Type:        input.Type,
		Title:       title,
		Body:        body,
		Data:        input.Data,
		Status:      models.StatusPending,
		Priority:    priority,
		Channels:    channels,
		ScheduledAt: scheduledAt,
		ExpiresAt:   input.ExpiresAt,
		MaxRetries:  maxRetries,
	}, nil
}

// scheduleRedelivery enqueues a prompt redelivery attempt when a scheduler
// is wired; the periodic sweep covers the rest.
func (s *DefaultNotificationService) scheduleRedelivery(notificationID string, at time.Time) {
	if s.Scheduler == nil {
		return
	}
	if err := s.Scheduler.ScheduleRedelivery(notificationID, at); err != nil {
		s.log().Warn("failed to enqueue redelivery task",
			zap.String("notificationId", notificationID), zap.Error(err))
	}
}
