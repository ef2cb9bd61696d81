package notification

import (
	"context"
	"testing"
	"time"

	"vecino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okAdapter(ch models.Channel, delivered bool) *stubAdapter {
	return &stubAdapter{channel: ch, send: func(ctx context.Context, n *models.Notification, u *models.User) (*DeliveryResult, error) {
		return &DeliveryResult{Provider: string(ch), ProviderMessageID: "msg-" + string(ch), Delivered: delivered}, nil
	}}
}

func errAdapter(ch models.Channel, msg string) *stubAdapter {
	return &stubAdapter{channel: ch, send: func(ctx context.Context, n *models.Notification, u *models.User) (*DeliveryResult, error) {
		return nil, ErrProvider
	}}
}

func fixTime(svc *DefaultNotificationService, repo *memNotifRepo, at time.Time) {
	svc.now = func() time.Time { return at }
	repo.clock = svc.now
}

func logsByStatus(logs []models.DeliveryLog, status models.DeliveryStatus) []models.DeliveryLog {
	var out []models.DeliveryLog
	for _, l := range logs {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out
}

// End-to-end happy path: payment_due fanned out to push and in_app while the
// resident has email disabled. Both synchronous channels confirm, so the
// notification lands delivered with two delivered log rows and no email row.
func TestDispatchDeliversAcrossEnabledChannels(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := okAdapter(models.ChannelPush, true)
	email := okAdapter(models.ChannelEmail, false)
	inApp := okAdapter(models.ChannelInApp, true)
	svc, repo, prefs, logs := newTestService(users, push, email, inApp)

	p := models.DefaultPreferences("u1")
	p.EnableEmail = false
	require.NoError(t, prefs.Create(p))

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypePaymentDue,
		Priority: models.PriorityHigh,
		Data:     map[string]string{"amount": "$120.00", "dueDate": "2026-04-01"},
		Channels: []models.Channel{models.ChannelPush, models.ChannelEmail, models.ChannelInApp},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, n.Status)
	require.NotNil(t, n.SentAt)
	require.NotNil(t, n.DeliveredAt)
	assert.Equal(t, 1, push.calls)
	assert.Equal(t, 1, inApp.calls)
	assert.Zero(t, email.calls)

	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Len(t, logsByStatus(entries, models.DeliveryDelivered), 2)

	stored, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.RetryCount)
}

// Quiet hours defer delivery to the end of the window. Deferral is not a
// failure: retryCount stays untouched and no channel is attempted.
func TestDispatchDefersDuringQuietHours(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := okAdapter(models.ChannelPush, true)
	svc, repo, prefs, logs := newTestService(users, push)
	sched := &stubScheduler{}
	svc.Scheduler = sched
	fixTime(svc, repo, time.Date(2026, time.March, 10, 7, 0, 0, 0, time.UTC))

	p := models.DefaultPreferences("u1")
	p.QuietHours = &models.QuietHours{Start: "22:00", End: "08:00"}
	require.NoError(t, prefs.Create(p))

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypeReservationReminder,
		Channels: []models.Channel{models.ChannelPush},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, n.Status)
	assert.Zero(t, n.RetryCount)
	assert.Equal(t, models.RescheduleQuietHours, n.RescheduleReason)
	require.NotNil(t, n.ScheduledAt)
	assert.Equal(t, time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC), *n.ScheduledAt)

	assert.Zero(t, push.calls)
	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	require.Len(t, sched.entries, 1)
	assert.Equal(t, *n.ScheduledAt, sched.entries[0])
}

func TestDispatchCancelsWhenTypeDisabled(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := okAdapter(models.ChannelPush, true)
	svc, _, prefs, logs := newTestService(users, push)

	p := models.DefaultPreferences("u1")
	p.TypePreferences[string(models.TypeVoteCreated)] = models.TypePreference{Enabled: boolPtr(false)}
	require.NoError(t, prefs.Create(p))

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypeVoteCreated,
		Channels: []models.Channel{models.ChannelPush},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, n.Status)
	assert.Zero(t, push.calls)
	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDispatchCancelsInactiveRecipient(t *testing.T) {
	u := activeUser("u1")
	u.Active = false
	users := newMemUserDirectory(u)
	push := okAdapter(models.ChannelPush, true)
	svc, _, _, _ := newTestService(users, push)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypeSystemAnnouncement,
		Channels: []models.Channel{models.ChannelPush},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusCancelled, n.Status)
	assert.Zero(t, push.calls)
}

// One successful channel marks the notification sent even when a sibling
// channel failed; the failure is still logged.
func TestDispatchPartialFailureIsSent(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := errAdapter(models.ChannelPush, "token revoked")
	inApp := okAdapter(models.ChannelInApp, true)
	svc, _, _, logs := newTestService(users, push, inApp)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Type:   models.TypeMeetingScheduled,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, n.Status)
	assert.Zero(t, n.RetryCount)

	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Len(t, logsByStatus(entries, models.DeliveryFailed), 1)
	assert.Len(t, logsByStatus(entries, models.DeliveryDelivered), 1)
}

// Every effective channel failing triggers the backoff policy.
func TestDispatchTotalFailureReschedules(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := errAdapter(models.ChannelPush, "down")
	inApp := errAdapter(models.ChannelInApp, "down")
	svc, repo, _, logs := newTestService(users, push, inApp)
	fixed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	fixTime(svc, repo, fixed)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Type:   models.TypePaymentOverdue,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	assert.Equal(t, models.RescheduleRetryBackoff, n.RescheduleReason)
	require.NotNil(t, n.ScheduledAt)
	assert.Equal(t, fixed.Add(2*time.Minute), *n.ScheduledAt)

	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	assert.Len(t, logsByStatus(entries, models.DeliveryFailed), 2)
}

// An empty effective channel set is a delivery failure, never a silent
// success.
func TestDispatchNoEnabledChannelFails(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := okAdapter(models.ChannelPush, true)
	svc, _, prefs, _ := newTestService(users, push)

	p := models.DefaultPreferences("u1")
	p.EnablePush = false
	require.NoError(t, prefs.Create(p))

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypeMeetingCancelled,
		Channels: []models.Channel{models.ChannelPush},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, n.Status)
	assert.Equal(t, 1, n.RetryCount)
	assert.Zero(t, push.calls)
}

// A missing adapter for an effective channel is an isolated channel failure.
func TestDispatchMissingAdapterIsChannelFailure(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	inApp := okAdapter(models.ChannelInApp, true)
	svc, _, _, logs := newTestService(users, inApp)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypeVoteClosed,
		Channels: []models.Channel{models.ChannelPush, models.ChannelInApp},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, n.Status)
	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	failed := logsByStatus(entries, models.DeliveryFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ErrorMessage, "no adapter registered")
}

// A panicking adapter must not take down the dispatch or its siblings.
func TestDispatchAdapterPanicIsIsolated(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	push := &stubAdapter{channel: models.ChannelPush, send: func(ctx context.Context, n *models.Notification, u *models.User) (*DeliveryResult, error) {
		panic("boom")
	}}
	inApp := okAdapter(models.ChannelInApp, true)
	svc, _, _, logs := newTestService(users, push, inApp)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Type:   models.TypeMeetingUpdated,
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, n.Status)
	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	failed := logsByStatus(entries, models.DeliveryFailed)
	require.Len(t, failed, 1)
	assert.Contains(t, failed[0].ErrorMessage, "adapter panic")
}

// Email and SMS report sent, not delivered; the notification is sent but
// deliveredAt waits for the async provider confirmation.
func TestDispatchAsyncChannelsLeaveDeliveredAtEmpty(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	email := okAdapter(models.ChannelEmail, false)
	svc, _, _, logs := newTestService(users, email)

	n, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypePaymentConfirmed,
		Channels: []models.Channel{models.ChannelEmail},
	})
	require.NoError(t, err)

	assert.Equal(t, models.StatusSent, n.Status)
	require.NotNil(t, n.SentAt)
	assert.Nil(t, n.DeliveredAt)

	entries, err := logs.FindByNotification(n.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, models.DeliverySent, entries[0].Status)
}

// Per-type priority overrides flow through to the adapters.
func TestDispatchAppliesPriorityOverride(t *testing.T) {
	users := newMemUserDirectory(activeUser("u1"))
	var seen models.Priority
	push := &stubAdapter{channel: models.ChannelPush, send: func(ctx context.Context, n *models.Notification, u *models.User) (*DeliveryResult, error) {
		seen = n.Priority
		return &DeliveryResult{Provider: "push", Delivered: true}, nil
	}}
	svc, _, prefs, _ := newTestService(users, push)

	urgent := models.PriorityUrgent
	p := models.DefaultPreferences("u1")
	p.TypePreferences[string(models.TypePaymentOverdue)] = models.TypePreference{Priority: &urgent}
	require.NoError(t, prefs.Create(p))

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:   "u1",
		Type:     models.TypePaymentOverdue,
		Channels: []models.Channel{models.ChannelPush},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PriorityUrgent, seen)
}
