package notification

import (
	"testing"
	"time"

	"vecino/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffDelaySchedule(t *testing.T) {
	assert.Equal(t, 2*time.Minute, backoffDelay(1))
	assert.Equal(t, 4*time.Minute, backoffDelay(2))
	assert.Equal(t, 8*time.Minute, backoffDelay(3))
}

func seedFailing(t *testing.T, svc *DefaultNotificationService, repo *memNotifRepo) *models.Notification {
	t.Helper()
	n := &models.Notification{
		ID:         "n1",
		UserID:     "u1",
		Type:       models.TypePaymentDue,
		Status:     models.StatusDispatching,
		Priority:   models.PriorityNormal,
		Channels:   []models.Channel{models.ChannelPush},
		MaxRetries: models.DefaultMaxRetries,
	}
	require.NoError(t, repo.Create(n))
	return n
}

func TestHandleTotalFailureReschedules(t *testing.T) {
	svc, repo, _, _ := newTestService(newMemUserDirectory())
	fixed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	sched := &stubScheduler{}
	svc.Scheduler = sched

	n := seedFailing(t, svc, repo)
	require.NoError(t, svc.handleTotalFailure(n, "fcm send failed"))

	stored, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
	assert.Equal(t, 1, stored.RetryCount)
	assert.Equal(t, models.RescheduleRetryBackoff, stored.RescheduleReason)
	require.NotNil(t, stored.ScheduledAt)
	assert.Equal(t, fixed.Add(2*time.Minute), *stored.ScheduledAt)
	require.Len(t, sched.entries, 1)
	assert.Equal(t, fixed.Add(2*time.Minute), sched.entries[0])
}

func TestHandleTotalFailureBackoffGrows(t *testing.T) {
	svc, repo, _, _ := newTestService(newMemUserDirectory())
	fixed := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	n := seedFailing(t, svc, repo)
	n.RetryCount = 1
	require.NoError(t, repo.Update(n))

	require.NoError(t, svc.handleTotalFailure(n, "fcm send failed"))

	stored, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.RetryCount)
	require.NotNil(t, stored.ScheduledAt)
	assert.Equal(t, fixed.Add(4*time.Minute), *stored.ScheduledAt)
}

func TestHandleTotalFailurePermanent(t *testing.T) {
	svc, repo, _, _ := newTestService(newMemUserDirectory())

	n := seedFailing(t, svc, repo)
	n.RetryCount = 2
	require.NoError(t, repo.Update(n))

	require.NoError(t, svc.handleTotalFailure(n, "fcm send failed"))

	stored, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, 3, stored.RetryCount)
	assert.Equal(t, "fcm send failed", stored.FailureReason)
	assert.Empty(t, stored.RescheduleReason)
	assert.True(t, stored.IsTerminal())
}

func TestHandleTotalFailureDefaultReason(t *testing.T) {
	svc, repo, _, _ := newTestService(newMemUserDirectory())

	n := seedFailing(t, svc, repo)
	n.RetryCount = 2
	require.NoError(t, repo.Update(n))

	require.NoError(t, svc.handleTotalFailure(n, ""))

	stored, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, ErrRetriesExhausted.Error(), stored.FailureReason)
}

func TestRetryCountNeverExceedsMaxRetries(t *testing.T) {
	svc, repo, _, _ := newTestService(newMemUserDirectory())

	n := seedFailing(t, svc, repo)
	for i := 0; i < 10; i++ {
		require.NoError(t, svc.handleTotalFailure(n, "still down"))
		assert.LessOrEqual(t, n.RetryCount, n.MaxRetries)
	}

	stored, err := repo.GetByID(n.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, stored.Status)
	assert.Equal(t, n.MaxRetries, stored.RetryCount)
}
