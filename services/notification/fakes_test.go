package notification

import (
	"context"
	"fmt"
	"sync"
	"time"

	notificationRepo "vecino/database/repository/notification"
	"vecino/models"
)

// memNotifRepo is an in-memory NotificationRepository.
type memNotifRepo struct {
	mu    sync.Mutex
	docs  map[string]*models.Notification
	fail  bool
	clock func() time.Time
}

func newMemNotifRepo() *memNotifRepo {
	return &memNotifRepo{docs: map[string]*models.Notification{}, clock: time.Now}
}

func (r *memNotifRepo) snapshot(n *models.Notification) *models.Notification {
	cp := *n
	return &cp
}

func (r *memNotifRepo) Create(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return fmt.Errorf("repository unavailable")
	}
	now := r.clock()
	n.CreatedAt = now
	n.UpdatedAt = now
	r.docs[n.ID] = r.snapshot(n)
	return nil
}

func (r *memNotifRepo) CreateMany(ns []*models.Notification) error {
	for _, n := range ns {
		if err := r.Create(n); err != nil {
			return err
		}
	}
	return nil
}

func (r *memNotifRepo) GetByID(id string) (*models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[id]
	if !ok {
		return nil, notificationRepo.ErrNotFound
	}
	return r.snapshot(n), nil
}

func (r *memNotifRepo) Update(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[n.ID]; !ok {
		return notificationRepo.ErrNotFound
	}
	n.UpdatedAt = r.clock()
	r.docs[n.ID] = r.snapshot(n)
	return nil
}

func (r *memNotifRepo) UpdateFields(id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[id]
	if !ok {
		return notificationRepo.ErrNotFound
	}
	if v, ok := fields["deliveredAt"]; ok {
		at := v.(time.Time)
		n.DeliveredAt = &at
	}
	n.UpdatedAt = r.clock()
	return nil
}

func (r *memNotifRepo) MarkDispatching(id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[id]
	if !ok {
		return false, notificationRepo.ErrNotFound
	}
	if n.Status != models.StatusPending {
		return false, nil
	}
	n.Status = models.StatusDispatching
	return true, nil
}

func (r *memNotifRepo) FindDue(now time.Time, limit int) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []models.Notification
	for _, n := range r.docs {
		if n.Status != models.StatusPending {
			continue
		}
		if n.ScheduledAt != nil && n.ScheduledAt.After(now) {
			continue
		}
		due = append(due, *n)
	}
	return due, nil
}

func (r *memNotifRepo) Query(filter notificationRepo.QueryFilter) ([]models.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Notification
	for _, n := range r.docs {
		if filter.UserID != "" && n.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && n.Status != filter.Status {
			continue
		}
		if filter.Type != "" && n.Type != filter.Type {
			continue
		}
		if filter.UnreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *memNotifRepo) MarkRead(id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.docs[id]
	if !ok {
		return notificationRepo.ErrNotFound
	}
	if n.ReadAt == nil {
		n.ReadAt = &at
	}
	return nil
}

func (r *memNotifRepo) MarkAllRead(userID string, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.docs {
		if n.UserID == userID && n.ReadAt == nil {
			n.ReadAt = &at
			count++
		}
	}
	return count, nil
}

func (r *memNotifRepo) CountUnread(userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.docs {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *memNotifRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return notificationRepo.ErrNotFound
	}
	delete(r.docs, id)
	return nil
}

// memPrefsRepo is an in-memory PreferencesRepository.
type memPrefsRepo struct {
	mu   sync.Mutex
	docs map[string]*models.NotificationPreferences
}

func newMemPrefsRepo() *memPrefsRepo {
	return &memPrefsRepo{docs: map[string]*models.NotificationPreferences{}}
}

func (r *memPrefsRepo) GetByUserID(userID string) (*models.NotificationPreferences, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[userID]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *memPrefsRepo) Create(prefs *models.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *prefs
	r.docs[prefs.UserID] = &cp
	return nil
}

func (r *memPrefsRepo) ApplyPatch(userID string, patch models.PreferencesPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[userID]
	if !ok {
		return fmt.Errorf("preferences for user %s not found", userID)
	}
	if patch.EnablePush != nil {
		p.EnablePush = *patch.EnablePush
	}
	if patch.EnableEmail != nil {
		p.EnableEmail = *patch.EnableEmail
	}
	if patch.EnableSms != nil {
		p.EnableSms = *patch.EnableSms
	}
	if patch.EnableInApp != nil {
		p.EnableInApp = *patch.EnableInApp
	}
	if patch.QuietHours != nil {
		p.QuietHours = &models.QuietHours{Start: patch.QuietHours.Start, End: patch.QuietHours.End}
	}
	for typ, tp := range patch.TypePreferences {
		if p.TypePreferences == nil {
			p.TypePreferences = map[string]models.TypePreference{}
		}
		existing := p.TypePreferences[typ]
		if tp.Enabled != nil {
			existing.Enabled = tp.Enabled
		}
		if tp.Channels != nil {
			existing.Channels = tp.Channels
		}
		if tp.Priority != nil {
			existing.Priority = tp.Priority
		}
		p.TypePreferences[typ] = existing
	}
	return nil
}

func (r *memPrefsRepo) Replace(prefs *models.NotificationPreferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *prefs
	r.docs[prefs.UserID] = &cp
	return nil
}

func (r *memPrefsRepo) ClearQuietHours(userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.docs[userID]
	if !ok {
		return fmt.Errorf("preferences for user %s not found", userID)
	}
	p.QuietHours = nil
	return nil
}

// memLogRepo is an in-memory DeliveryLogRepository.
type memLogRepo struct {
	mu   sync.Mutex
	logs []models.DeliveryLog
}

func newMemLogRepo() *memLogRepo { return &memLogRepo{} }

func (r *memLogRepo) Append(log *models.DeliveryLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if log.ID == "" {
		log.ID = fmt.Sprintf("log-%d", len(r.logs)+1)
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now()
	}
	r.logs = append(r.logs, *log)
	return nil
}

func (r *memLogRepo) AppendDelivered(notificationID string, channel models.Channel, providerMessageID string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.logs) - 1; i >= 0; i-- {
		l := r.logs[i]
		if l.NotificationID == notificationID && l.Channel == channel {
			r.logs = append(r.logs, models.DeliveryLog{
				ID:                fmt.Sprintf("log-%d", len(r.logs)+1),
				NotificationID:    notificationID,
				UserID:            l.UserID,
				Channel:           channel,
				Status:            models.DeliveryDelivered,
				Provider:          l.Provider,
				ProviderMessageID: providerMessageID,
				CreatedAt:         time.Now(),
				DeliveredAt:       &at,
			})
			return nil
		}
	}
	return fmt.Errorf("no delivery log for notification %s channel %s", notificationID, channel)
}

func (r *memLogRepo) FindByNotification(notificationID string) ([]models.DeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DeliveryLog
	for _, l := range r.logs {
		if l.NotificationID == notificationID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (r *memLogRepo) FindByUserRange(userID string, start, end *time.Time) ([]models.DeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.DeliveryLog
	for _, l := range r.logs {
		if l.UserID != userID {
			continue
		}
		if start != nil && l.CreatedAt.Before(*start) {
			continue
		}
		if end != nil && l.CreatedAt.After(*end) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

// memUserDirectory is an in-memory user.UserService.
type memUserDirectory struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserDirectory(users ...*models.User) *memUserDirectory {
	d := &memUserDirectory{users: map[string]*models.User{}}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *memUserDirectory) GetUserByID(userID string) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	cp := *u
	return &cp, nil
}

func (d *memUserDirectory) RegisterFCMToken(userID, token string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[userID]
	if !ok {
		return fmt.Errorf("user %s not found", userID)
	}
	u.FCMToken = token
	return nil
}

// stubAdapter is a scripted channel adapter.
type stubAdapter struct {
	channel models.Channel
	send    func(ctx context.Context, n *models.Notification, u *models.User) (*DeliveryResult, error)
	calls   int
	mu      sync.Mutex
}

func (a *stubAdapter) Channel() models.Channel { return a.channel }

func (a *stubAdapter) Send(ctx context.Context, n *models.Notification, u *models.User) (*DeliveryResult, error) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	if a.send != nil {
		return a.send(ctx, n, u)
	}
	return &DeliveryResult{Provider: string(a.channel), Delivered: true}, nil
}

// stubScheduler records redelivery requests.
type stubScheduler struct {
	mu      sync.Mutex
	entries []time.Time
}

func (s *stubScheduler) ScheduleRedelivery(notificationID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, at)
	return nil
}

// newTestService assembles a service over in-memory fakes.
func newTestService(users *memUserDirectory, adapters ...ChannelAdapter) (*DefaultNotificationService, *memNotifRepo, *memPrefsRepo, *memLogRepo) {
	repo := newMemNotifRepo()
	prefs := newMemPrefsRepo()
	logs := newMemLogRepo()
	svc, err := NewDefaultNotificationService(repo, prefs, logs, users, NewAdapterRegistry(adapters...), nil, nil)
	if err != nil {
		panic(err)
	}
	return svc, repo, prefs, logs
}

func activeUser(id string) *models.User {
	return &models.User{
		ID:       id,
		Name:     "Resident " + id,
		Email:    id + "@example.com",
		Phone:    "+15550100",
		FCMToken: "token-" + id,
		Active:   true,
	}
}
