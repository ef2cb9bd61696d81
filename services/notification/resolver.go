package notification

import (
	"strconv"
	"strings"
	"time"

	"vecino/models"
)

// EffectiveChannels computes the channel set actually eligible for a
// notification. It starts from the requested channels, returns cancelled=true
// when the type is disabled outright for this user, and otherwise intersects
// with the type's configured channel list (if any) and the global per-channel
// toggles. An empty result means no enabled channel; the dispatcher treats
// that like a total delivery failure, never a silent success.
func EffectiveChannels(n *models.Notification, prefs *models.NotificationPreferences) ([]models.Channel, bool) {
	var typePref *models.TypePreference
	if prefs.TypePreferences != nil {
		if tp, ok := prefs.TypePreferences[string(n.Type)]; ok {
			typePref = &tp
		}
	}

	if typePref != nil && typePref.Enabled != nil && !*typePref.Enabled {
		return nil, true
	}

	var effective []models.Channel
	for _, ch := range n.Channels {
		if typePref != nil && len(typePref.Channels) > 0 && !containsChannel(typePref.Channels, ch) {
			continue
		}
		if !prefs.ChannelEnabled(ch) {
			continue
		}
		effective = append(effective, ch)
	}
	return effective, false
}

// EffectivePriority applies the per-type priority override, if configured.
func EffectivePriority(n *models.Notification, prefs *models.NotificationPreferences) models.Priority {
	if prefs.TypePreferences != nil {
		if tp, ok := prefs.TypePreferences[string(n.Type)]; ok && tp.Priority != nil {
			return *tp.Priority
		}
	}
	return n.Priority
}

// IsQuietHours reports whether now falls inside the user's quiet-hours
// window. A window whose start is later than its end wraps past midnight.
// No configured window means never quiet.
func IsQuietHours(prefs *models.NotificationPreferences, now time.Time) bool {
	if prefs.QuietHours == nil {
		return false
	}
	start, okStart := parseClock(prefs.QuietHours.Start)
	end, okEnd := parseClock(prefs.QuietHours.End)
	if !okStart || !okEnd {
		return false
	}

	minute := now.Hour()*60 + now.Minute()
	if start <= end {
		return minute >= start && minute <= end
	}
	// Window wraps midnight, e.g. 22:00-08:00.
	return minute >= start || minute <= end
}

// NextAvailableTime returns the next end-of-quiet-hours boundary after now.
// When the end time already passed today, the boundary advances by one day.
func NextAvailableTime(prefs *models.NotificationPreferences, now time.Time) time.Time {
	if prefs.QuietHours == nil {
		return now
	}
	end, ok := parseClock(prefs.QuietHours.End)
	if !ok {
		return now
	}

	boundary := time.Date(now.Year(), now.Month(), now.Day(), end/60, end%60, 0, 0, now.Location())
	if !boundary.After(now) {
		boundary = boundary.AddDate(0, 0, 1)
	}
	return boundary
}

// parseClock converts an "HH:MM" string to minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func containsChannel(list []models.Channel, c models.Channel) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
