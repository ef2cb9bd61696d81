package models

import "time"

// QuietHours is a per-resident time-of-day window during which delivery is
// deferred. Bounds are "HH:MM" strings; the window may wrap past midnight.
type QuietHours struct {
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
}

// TypePreference overrides delivery behaviour for one notification type.
type TypePreference struct {
	Enabled  *bool     `bson:"enabled,omitempty" json:"enabled,omitempty"`
	Channels []Channel `bson:"channels,omitempty" json:"channels,omitempty"`
	Priority *Priority `bson:"priority,omitempty" json:"priority,omitempty"`
}

// NotificationPreferences holds one resident's delivery preferences.
// Created lazily with defaults on first access.
type NotificationPreferences struct {
	UserID          string                    `bson:"userId" json:"userId"`
	EnablePush      bool                      `bson:"enablePush" json:"enablePush"`
	EnableEmail     bool                      `bson:"enableEmail" json:"enableEmail"`
	EnableSms       bool                      `bson:"enableSms" json:"enableSms"`
	EnableInApp     bool                      `bson:"enableInApp" json:"enableInApp"`
	QuietHours      *QuietHours               `bson:"quietHours,omitempty" json:"quietHours,omitempty"`
	TypePreferences map[string]TypePreference `bson:"typePreferences,omitempty" json:"typePreferences,omitempty"`
	CreatedAt       time.Time                 `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time                 `bson:"updatedAt" json:"updatedAt"`
}

// DefaultPreferences returns the preferences a resident starts with:
// every channel enabled, no quiet hours, no per-type overrides.
func DefaultPreferences(userID string) *NotificationPreferences {
	now := time.Now()
	return &NotificationPreferences{
		UserID:          userID,
		EnablePush:      true,
		EnableEmail:     true,
		EnableSms:       true,
		EnableInApp:     true,
		TypePreferences: map[string]TypePreference{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// ChannelEnabled reports the global toggle for one channel.
func (p *NotificationPreferences) ChannelEnabled(c Channel) bool {
	switch c {
	case ChannelPush:
		return p.EnablePush
	case ChannelEmail:
		return p.EnableEmail
	case ChannelSms:
		return p.EnableSms
	case ChannelInApp:
		return p.EnableInApp
	}
	return false
}

// PreferencesPatch is a partial update to a resident's preferences. Nested
// quietHours and typePreferences entries merge into the stored document
// rather than replacing it wholesale.
type PreferencesPatch struct {
	EnablePush      *bool                     `json:"enablePush,omitempty"`
	EnableEmail     *bool                     `json:"enableEmail,omitempty"`
	EnableSms       *bool                     `json:"enableSms,omitempty"`
	EnableInApp     *bool                     `json:"enableInApp,omitempty"`
	QuietHours      *QuietHours               `json:"quietHours,omitempty"`
	TypePreferences map[string]TypePreference `json:"typePreferences,omitempty"`
}
