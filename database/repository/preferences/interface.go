package preferencesRepo

import "vecino/models"

// PreferencesRepository defines data access for notification preferences.
type PreferencesRepository interface {
	// GetByUserID retrieves the preferences document for a user, or nil when
	// the user has none yet.
	GetByUserID(userID string) (*models.NotificationPreferences, error)
	// Create inserts a new preferences document.
	Create(prefs *models.NotificationPreferences) error
	// ApplyPatch merges a partial update into the stored document. Nested
	// quietHours and typePreferences entries merge key by key instead of
	// replacing the whole sub-document.
	ApplyPatch(userID string, patch models.PreferencesPatch) error
	// Replace overwrites the preferences document wholesale (reset-to-default).
	Replace(prefs *models.NotificationPreferences) error
	// ClearQuietHours removes the quiet-hours window.
	ClearQuietHours(userID string) error
}
