package notification

import (
	"context"
	"fmt"

	"vecino/models"
)

// GetPreferences retrieves the caller's preferences, creating the defaults
// lazily on first access.
func (s *DefaultNotificationService) GetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	prefs, err := s.Prefs.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	if prefs != nil {
		return prefs, nil
	}

	prefs = models.DefaultPreferences(userID)
	if err := s.Prefs.Create(prefs); err != nil {
		return nil, fmt.Errorf("failed to create default preferences: %w", err)
	}
	return prefs, nil
}

// UpdatePreferences merges a partial patch into the stored document. Nested
// typePreferences and quietHours entries merge rather than replace.
func (s *DefaultNotificationService) UpdatePreferences(ctx context.Context, userID string, patch models.PreferencesPatch) (*models.NotificationPreferences, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}
	if _, err := s.GetPreferences(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.Prefs.ApplyPatch(userID, patch); err != nil {
		return nil, err
	}
	return s.Prefs.GetByUserID(userID)
}

// ResetPreferences recreates the document wholesale with defaults.
func (s *DefaultNotificationService) ResetPreferences(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	prefs := models.DefaultPreferences(userID)
	if err := s.Prefs.Replace(prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}

// ToggleType flips one notification type on or off.
func (s *DefaultNotificationService) ToggleType(ctx context.Context, userID string, t models.NotificationType, enabled bool) (*models.NotificationPreferences, error) {
	if !models.ValidType(t) {
		return nil, fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, t)
	}
	return s.UpdatePreferences(ctx, userID, models.PreferencesPatch{
		TypePreferences: map[string]models.TypePreference{
			string(t): {Enabled: &enabled},
		},
	})
}

// SetQuietHours sets or moves the quiet-hours window.
func (s *DefaultNotificationService) SetQuietHours(ctx context.Context, userID string, window models.QuietHours) (*models.NotificationPreferences, error) {
	if _, ok := parseClock(window.Start); !ok {
		return nil, fmt.Errorf("%w: invalid quiet-hours start %q", ErrInvalidInput, window.Start)
	}
	if _, ok := parseClock(window.End); !ok {
		return nil, fmt.Errorf("%w: invalid quiet-hours end %q", ErrInvalidInput, window.End)
	}
	return s.UpdatePreferences(ctx, userID, models.PreferencesPatch{QuietHours: &window})
}

// ClearQuietHours removes the quiet-hours window.
func (s *DefaultNotificationService) ClearQuietHours(ctx context.Context, userID string) (*models.NotificationPreferences, error) {
	if _, err := s.GetPreferences(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.Prefs.ClearQuietHours(userID); err != nil {
		return nil, err
	}
	return s.Prefs.GetByUserID(userID)
}

// validatePatch rejects patches that name unknown channels or types.
func validatePatch(patch models.PreferencesPatch) error {
	if patch.QuietHours != nil {
		if _, ok := parseClock(patch.QuietHours.Start); !ok {
			return fmt.Errorf("%w: invalid quiet-hours start %q", ErrInvalidInput, patch.QuietHours.Start)
		}
		if _, ok := parseClock(patch.QuietHours.End); !ok {
			return fmt.Errorf("%w: invalid quiet-hours end %q", ErrInvalidInput, patch.QuietHours.End)
		}
	}
	for typ, tp := range patch.TypePreferences {
		if !models.ValidType(models.NotificationType(typ)) {
			return fmt.Errorf("%w: unknown notification type %q", ErrInvalidInput, typ)
		}
		for _, ch := range tp.Channels {
			if !models.ValidChannel(ch) {
				return fmt.Errorf("%w: unknown channel %q", ErrInvalidInput, ch)
			}
		}
		if tp.Priority != nil && !models.ValidPriority(*tp.Priority) {
			return fmt.Errorf("%w: unknown priority %q", ErrInvalidInput, *tp.Priority)
		}
	}
	return nil
}
