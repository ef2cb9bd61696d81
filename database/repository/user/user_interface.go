package userRepo

import "vecino/models"

// UserRepository is the resident-directory lookup the delivery engine
// consumes. Account lifecycle is owned by the portal's user service; the
// engine only reads delivery endpoints and writes the push token.
type UserRepository interface {
	// GetByID retrieves a resident by their unique ID.
	GetByID(id string) (*models.User, error)
	// UpdateFCMToken stores the resident's current push device token.
	UpdateFCMToken(id, token string) error
}
