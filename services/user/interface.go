package user

import (
	userRepo "vecino/database/repository/user"
	"vecino/models"
)

// UserService is the resident-directory lookup consumed by the delivery
// engine: active flag, push token, email, phone, locale.
type UserService interface {
	// GetUserByID retrieves a resident by their unique ID.
	GetUserByID(userID string) (*models.User, error)
	// RegisterFCMToken stores the resident's current push device token.
	RegisterFCMToken(userID, token string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo userRepo.UserRepository
}

func (s *DefaultUserService) GetUserByID(userID string) (*models.User, error) {
	return s.Repo.GetByID(userID)
}

func (s *DefaultUserService) RegisterFCMToken(userID, token string) error {
	return s.Repo.UpdateFCMToken(userID, token)
}
