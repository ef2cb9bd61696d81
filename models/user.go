package models

import "time"

// User is the resident-directory projection the delivery engine consumes.
// Account management lives elsewhere in the portal; the engine only needs
// the delivery endpoints and the active flag.
type User struct {
	ID        string    `bson:"id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email"`
	Phone     string    `bson:"phone,omitempty" json:"phone,omitempty"`
	FCMToken  string    `bson:"fcmToken,omitempty" json:"fcmToken,omitempty"`
	Locale    string    `bson:"locale,omitempty" json:"locale,omitempty"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
