package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a portal account.
type User struct {
	ID                string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username          string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email             string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password          string `gorm:"type:varchar(255)" validate:"required,min=8"` // No json tag for security
	SecondaryPassword string `gorm:"type:varchar(255)"`                           // Empty means the feature is disabled
	gorm.Model               // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// HasSecondaryPassword reports whether a secondary password is set on the account.
func (u *User) HasSecondaryPassword() bool {
	return u.SecondaryPassword != ""
}

// PublicUser is the projection of a User that is safe to return to clients.
// It never carries password hashes.
type PublicUser struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Public returns the client-safe projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Username: u.Username}
}

// AccountProfile is a derived view of a User for the dashboard: the public
// fields plus the character count and whether a secondary password is set.
type AccountProfile struct {
	ID                   string    `json:"id"`
	Email                string    `json:"email"`
	Username             string    `json:"username"`
	HasSecondaryPassword bool      `json:"has_secondary_password"`
	CharacterCount       int64     `json:"character_count"`
	CreatedAt            time.Time `json:"created_at"`
}
