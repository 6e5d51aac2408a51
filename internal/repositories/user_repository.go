package repositories

import (
	"errors"

	"warlords/internal/models"
)

// Sentinel errors returned by repositories. Services translate these into
// user-facing failures; anything else is treated as a store failure.
var (
	// ErrNotFound means the requested record does not exist, or is not
	// visible to the given owner. Callers must not be able to tell the two
	// apart.
	ErrNotFound = errors.New("record not found")

	// ErrCharacterLimit means the owner already has the maximum number of
	// characters.
	ErrCharacterLimit = errors.New("character limit reached")

	// ErrDuplicateName means the owner already has a character with the
	// same name (case-insensitive).
	ErrDuplicateName = errors.New("duplicate character name")

	// ErrInsufficientPoints means the source character's jpoint balance is
	// smaller than the transfer amount.
	ErrInsufficientPoints = errors.New("insufficient jpoint balance")
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	GetByID(id string) (*models.User, error)
	// FindByEmailOrUsername returns any user matching either value, for
	// registration uniqueness checks.
	FindByEmailOrUsername(email, username string) (*models.User, error)
	// UpdateSecondaryPassword stores the digest; an empty digest clears it.
	UpdateSecondaryPassword(id, digest string) error
}
