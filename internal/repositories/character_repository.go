package repositories

import "warlords/internal/models"

// CharacterRepository defines the interface for character data access.
// Mutating operations are scoped by owner so that a foreign character is
// indistinguishable from a missing one.
type CharacterRepository interface {
	// GetAllByOwner returns the owner's characters ordered by descending
	// level, then name, so equal levels sort stably.
	GetAllByOwner(userID string) ([]models.Character, error)
	GetByID(id string) (*models.Character, error)
	CountByOwner(userID string) (int64, error)
	// Create inserts the character, re-checking the per-account cap and the
	// case-insensitive name uniqueness inside the same transaction. Returns
	// ErrCharacterLimit or ErrDuplicateName when a constraint fails.
	Create(character *models.Character) error
	// TransferPoints atomically moves amount jpoint between two characters
	// of the same owner. Both the debit and the credit happen in one
	// transaction; a failure leaves both balances untouched. Returns the
	// updated characters. ErrNotFound covers missing and foreign characters
	// alike; ErrInsufficientPoints covers an underfunded source.
	TransferPoints(ownerID, fromID, toID string, amount int64) (*models.Character, *models.Character, error)
	// DeleteByIDAndOwner removes the character and returns it, or
	// ErrNotFound if it does not exist or belongs to someone else.
	DeleteByIDAndOwner(id, ownerID string) (*models.Character, error)
}
