package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"warlords/internal/models"

	"github.com/google/uuid"
)

// MockCharacterRepository is an in-memory implementation of CharacterRepository.
type MockCharacterRepository struct {
	characters map[string]models.Character
	mu         sync.RWMutex
}

// NewMockCharacterRepository creates a new instance of MockCharacterRepository.
func NewMockCharacterRepository() *MockCharacterRepository {
	return &MockCharacterRepository{
		characters: make(map[string]models.Character),
	}
}

// GetAllByOwner returns the owner's characters, highest level first.
func (r *MockCharacterRepository) GetAllByOwner(userID string) ([]models.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owned := make([]models.Character, 0)
	for _, character := range r.characters {
		if character.UserID == userID {
			owned = append(owned, character)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].Level != owned[j].Level {
			return owned[i].Level > owned[j].Level
		}
		return owned[i].Name < owned[j].Name
	})
	return owned, nil
}

// GetByID returns a character by its ID.
func (r *MockCharacterRepository) GetByID(id string) (*models.Character, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	character, ok := r.characters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &character, nil
}

// CountByOwner returns how many characters the owner has.
func (r *MockCharacterRepository) CountByOwner(userID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var count int64
	for _, character := range r.characters {
		if character.UserID == userID {
			count++
		}
	}
	return count, nil
}

// Create adds a new character, enforcing the account cap and name
// uniqueness under the same lock as the insert.
func (r *MockCharacterRepository) Create(character *models.Character) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, existing := range r.characters {
		if existing.UserID != character.UserID {
			continue
		}
		count++
		if strings.EqualFold(existing.Name, character.Name) {
			return ErrDuplicateName
		}
	}
	if count >= models.MaxCharactersPerAccount {
		return ErrCharacterLimit
	}

	if character.ID == "" {
		character.ID = uuid.New().String()
	}
	character.CreatedAt = time.Now()
	character.UpdatedAt = time.Now()
	r.characters[character.ID] = *character
	return nil
}

// TransferPoints moves amount jpoint between two characters of the same
// owner. The single lock makes the debit and credit one unit.
func (r *MockCharacterRepository) TransferPoints(ownerID, fromID, toID string, amount int64) (*models.Character, *models.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	from, ok := r.characters[fromID]
	if !ok || from.UserID != ownerID {
		return nil, nil, ErrNotFound
	}
	to, ok := r.characters[toID]
	if !ok || to.UserID != ownerID {
		return nil, nil, ErrNotFound
	}
	if from.JPoint < amount {
		return nil, nil, ErrInsufficientPoints
	}

	from.JPoint -= amount
	to.JPoint += amount
	from.UpdatedAt = time.Now()
	to.UpdatedAt = time.Now()
	r.characters[fromID] = from
	r.characters[toID] = to
	return &from, &to, nil
}

// DeleteByIDAndOwner removes the character scoped by id and owner.
func (r *MockCharacterRepository) DeleteByIDAndOwner(id, ownerID string) (*models.Character, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	character, ok := r.characters[id]
	if !ok || character.UserID != ownerID {
		return nil, ErrNotFound
	}
	delete(r.characters, id)
	return &character, nil
}
