package repositories

import (
	"errors"
	"fmt"

	"warlords/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMCharacterRepository is a GORM implementation of CharacterRepository.
type GORMCharacterRepository struct {
	db *gorm.DB
}

// NewGORMCharacterRepository creates a new instance of GORMCharacterRepository.
func NewGORMCharacterRepository(db *gorm.DB) *GORMCharacterRepository {
	return &GORMCharacterRepository{
		db: db,
	}
}

// GetAllByOwner retrieves all characters for an owner, highest level first.
func (r *GORMCharacterRepository) GetAllByOwner(userID string) ([]models.Character, error) {
	var characters []models.Character
	if err := r.db.Where("user_id = ?", userID).Order("level DESC, name ASC").Find(&characters).Error; err != nil {
		return nil, fmt.Errorf("failed to get characters for user %s: %w", userID, err)
	}
	return characters, nil
}

// GetByID retrieves a single character by its ID.
func (r *GORMCharacterRepository) GetByID(id string) (*models.Character, error) {
	var character models.Character
	if err := r.db.First(&character, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get character by ID %s: %w", id, err)
	}
	return &character, nil
}

// CountByOwner returns how many characters the owner has.
func (r *GORMCharacterRepository) CountByOwner(userID string) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Character{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count characters for user %s: %w", userID, err)
	}
	return count, nil
}

// Create inserts a new character. The account cap and the case-insensitive
// name uniqueness are re-checked inside the insert transaction. On Postgres
// the owner row is locked first so concurrent creates for one account are
// serialized and the cap count stays trustworthy under read committed; the
// unique index on (user_id, name_key) backstops the name check either way.
func (r *GORMCharacterRepository) Create(character *models.Character) error {
	if character.ID == "" {
		character.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Select("id").
				First(&models.User{}, "id = ?", character.UserID).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}

		var count int64
		if err := tx.Model(&models.Character{}).Where("user_id = ?", character.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count >= models.MaxCharactersPerAccount {
			return ErrCharacterLimit
		}

		var dupes int64
		if err := tx.Model(&models.Character{}).
			Where("user_id = ? AND LOWER(name) = LOWER(?)", character.UserID, character.Name).
			Count(&dupes).Error; err != nil {
			return err
		}
		if dupes > 0 {
			return ErrDuplicateName
		}

		if err := tx.Create(character).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateName
			}
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCharacterLimit) || errors.Is(err, ErrDuplicateName) {
			return err
		}
		return fmt.Errorf("failed to create character: %w", err)
	}
	return nil
}

// TransferPoints moves amount jpoint from one character to another within a
// single transaction. The debit only lands when the stored balance still
// covers it, so two transfers racing over the same source cannot drive the
// balance negative even under read committed.
func (r *GORMCharacterRepository) TransferPoints(ownerID, fromID, toID string, amount int64) (*models.Character, *models.Character, error) {
	var from, to models.Character
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&from, "id = ? AND user_id = ?", fromID, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if err := tx.First(&to, "id = ? AND user_id = ?", toID, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		debit := tx.Model(&models.Character{}).
			Where("id = ? AND user_id = ? AND jpoint >= ?", fromID, ownerID, amount).
			Update("jpoint", gorm.Expr("jpoint - ?", amount))
		if debit.Error != nil {
			return debit.Error
		}
		if debit.RowsAffected == 0 {
			return ErrInsufficientPoints
		}
		if err := tx.Model(&to).Update("jpoint", gorm.Expr("jpoint + ?", amount)).Error; err != nil {
			return err
		}

		from.JPoint -= amount
		to.JPoint += amount
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientPoints) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to transfer points: %w", err)
	}
	return &from, &to, nil
}

// DeleteByIDAndOwner removes the character scoped by both id and owner, and
// returns the deleted record.
func (r *GORMCharacterRepository) DeleteByIDAndOwner(id, ownerID string) (*models.Character, error) {
	var character models.Character
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&character, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		return tx.Delete(&character).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to delete character %s: %w", id, err)
	}
	return &character, nil
}
