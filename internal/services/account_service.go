package services

import (
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"warlords/internal/events"
	"warlords/internal/models"
	"warlords/internal/password"
	"warlords/internal/repositories"
)

// Character name and secondary password rules.
const (
	MinCharacterNameLength     = 2
	MaxCharacterNameLength     = 16
	MinSecondaryPasswordLength = 6
)

var characterNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AccountService handles authenticated account operations: the profile,
// the secondary password, character management and jpoint transfers. Every
// method takes the resolved caller id and fails with ErrUnauthorized before
// touching the store when it is empty.
type AccountService struct {
	userRepo repositories.UserRepository
	charRepo repositories.CharacterRepository
	events   *events.Client
}

// NewAccountService creates a new AccountService.
func NewAccountService(userRepo repositories.UserRepository, charRepo repositories.CharacterRepository, eventsClient *events.Client) *AccountService {
	return &AccountService{
		userRepo: userRepo,
		charRepo: charRepo,
		events:   eventsClient,
	}
}

// GetProfile returns the caller's account profile. A session referencing an
// account no longer in the store yields ErrAccountNotFound, which callers
// must show as an error rather than treat as logged-out.
func (s *AccountService) GetProfile(callerID string) (*models.AccountProfile, error) {
	user, err := s.loadCaller(callerID)
	if err != nil {
		return nil, err
	}

	count, err := s.charRepo.CountByOwner(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to count characters: %w", err)
	}

	return &models.AccountProfile{
		ID:                   user.ID,
		Email:                user.Email,
		Username:             user.Username,
		HasSecondaryPassword: user.HasSecondaryPassword(),
		CharacterCount:       count,
		CreatedAt:            user.CreatedAt,
	}, nil
}

// SetSecondaryPassword sets or changes the secondary password. Changing an
// existing one requires the current secondary password; setting the first
// one does not. Verification and the write happen within this one call.
func (s *AccountService) SetSecondaryPassword(callerID, currentPassword, newPassword string) (string, error) {
	user, err := s.loadCaller(callerID)
	if err != nil {
		return "", err
	}

	if user.HasSecondaryPassword() {
		if err := verifySecondary(user, currentPassword); err != nil {
			return "", err
		}
	}

	if len(newPassword) < MinSecondaryPasswordLength {
		return "", ErrSecondaryPasswordTooShort
	}

	digest, err := password.Hash(newPassword, password.SecondaryCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash secondary password: %w", err)
	}
	if err := s.userRepo.UpdateSecondaryPassword(callerID, digest); err != nil {
		return "", fmt.Errorf("failed to store secondary password: %w", err)
	}

	return "Secondary password updated", nil
}

// RemoveSecondaryPassword clears the secondary password after verifying the
// current one.
func (s *AccountService) RemoveSecondaryPassword(callerID, currentPassword string) (string, error) {
	user, err := s.loadCaller(callerID)
	if err != nil {
		return "", err
	}

	if !user.HasSecondaryPassword() {
		return "", ErrNoSecondaryPasswordSet
	}
	if !password.Verify(currentPassword, user.SecondaryPassword) {
		return "", ErrSecondaryPasswordIncorrect
	}

	if err := s.userRepo.UpdateSecondaryPassword(callerID, ""); err != nil {
		return "", fmt.Errorf("failed to clear secondary password: %w", err)
	}

	return "Secondary password removed", nil
}

// ListCharacters returns all characters owned by the caller, highest level
// first.
func (s *AccountService) ListCharacters(callerID string) ([]models.Character, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	characters, err := s.charRepo.GetAllByOwner(callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list characters: %w", err)
	}
	return characters, nil
}

// CreateCharacter creates a new level-1 character with no faction, points
// or gold. The repository re-checks the account cap and name uniqueness
// inside its insert transaction; the checks here are the user-facing ones.
func (s *AccountService) CreateCharacter(callerID, name string) (*models.Character, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}

	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < MinCharacterNameLength || n > MaxCharacterNameLength {
		return nil, ErrNameLengthInvalid
	}
	if !characterNamePattern.MatchString(name) {
		return nil, ErrNameCharsInvalid
	}

	character := &models.Character{
		UserID:  callerID,
		Name:    name,
		Faction: models.FactionNone,
		Level:   1,
		JPoint:  0,
		Gold:    0,
	}
	if err := s.charRepo.Create(character); err != nil {
		switch {
		case errors.Is(err, repositories.ErrCharacterLimit):
			return nil, ErrCharacterLimitReached
		case errors.Is(err, repositories.ErrDuplicateName):
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create character: %w", err)
	}

	s.publish(events.TypeCharacterCreated, map[string]interface{}{
		"userID":      callerID,
		"characterID": character.ID,
		"name":        character.Name,
	})

	return character, nil
}

// TransferJPoint moves jpoint between two characters of the caller. The
// debit and credit are one transactional unit in the repository; a missing
// and a foreign character produce the same failure.
func (s *AccountService) TransferJPoint(callerID, fromCharacterID, toCharacterID string, amount int64) (string, error) {
	if callerID == "" {
		return "", ErrUnauthorized
	}
	if amount <= 0 {
		return "", ErrInvalidAmount
	}
	if fromCharacterID == toCharacterID {
		return "", ErrSameCharacter
	}

	from, to, err := s.charRepo.TransferPoints(callerID, fromCharacterID, toCharacterID, amount)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return "", ErrCharacterNotFound
		case errors.Is(err, repositories.ErrInsufficientPoints):
			return "", ErrInsufficientBalance
		}
		return "", fmt.Errorf("failed to transfer points: %w", err)
	}

	s.publish(events.TypePointsTransferred, map[string]interface{}{
		"userID": callerID,
		"from":   from.ID,
		"to":     to.ID,
		"amount": amount,
	})

	return fmt.Sprintf("Transferred %d JPoint from %s to %s", amount, from.Name, to.Name), nil
}

// DeleteCharacter removes one of the caller's characters. When a secondary
// password is set it must be supplied and verified first; the verification
// and the deletion happen within this one call.
func (s *AccountService) DeleteCharacter(callerID, characterID, secondaryPassword string) (string, error) {
	user, err := s.loadCaller(callerID)
	if err != nil {
		return "", err
	}

	if user.HasSecondaryPassword() {
		if err := verifySecondary(user, secondaryPassword); err != nil {
			return "", err
		}
	}

	deleted, err := s.charRepo.DeleteByIDAndOwner(characterID, callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return "", ErrCharacterNotFound
		}
		return "", fmt.Errorf("failed to delete character: %w", err)
	}

	s.publish(events.TypeCharacterDeleted, map[string]interface{}{
		"userID":      callerID,
		"characterID": deleted.ID,
		"name":        deleted.Name,
	})

	return fmt.Sprintf("Character %s deleted", deleted.Name), nil
}

// loadCaller short-circuits unauthenticated callers and resolves the
// account, translating a stale session into ErrAccountNotFound.
func (s *AccountService) loadCaller(callerID string) (*models.User, error) {
	if callerID == "" {
		return nil, ErrUnauthorized
	}
	user, err := s.userRepo.GetByID(callerID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return user, nil
}

func verifySecondary(user *models.User, supplied string) error {
	if supplied == "" {
		return ErrSecondaryPasswordRequired
	}
	if !password.Verify(supplied, user.SecondaryPassword) {
		return ErrSecondaryPasswordIncorrect
	}
	return nil
}

func (s *AccountService) publish(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
