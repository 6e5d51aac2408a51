package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"warlords/internal/events"
	"warlords/internal/models"
	"warlords/internal/password"
	"warlords/internal/repositories"
	"warlords/internal/session"
)

// MinPasswordLength is the minimum length for the login password.
const MinPasswordLength = 8

// AuthService handles login, registration and session resolution. Sessions
// move Anonymous -> Authenticated via Login/Register and back via cookie
// destruction at the handler; there are no intermediate states.
type AuthService struct {
	userRepo repositories.UserRepository
	codec    *session.Codec
	events   *events.Client
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, codec *session.Codec, eventsClient *events.Client) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		codec:    codec,
		events:   eventsClient,
	}
}

// CurrentUser opens the session token and returns the identity it carries.
// A missing, tampered, expired or logged-out token returns nil; that is the
// normal "not logged in" outcome, never an error.
func (s *AuthService) CurrentUser(token string) *session.Data {
	if token == "" {
		return nil
	}
	data, ok := s.codec.Open(token)
	if !ok || !data.IsLoggedIn || data.UserID == "" {
		return nil
	}
	return &data
}

// Login authenticates by email and password and returns the public user
// projection together with the session payload to issue.
func (s *AuthService) Login(email, plaintext string) (*models.PublicUser, session.Data, error) {
	email = strings.TrimSpace(email)
	if email == "" || plaintext == "" {
		return nil, session.Data{}, ErrMissingCredentials
	}

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Same message as a wrong password; see ErrInvalidCredentials.
			return nil, session.Data{}, ErrInvalidCredentials
		}
		return nil, session.Data{}, fmt.Errorf("login lookup failed: %w", err)
	}

	if !password.Verify(plaintext, user.Password) {
		return nil, session.Data{}, ErrInvalidCredentials
	}

	public := user.Public()
	return &public, s.sessionFor(user), nil
}

// Register creates a new account, hashes the password and returns the
// public projection together with the session payload to issue.
func (s *AuthService) Register(username, email, plaintext string) (*models.PublicUser, session.Data, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || plaintext == "" {
		return nil, session.Data{}, ErrMissingFields
	}
	if len(plaintext) < MinPasswordLength {
		return nil, session.Data{}, ErrPasswordTooShort
	}

	existing, err := s.userRepo.FindByEmailOrUsername(email, username)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return nil, session.Data{}, fmt.Errorf("registration uniqueness check failed: %w", err)
	}
	if existing != nil {
		// Email takes priority when both collide.
		if existing.Email == email {
			return nil, session.Data{}, ErrEmailTaken
		}
		return nil, session.Data{}, ErrUsernameTaken
	}

	digest, err := password.Hash(plaintext, password.LoginCost)
	if err != nil {
		return nil, session.Data{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: digest,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, session.Data{}, fmt.Errorf("failed to register user: %w", err)
	}

	s.publish(events.TypeUserRegistered, map[string]interface{}{
		"userID":   user.ID,
		"username": user.Username,
	})

	public := user.Public()
	return &public, s.sessionFor(user), nil
}

func (s *AuthService) sessionFor(user *models.User) session.Data {
	return session.Data{
		UserID:     user.ID,
		Email:      user.Email,
		Username:   user.Username,
		IsLoggedIn: true,
	}
}

func (s *AuthService) publish(eventType string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(eventType, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", eventType, err)
	}
}
