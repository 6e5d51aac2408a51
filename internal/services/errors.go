package services

import "errors"

// Business-rule failures returned by the services. The error text is the
// user-facing message; handlers map each kind to an HTTP status. Anything
// not in this list is a store failure and surfaces as a generic 500.
var (
	ErrUnauthorized = errors.New("you must be logged in to do that")

	// Login. The "no such user" and "wrong password" cases share one
	// message so responses cannot be used to enumerate accounts.
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")

	// Registration.
	ErrMissingFields    = errors.New("all fields are required")
	ErrPasswordTooShort = errors.New("password must be at least 8 characters")
	ErrEmailTaken       = errors.New("this email is already registered")
	ErrUsernameTaken    = errors.New("this username is already taken")

	// Stale session: the cookie is valid but the account is gone.
	ErrAccountNotFound = errors.New("account not found")

	// Secondary password flows.
	ErrSecondaryPasswordRequired  = errors.New("secondary password is required")
	ErrSecondaryPasswordIncorrect = errors.New("secondary password is incorrect")
	ErrSecondaryPasswordTooShort  = errors.New("secondary password must be at least 6 characters")
	ErrNoSecondaryPasswordSet     = errors.New("no secondary password is set")

	// Character management. ErrCharacterNotFound covers foreign characters
	// too, so other users' character ids cannot be probed.
	ErrNameLengthInvalid     = errors.New("character name must be 2 to 16 characters")
	ErrNameCharsInvalid      = errors.New("character name may only contain letters, numbers and underscores")
	ErrDuplicateName         = errors.New("you already have a character with that name")
	ErrCharacterLimitReached = errors.New("you cannot have more than 10 characters")
	ErrCharacterNotFound     = errors.New("character not found")

	// JPoint transfer.
	ErrInvalidAmount       = errors.New("transfer amount must be greater than zero")
	ErrSameCharacter       = errors.New("cannot transfer points to the same character")
	ErrInsufficientBalance = errors.New("insufficient jpoint balance")
)
