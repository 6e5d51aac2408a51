package handlers

import (
	"errors"
	"log"

	"warlords/internal/services"

	"github.com/gofiber/fiber/v2"
)

// statusByError maps each business failure to its HTTP status. Errors not
// in this map are store failures and must not reach the client verbatim.
var statusByError = map[error]int{
	services.ErrUnauthorized:               fiber.StatusUnauthorized,
	services.ErrMissingCredentials:         fiber.StatusBadRequest,
	services.ErrInvalidCredentials:         fiber.StatusUnauthorized,
	services.ErrMissingFields:              fiber.StatusBadRequest,
	services.ErrPasswordTooShort:           fiber.StatusBadRequest,
	services.ErrEmailTaken:                 fiber.StatusConflict,
	services.ErrUsernameTaken:              fiber.StatusConflict,
	services.ErrAccountNotFound:            fiber.StatusNotFound,
	services.ErrSecondaryPasswordRequired:  fiber.StatusForbidden,
	services.ErrSecondaryPasswordIncorrect: fiber.StatusForbidden,
	services.ErrSecondaryPasswordTooShort:  fiber.StatusBadRequest,
	services.ErrNoSecondaryPasswordSet:     fiber.StatusBadRequest,
	services.ErrNameLengthInvalid:          fiber.StatusBadRequest,
	services.ErrNameCharsInvalid:           fiber.StatusBadRequest,
	services.ErrDuplicateName:              fiber.StatusConflict,
	services.ErrCharacterLimitReached:      fiber.StatusConflict,
	services.ErrCharacterNotFound:          fiber.StatusNotFound,
	services.ErrInvalidAmount:              fiber.StatusBadRequest,
	services.ErrSameCharacter:              fiber.StatusBadRequest,
	services.ErrInsufficientBalance:        fiber.StatusUnprocessableEntity,
}

// respondError writes a service failure as the error envelope. Business
// failures keep their user-facing message; anything else is logged and
// hidden behind a generic 500.
func respondError(c *fiber.Ctx, err error, message string) error {
	for kind, status := range statusByError {
		if errors.Is(err, kind) {
			return c.Status(status).JSON(fiber.Map{
				"message": message,
				"error":   err.Error(),
			})
		}
	}

	log.Printf("%s: %v", message, err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": message,
	})
}
