package handlers

import (
	"log"

	"warlords/internal/middleware"
	"warlords/internal/models"
	"warlords/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AccountHandler handles HTTP requests for account and character
// management. All of its routes sit behind the SessionRequired middleware.
type AccountHandler struct {
	service  *services.AccountService
	validate *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(service *services.AccountService) *AccountHandler {
	return &AccountHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the account routes with the Fiber app.
func (h *AccountHandler) RegisterRoutes(router fiber.Router) {
	accountRoutes := router.Group("/account")
	accountRoutes.Get("/profile", h.HandleGetProfile)
	accountRoutes.Put("/secondary-password", h.HandleSetSecondaryPassword)
	accountRoutes.Delete("/secondary-password", h.HandleRemoveSecondaryPassword)

	characterRoutes := router.Group("/characters")
	characterRoutes.Get("/", h.HandleListCharacters)
	characterRoutes.Post("/", h.HandleCreateCharacter)
	characterRoutes.Post("/transfer", h.HandleTransferJPoint)
	characterRoutes.Delete("/:id", h.HandleDeleteCharacter)
}

// HandleGetProfile returns the caller's account profile.
func (h *AccountHandler) HandleGetProfile(c *fiber.Ctx) error {
	profile, err := h.service.GetProfile(middleware.CallerID(c))
	if err != nil {
		return respondError(c, err, "Could not load account profile")
	}
	return c.JSON(profile)
}

// SecondaryPasswordRequest carries the set/change payload.
type SecondaryPasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleSetSecondaryPassword sets or changes the secondary password.
func (h *AccountHandler) HandleSetSecondaryPassword(c *fiber.Ctx) error {
	var req SecondaryPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing secondary password request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	message, err := h.service.SetSecondaryPassword(middleware.CallerID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return respondError(c, err, "Could not update secondary password")
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}

// HandleRemoveSecondaryPassword clears the secondary password.
func (h *AccountHandler) HandleRemoveSecondaryPassword(c *fiber.Ctx) error {
	var req SecondaryPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing secondary password request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	message, err := h.service.RemoveSecondaryPassword(middleware.CallerID(c), req.CurrentPassword)
	if err != nil {
		return respondError(c, err, "Could not remove secondary password")
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}

// HandleListCharacters returns the caller's characters, highest level first.
func (h *AccountHandler) HandleListCharacters(c *fiber.Ctx) error {
	characters, err := h.service.ListCharacters(middleware.CallerID(c))
	if err != nil {
		return respondError(c, err, "Could not retrieve characters")
	}
	return c.JSON(models.PublicCharacters(characters))
}

// CreateCharacterRequest carries the new character's name.
type CreateCharacterRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleCreateCharacter creates a new character for the caller.
func (h *AccountHandler) HandleCreateCharacter(c *fiber.Ctx) error {
	var req CreateCharacterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create character request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	character, err := h.service.CreateCharacter(middleware.CallerID(c), req.Name)
	if err != nil {
		return respondError(c, err, "Could not create character")
	}
	return c.Status(fiber.StatusCreated).JSON(character.Public())
}

// TransferRequest carries a jpoint transfer between two owned characters.
type TransferRequest struct {
	FromCharacterID string `json:"from_character_id" validate:"required"`
	ToCharacterID   string `json:"to_character_id" validate:"required"`
	Amount          int64  `json:"amount"`
}

// HandleTransferJPoint moves jpoint between two of the caller's characters.
func (h *AccountHandler) HandleTransferJPoint(c *fiber.Ctx) error {
	var req TransferRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing transfer request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"error":   err.Error(),
		})
	}

	message, err := h.service.TransferJPoint(middleware.CallerID(c), req.FromCharacterID, req.ToCharacterID, req.Amount)
	if err != nil {
		return respondError(c, err, "Could not transfer points")
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}

// DeleteCharacterRequest carries the optional secondary password guarding a
// deletion.
type DeleteCharacterRequest struct {
	SecondaryPassword string `json:"secondary_password"`
}

// HandleDeleteCharacter deletes one of the caller's characters.
func (h *AccountHandler) HandleDeleteCharacter(c *fiber.Ctx) error {
	var req DeleteCharacterRequest
	// The body is optional: accounts without a secondary password send none.
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			log.Printf("Error parsing delete character request body: %v", err)
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Invalid request body",
				"error":   err.Error(),
			})
		}
	}

	message, err := h.service.DeleteCharacter(middleware.CallerID(c), c.Params("id"), req.SecondaryPassword)
	if err != nil {
		return respondError(c, err, "Could not delete character")
	}
	return c.JSON(fiber.Map{
		"message": message,
	})
}
