package handlers

import (
	"log"

	"warlords/internal/services"
	"warlords/internal/session"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	codec       *session.Codec
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, codec *session.Codec) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		codec:       codec,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", h.HandleMe)
}

// RegisterRequest represents the request body for registration. Presence
// checks live in the auth service; only shapes are validated here.
type RegisterRequest struct {
	Username string `json:"username" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=255"`
	Password string `json:"password" validate:"omitempty,max=72"`
}

// HandleRegister handles new account registration and issues a session.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing register request body: %v", err)
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

	user, sess, err := h.authService.Register(req.Username, req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Could not register account")
	}

	if err := h.codec.Issue(c, sess); err != nil {
		log.Printf("Error issuing session after registration: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not establish session",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account registered successfully",
		"user":    user,
	})
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin handles user login and issues the session cookie.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing login request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	user, sess, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		return respondError(c, err, "Authentication failed")
	}

	if err := h.codec.Issue(c, sess); err != nil {
		log.Printf("Error issuing session after login: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not establish session",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
	})
}

// HandleLogout clears the session cookie. Always succeeds.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	h.codec.Clear(c)
	return c.JSON(fiber.Map{
		"message": "Logged out",
	})
}

// HandleMe returns the identity carried by the session cookie, or a null
// user when the caller is anonymous. Being logged out is not an error here.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	sess := h.authService.CurrentUser(c.Cookies(session.CookieName))
	if sess == nil {
		return c.JSON(fiber.Map{"user": nil})
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":       sess.UserID,
			"email":    sess.Email,
			"username": sess.Username,
		},
	})
}
