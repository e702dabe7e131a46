package handlers

import (
	"prospects/internal/middleware"
	"prospects/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *requestValidator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    newRequestValidator(),
	}
}

// RegisterRoutes registers the authentication routes. limit guards signup and
// login; requireAuth guards the account endpoint.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, requireAuth, limit fiber.Handler) {
	router.Post("/signup", limit, h.HandleSignup)
	router.Post("/login", limit, h.HandleLogin)
	router.Post("/check_username", h.HandleCheckUsername)
	router.Get("/me", requireAuth, h.HandleMe)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	Username        string `json:"username" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required,min=7"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// normalize trims and escapes profile fields. Passwords are left untouched.
func (r *SignupRequest) normalize() {
	r.FirstName = sanitize(r.FirstName)
	r.Username = sanitize(r.Username)
	r.Email = normalizeEmail(r.Email)
}

var signupStatus = statusOverrides{
	services.KindUpstream: fiber.StatusInternalServerError,
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, invalidBody(err), signupStatus)
	}
	req.normalize()
	if err := h.validate.check(req); err != nil {
		return writeError(c, err, signupStatus)
	}

	result, err := h.authService.Signup(c.UserContext(), services.SignupInput{
		FirstName: req.FirstName,
		Username:  req.Username,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return writeError(c, err, signupStatus)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var loginStatus = statusOverrides{
	services.KindInvalidCredentials: fiber.StatusBadRequest,
	services.KindUpstream:           fiber.StatusUnprocessableEntity,
	services.KindUnknown:            fiber.StatusUnprocessableEntity,
}

// HandleLogin handles user login and issues a credential.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, invalidBody(err), loginStatus)
	}
	req.Email = normalizeEmail(req.Email)
	if err := h.validate.check(req); err != nil {
		return writeError(c, err, loginStatus)
	}

	result, err := h.authService.Login(c.UserContext(), services.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, err, loginStatus)
	}
	return c.JSON(result)
}

// CheckUsernameRequest represents the request body for username availability.
type CheckUsernameRequest struct {
	Username string `json:"username" validate:"required"`
}

// HandleCheckUsername reports whether a username can still be registered.
func (h *AuthHandler) HandleCheckUsername(c *fiber.Ctx) error {
	var req CheckUsernameRequest
	if err := c.BodyParser(&req); err != nil {
		return writeError(c, invalidBody(err), nil)
	}
	req.Username = sanitize(req.Username)
	if err := h.validate.check(req); err != nil {
		return writeError(c, err, nil)
	}

	available, err := h.authService.CheckUsername(c.UserContext(), req.Username)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(fiber.Map{"availability": available})
}

// HandleMe returns the authenticated user's account.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	userID, _ := c.Locals(middleware.LocalUserID).(string)
	account, err := h.authService.Account(c.UserContext(), userID)
	if err != nil {
		return writeError(c, err, nil)
	}
	return c.JSON(account)
}
