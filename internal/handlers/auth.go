package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/parley/internal/auth"
	"github.com/nfrund/parley/internal/domain"
	"github.com/nfrund/parley/internal/middleware"
)

// AuthHandler handles the JSON authentication endpoints.
type AuthHandler struct {
	users    domain.UserRepository
	tokens   *auth.TokenManager
	validate *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{
		users:    users,
		tokens:   tokens,
		validate: validator.New(),
	}
}

// Register handles POST /api/auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Username, email and a password of at least 6 characters are required"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to hash password", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Registration failed"})
	}

	user, err := h.users.Create(c.Request().Context(), &domain.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "User already exists"})
		}
		middleware.FromContext(c.Request().Context()).Error("Failed to create user", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Registration failed"})
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to issue token", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Registration failed"})
	}

	return c.JSON(http.StatusCreated, AuthResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
}

// Login handles POST /api/auth/login. Unknown email and wrong password
// produce the same response so the endpoint doesn't confirm which emails
// have accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid request body"})
	}
	if err := h.validate.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Email and password are required"})
	}

	user, err := h.users.FindByEmail(c.Request().Context(), req.Email)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Login lookup failed", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Login failed"})
	}
	if user == nil || auth.CheckPassword(user.PasswordHash, req.Password) != nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Invalid email or password"})
	}

	token, err := h.tokens.Issue(user)
	if err != nil {
		middleware.FromContext(c.Request().Context()).Error("Failed to issue token", "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "Login failed"})
	}

	return c.JSON(http.StatusOK, AuthResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Email:    user.Email,
		Token:    token,
	})
}

// Me handles GET /api/auth/me. The auth middleware has already resolved the
// identity.
func (h *AuthHandler) Me(c echo.Context) error {
	identity := middleware.IdentityFromContext(c)
	if identity == nil {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "Not authorized"})
	}

	return c.JSON(http.StatusOK, MeResponse{
		ID:       identity.UserID,
		Username: identity.Username,
	})
}
