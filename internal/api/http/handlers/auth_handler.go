package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/request-desk/internal/api/dto"
	"github.com/spec-kit/request-desk/internal/auth"
	apperrors "github.com/spec-kit/request-desk/pkg/util/errorutil"
)

// AuthHandler exposes the demo login flow.
type AuthHandler struct {
	accounts *auth.AccountRegistry
	tokens   *auth.TokenManager
}

// NewAuthHandler constructs handler.
func NewAuthHandler(accounts *auth.AccountRegistry, tokens *auth.TokenManager) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens}
}

// Login POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Username == "" || req.Password == "" {
		return apperrors.NewValidationError("username and password required", nil)
	}

	identity, err := h.accounts.Authenticate(req.Username, req.Password)
	if err != nil {
		return apperrors.NewUnauthenticated("invalid username or password")
	}
	token, expiresAt, err := h.tokens.GenerateToken(identity)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	return c.JSON(dto.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		Identity: dto.IdentityResponse{
			ID:          identity.ID,
			Role:        string(identity.Role),
			DisplayName: identity.DisplayName,
		},
	})
}

// Me GET /auth/me.
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthenticated("authentication required")
	}
	return c.JSON(dto.IdentityResponse{
		ID:          identity.ID,
		Role:        string(identity.Role),
		DisplayName: identity.DisplayName,
	})
}
