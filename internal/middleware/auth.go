// Package middleware provides HTTP middleware components for the application.
// It includes authentication and authorization middleware for the fiber web framework.
package middleware

import (
	"errors"
	"log"
	"strings"

	domainerrors "pazar/internal/errors"
	"pazar/internal/models"
	"pazar/internal/services/auth"
	"pazar/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware handles JWT token validation and user authentication.
// It extracts the JWT token from the Authorization header, validates it,
// and adds the user claims to the request context.
type AuthMiddleware struct {
	authService auth.Service
	tokens      *utils.TokenIssuer
}

func NewAuthMiddleware(authService auth.Service, tokens *utils.TokenIssuer) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		tokens:      tokens,
	}
}

// Handler validates JWT tokens and adds claims to the request context.
// It checks for:
// - Presence of Authorization header with Bearer token
// - Valid JWT signature and expiry
// - Token version matches current user version
// - The user is not banned
func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	claims, err := m.tokens.ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
	if err != nil {
		log.Printf("component=auth msg=\"token validation failed\" err=%v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	if _, err := m.authService.Authenticate(c.UserContext(), claims); err != nil {
		if errors.Is(err, domainerrors.ErrUserBanned) {
			return utils.Forbidden(c, domainerrors.ErrUserBanned.Message)
		}
		var de *domainerrors.DomainError
		if errors.As(err, &de) {
			return utils.Unauthorized(c, de.Message)
		}
		return utils.Error(c, err)
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)
	return c.Next()
}

// AdminAuthMiddleware verifies that the request has valid admin claims.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}
	if claims.Role != models.RoleAdmin {
		log.Printf("component=auth msg=\"admin access denied\" user_id=%d role=%s", claims.UserID, claims.Role)
		return utils.Forbidden(c, "insufficient permissions")
	}
	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return utils.Unauthorized(c, "unauthorized")
		}

		// If user is admin, allow all permissions
		if claims.Role == models.RoleAdmin || claims.HasPermission(permission) {
			return c.Next()
		}
		return utils.Forbidden(c, "insufficient permissions")
	}
}
