package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	User *domain.User
	Role domain.UserRole
}

// Middleware validates bearer tokens and loads principals. The request
// moves through token verification, user lookup, active-status check,
// and stale-password check; a failure at any step leaves the request
// unauthenticated with a specific reason.
type Middleware struct {
	tokens *TokenManager
	users  repository.UserRepository
}

// NewMiddleware constructs the auth gate.
func NewMiddleware(tokens *TokenManager, users repository.UserRepository) *Middleware {
	return &Middleware{tokens: tokens, users: users}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	principal, err := m.authenticate(c)
	if err != nil {
		return err
	}
	c.Locals(principalKey, principal)
	return c.Next()
}

// Optional runs the same checks but proceeds unauthenticated on any
// failure, for endpoints that personalize without requiring login.
func (m *Middleware) Optional(c *fiber.Ctx) error {
	if principal, err := m.authenticate(c); err == nil {
		c.Locals(principalKey, principal)
	}
	return c.Next()
}

func (m *Middleware) authenticate(c *fiber.Ctx) (*Principal, error) {
	tokenStr := extractToken(c)
	if tokenStr == "" {
		return nil, apperrors.NewUnauthorized("missing access token")
	}

	claims, err := m.tokens.ParseAccessToken(tokenStr)
	if err != nil {
		if errors.Is(err, ErrWrongTokenType) {
			return nil, apperrors.NewUnauthorized("refresh tokens cannot authenticate requests")
		}
		return nil, apperrors.NewUnauthorized("invalid or expired token")
	}

	user, err := m.users.GetByID(c.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", nil)
		}
		return nil, apperrors.MapError(err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account is not active")
	}

	// Tokens issued before the last password change are stale.
	if user.PasswordChangedAt != nil && claims.IssuedAt != nil &&
		user.PasswordChangedAt.After(claims.IssuedAt.Time) {
		return nil, apperrors.NewUnauthorized("password changed, please log in again")
	}

	return &Principal{User: user, Role: user.Role}, nil
}

// extractToken checks sources in order: Authorization header (Bearer
// scheme), cookie, query parameter. First present wins.
func extractToken(c *fiber.Ctx) string {
	if header := c.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie := c.Cookies("access_token"); cookie != "" {
		return cookie
	}
	return c.Query("token")
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
