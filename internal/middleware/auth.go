package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/schhatbar/PriorityPoll/internal/model"
)

const (
	claimsKey    = "claims"
	authErrorKey = "auth_error"
)

// TokenParser validates a bearer token. Implemented by service.AuthService.
type TokenParser interface {
	ParseToken(token string) (*model.Claims, error)
}

// Authenticate attaches the caller's claims when a valid bearer token is
// present. A missing, malformed or expired token leaves the request anonymous;
// RequireAuth and RequireAdmin report the reason if the route needs a caller.
func Authenticate(parser TokenParser) fiber.Handler {
	return func(c fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			c.Locals(authErrorKey, "Malformed Authorization header")
			return c.Next()
		}

		claims, err := parser.ParseToken(strings.TrimSpace(token))
		if err != nil {
			c.Locals(authErrorKey, "Invalid or expired token")
			return c.Next()
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() fiber.Handler {
	return func(c fiber.Ctx) error {
		if ClaimsFrom(c) == nil {
			return unauthenticated(c)
		}
		return c.Next()
	}
}

// RequireAdmin rejects anonymous requests with 401 and non-admins with 403.
func RequireAdmin() fiber.Handler {
	return func(c fiber.Ctx) error {
		claims := ClaimsFrom(c)
		if claims == nil {
			return unauthenticated(c)
		}
		if !claims.IsAdmin() {
			return ErrorResponse(c, fiber.StatusForbidden, "FORBIDDEN", "Admin access required")
		}
		return c.Next()
	}
}

func unauthenticated(c fiber.Ctx) error {
	msg, _ := c.Locals(authErrorKey).(string)
	if msg == "" {
		msg = "Authentication required"
	}
	return ErrorResponse(c, fiber.StatusUnauthorized, "UNAUTHORIZED", msg)
}

// ClaimsFrom returns the authenticated caller, or nil.
func ClaimsFrom(c fiber.Ctx) *model.Claims {
	claims, _ := c.Locals(claimsKey).(*model.Claims)
	return claims
}

func IsAdmin(c fiber.Ctx) bool {
	return ClaimsFrom(c).IsAdmin()
}
