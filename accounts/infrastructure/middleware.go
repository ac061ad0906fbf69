package infrastructure

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/mervel/storefront/accounts/application"
	"github.com/mervel/storefront/accounts/domain"
)

// Locals written by the auth middleware. UserIDLocal matches what the order
// handler reads to attach orders to signed-in customers.
const (
	UserIDLocal = "user_id"
	RoleLocal   = "user_role"
)

func bearer(c *fiber.Ctx) (string, bool) {
	authHeader := c.Get("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// OptionalAuth attaches the user when a valid token is present and lets anonymous requests through.
func OptionalAuth(auth *application.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := bearer(c); ok {
			if user, err := auth.Authenticate(c.UserContext(), token); err == nil {
				c.Locals(UserIDLocal, user.ID)
				c.Locals(RoleLocal, user.Role)
			}
		}
		return c.Next()
	}
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(auth *application.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderUpgrade) != "" && c.Get("Authorization") == "" {
			// Browsers cannot set headers on websocket upgrades.
			if q := c.Query("token"); q != "" {
				c.Request().Header.Set("Authorization", "Bearer "+q)
			}
		}

		token, ok := bearer(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization header"})
		}
		user, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid or expired token"})
		}

		c.Locals(UserIDLocal, user.ID)
		c.Locals(RoleLocal, user.Role)
		return c.Next()
	}
}

// RequireRole must run after RequireAuth. Admins pass every role check.
func RequireRole(required domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(RoleLocal).(domain.Role)
		if !ok {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "role not found in context"})
		}
		if role != required && role != domain.RoleAdmin {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient permissions"})
		}
		return c.Next()
	}
}
