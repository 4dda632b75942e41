package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"meetapi/internal/auth"
)

// UserIDLocalKey is the key under which the authenticated user ID is stored
// in Fiber's context locals.
const UserIDLocalKey = "user_id"

// Auth verifies the Bearer token on incoming requests and stores the user ID
// in context locals. Requests without a valid token are rejected with 401.
func Auth(issuer *auth.TokenIssuer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		const prefix = "Bearer "
		if !strings.HasPrefix(header, prefix) {
			return fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
		}

		userID, err := issuer.Verify(strings.TrimPrefix(header, prefix))
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// UserID returns the authenticated user ID stored by Auth, or "" when the
// request is unauthenticated.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(UserIDLocalKey).(string)
	return id
}
