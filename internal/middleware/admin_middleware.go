package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AdminTokenKey is the context key under which the extracted bearer token is
// stored for downstream handlers.
const AdminTokenKey = "admin_token"

// AdminToken extracts the bearer token from the Authorization header and
// stores it in the request context. It never rejects a request itself: the
// mutation gateway owns the authorization decision, so a missing or malformed
// header simply yields an empty token that the gateway will refuse.
func AdminToken() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := ""
		authHeader := c.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
		c.Locals(AdminTokenKey, token)
		return c.Next()
	}
}
