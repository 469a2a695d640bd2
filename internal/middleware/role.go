package middleware

import (
	"github.com/gofiber/fiber/v2"

	"coderev/internal/database"
)

// RequireRole rejects requests whose authenticated user sits below the
// given role. Returns Forbidden, distinct from the missing-token case.
func RequireRole(min database.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := c.Locals("user").(database.User)
		if !ok {
			return unauthorized(c)
		}

		if !user.Role.AtLeast(min) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"success": false,
				"message": "Forbidden",
			})
		}

		return c.Next()
	}
}
