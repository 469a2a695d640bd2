package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"coderev/internal/auth"
	"coderev/internal/config"
	"coderev/internal/database"
)

// AuthMiddleware resolves a bearer token to a (user, organization, role)
// tuple before any handler executes. The HTTP-facing error never reveals
// whether the token was expired or malformed.
func AuthMiddleware(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	authHeader := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return unauthorized(c)
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLDays)*24*time.Hour)
	userID, err := issuer.Verify(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			log.Debugf("rejected expired token for request %s", c.Path())
		}
		return unauthorized(c)
	}

	var user database.User
	result := db.Preload("Organization").First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return unauthorized(c)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}

	if user.Status != database.UserActive {
		return unauthorized(c)
	}

	// Every authenticated identity is tenant-bound; a user without a
	// resolvable organization does not pass the gate.
	if user.Organization == nil {
		return unauthorized(c)
	}

	c.Locals("user", user)
	c.Locals("token", token)
	c.Locals("organization", *user.Organization)

	return c.Next()
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"success": false,
		"message": "Unauthorized",
	})
}
