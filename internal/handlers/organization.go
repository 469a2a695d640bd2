package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"coderev/internal/config"
	"coderev/internal/database"
	porg "coderev/internal/platform/organization"
)

func GetOrganization(c *fiber.Ctx) error {
	org := c.Locals("organization").(database.Organization)

	return respondData(c, fiber.StatusOK, fiber.Map{
		"organization": org,
		"limits":       porg.EffectiveLimits(&org),
	})
}

func GetOrganizationUsage(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	caller := c.Locals("organization").(database.Organization)

	// Re-read so the report reflects counters moved by concurrent requests.
	org, err := porg.NewService(db).GetByID(caller.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"usage":  org.Usage,
		"limits": porg.EffectiveLimits(org),
	})
}

func UpdateOrganizationSettings(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	org := c.Locals("organization").(database.Organization)

	var settings database.OrganizationSettings
	if err := c.BodyParser(&settings); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input")
	}

	if !settings.DefaultUserRole.Valid() {
		return respondFieldErrors(c, "Validation failed", map[string]string{
			"default_user_role": "unknown role",
		})
	}

	if n := settings.ScanSettings.MaxConcurrentScans; n < 1 || n > 10 {
		return respondFieldErrors(c, "Validation failed", map[string]string{
			"max_concurrent_scans": "must be between 1 and 10",
		})
	}

	for _, recipient := range settings.NotificationSettings.Email.Recipients {
		if err := config.Validate.Var(recipient, "email"); err != nil {
			return respondFieldErrors(c, "Validation failed", map[string]string{
				"recipients": "invalid email address: " + recipient,
			})
		}
	}

	updated, err := porg.NewService(db).UpdateSettings(org.ID, settings)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, updated)
}

// ResetUsage triggers the monthly scan-counter reset on demand. The same
// operation runs on a daily schedule; both paths are idempotent.
func ResetUsage(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)

	affected, err := porg.NewService(db).ResetMonthlyUsage(time.Now())
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	log.Infof("monthly usage reset applied to %d organizations", affected)

	return respondData(c, fiber.StatusOK, fiber.Map{
		"organizations_reset": affected,
	})
}
