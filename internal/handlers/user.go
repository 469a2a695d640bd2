package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"coderev/internal/config"
	"coderev/internal/database"
	"coderev/internal/mail"
	porg "coderev/internal/platform/organization"
	puser "coderev/internal/platform/user"
)

func GetCurrentUser(c *fiber.Ctx) error {
	usr := c.Locals("user").(database.User)

	return respondData(c, fiber.StatusOK, usr)
}

func UpdateCurrentUser(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	usr := c.Locals("user").(database.User)

	type UpdateUserInput struct {
		Name        *string                   `json:"name" validate:"omitempty,min=2,max=50"`
		Avatar      *string                   `json:"avatar"`
		Preferences *database.UserPreferences `json:"preferences"`
	}

	var input UpdateUserInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input")
	}

	if err := config.Validate.Struct(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	if input.Name != nil {
		usr.Name = *input.Name
	}
	if input.Avatar != nil {
		if *input.Avatar != "" {
			usr.Avatar = input.Avatar
		} else {
			usr.Avatar = nil
		}
	}
	if input.Preferences != nil {
		usr.Preferences = *input.Preferences
	}

	usr.Organization = nil
	if err := puser.NewService(db).Update(&usr); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, usr)
}

// ListUsers returns the members of the caller's organization only.
func ListUsers(c *fiber.Ctx) error {
	db := c.Locals("db").(*gorm.DB)
	usr := c.Locals("user").(database.User)

	users, err := puser.NewService(db).ListByOrganization(usr.OrganizationID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, users)
}

func InviteUser(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)
	usr := c.Locals("user").(database.User)
	org := c.Locals("organization").(database.Organization)

	type InviteInput struct {
		Email string        `json:"email" validate:"required,email"`
		Role  database.Role `json:"role" validate:"omitempty,oneof=admin developer viewer"`
	}

	var input InviteInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input")
	}

	if err := config.Validate.Struct(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	// Early admission check for a clear error; the counter itself is only
	// charged when the invite is accepted.
	if !porg.CanAdmit(&org, porg.ResourceUser) {
		return respondError(c, fiber.StatusBadRequest, "Organization has reached its member limit; upgrade the plan to add more seats")
	}

	role := input.Role
	if role == "" {
		role = org.Settings.DefaultUserRole
	}

	invite, err := puser.NewService(db).CreateInvite(org.ID, input.Email, role, usr.ID)
	if err != nil {
		if errors.Is(err, puser.ErrEmailTaken) {
			return respondError(c, fiber.StatusBadRequest, "User already exists with this email")
		}
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	message := mail.Email{
		Subject:  fmt.Sprintf("You have been invited to %s on CodeRev", org.Name),
		From:     fmt.Sprintf("CodeRev <no-reply@%s>", cfg.MailgunDomain),
		To:       []string{invite.Email},
		Template: "organization-invite",
		TemplateVars: map[string]any{
			"organizationName": org.Name,
			"inviterName":      usr.Name,
			"inviteToken":      invite.Token,
		},
	}

	mailer := mail.NewMailer(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunAPIBase)
	if err := mailer.SendTemplatedMail(&message); err != nil {
		log.Errorf("failed to send invite email: %v", err)
	}

	return respondData(c, fiber.StatusCreated, invite)
}
