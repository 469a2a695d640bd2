package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"coderev/internal/auth"
	"coderev/internal/config"
	"coderev/internal/database"
	porg "coderev/internal/platform/organization"
	puser "coderev/internal/platform/user"
)

func tokenIssuer(cfg *config.Config) *auth.TokenIssuer {
	return auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.TokenTTLDays)*24*time.Hour)
}

func Signup(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	type SignupInput struct {
		Name             string `json:"name" validate:"required,min=2,max=50"`
		Email            string `json:"email" validate:"required,email"`
		Password         string `json:"password" validate:"required,min=6"`
		OrganizationName string `json:"organizationName" validate:"required,min=2,max=100"`
		TeamSize         string `json:"teamSize" validate:"required,oneof=1-5 6-20 21-50 50+"`
	}

	var input SignupInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input")
	}

	if err := config.Validate.Struct(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	// Length validation alone admits symbol-only names whose derived slug
	// would be empty.
	if porg.MakeSlug(input.OrganizationName) == "" {
		return respondFieldErrors(c, "Validation failed", map[string]string{
			"organizationName": "must contain at least one letter or digit",
		})
	}

	userService := puser.NewService(db)
	if _, err := userService.GetUserByEmail(input.Email); err == nil {
		return respondError(c, fiber.StatusBadRequest, "User already exists with this email")
	} else if !errors.Is(err, puser.ErrNotFound) {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	var org *database.Organization
	var usr *database.User

	// Organization and founding admin are created together; a failure on
	// either side rolls back both so no orphaned organization survives.
	err := db.Transaction(func(tx *gorm.DB) error {
		orgService := porg.NewService(tx)

		var err error
		org, err = orgService.Create(input.OrganizationName, input.TeamSize)
		if err != nil {
			return err
		}

		usr, err = puser.NewService(tx).Create(puser.CreateUserInput{
			Name:           input.Name,
			Email:          input.Email,
			Password:       input.Password,
			OrganizationID: org.ID,
			Role:           database.RoleAdmin,
		})
		if err != nil {
			return err
		}

		if err := orgService.AdjustUsage(org.ID, porg.ResourceUser, 1); err != nil {
			return err
		}

		// Keep the returned payload in step with the persisted counter.
		org.Usage.Users++
		return nil
	})
	if err != nil {
		return signupError(c, err)
	}

	token, err := tokenIssuer(cfg).Issue(usr.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	log.Infof("new user registered: %s, organization: %s", usr.Email, org.Name)

	return respondData(c, fiber.StatusCreated, fiber.Map{
		"user":         usr,
		"organization": org,
		"token":        token,
	})
}

func signupError(c *fiber.Ctx, err error) error {
	var validationErr *puser.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return respondFieldErrors(c, "Validation failed", map[string]string{
			validationErr.Field: validationErr.Message,
		})
	case errors.Is(err, puser.ErrEmailTaken):
		return respondError(c, fiber.StatusBadRequest, "User already exists with this email")
	case errors.Is(err, porg.ErrSlugTaken):
		return respondError(c, fiber.StatusBadRequest, "Organization name already taken")
	case errors.Is(err, porg.ErrEmptySlug):
		return respondFieldErrors(c, "Validation failed", map[string]string{
			"organizationName": "must contain at least one letter or digit",
		})
	default:
		log.Errorf("signup failed: %v", err)
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}
}

func Login(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	type LoginInput struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	var input LoginInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input")
	}

	if err := config.Validate.Struct(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	usr, err := puser.NewService(db).VerifyCredentials(input.Email, input.Password)
	if err != nil {
		if errors.Is(err, puser.ErrInvalidCredentials) {
			return respondError(c, fiber.StatusUnauthorized, "Invalid credentials")
		}
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	org, err := porg.NewService(db).GetByID(usr.OrganizationID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	token, err := tokenIssuer(cfg).Issue(usr.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	log.Infof("user logged in: %s", usr.Email)

	return respondData(c, fiber.StatusOK, fiber.Map{
		"user":         usr,
		"organization": org,
		"token":        token,
	})
}

func VerifyToken(c *fiber.Ctx) error {
	usr := c.Locals("user").(database.User)

	org := usr.Organization
	usr.Organization = nil

	return respondData(c, fiber.StatusOK, fiber.Map{
		"user":         usr,
		"organization": org,
	})
}

func RefreshToken(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	usr := c.Locals("user").(database.User)

	token, err := tokenIssuer(cfg).Issue(usr.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, fiber.Map{
		"token": token,
	})
}

// Logout acknowledges the request; tokens are stateless and discarded
// client-side.
func Logout(c *fiber.Ctx) error {
	usr := c.Locals("user").(database.User)

	log.Infof("user logged out: %s", usr.Email)

	return respondData(c, fiber.StatusOK, fiber.Map{
		"message": "Logged out successfully",
	})
}

func AcceptInvite(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)

	type AcceptInviteInput struct {
		Token    string `json:"token" validate:"required,uuid"`
		Name     string `json:"name" validate:"required,min=2,max=50"`
		Password string `json:"password" validate:"required,min=6"`
	}

	var input AcceptInviteInput
	if err := c.BodyParser(&input); err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid input")
	}

	if err := config.Validate.Struct(input); err != nil {
		return respondError(c, fiber.StatusBadRequest, err.Error())
	}

	inviteToken, err := uuid.Parse(input.Token)
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Invalid invite token")
	}

	invite, err := puser.NewService(db).GetInviteByToken(inviteToken)
	if err != nil {
		if errors.Is(err, puser.ErrInviteInvalid) {
			return respondError(c, fiber.StatusBadRequest, "Invite invalid or expired")
		}
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	var usr *database.User

	err = db.Transaction(func(tx *gorm.DB) error {
		// Admission runs inside the same transaction as user creation so
		// concurrent accepts cannot jointly exceed the seat limit.
		if err := porg.NewService(tx).AdjustUsage(invite.OrganizationID, porg.ResourceUser, 1); err != nil {
			return err
		}

		userService := puser.NewService(tx)

		var err error
		usr, err = userService.Create(puser.CreateUserInput{
			Name:           input.Name,
			Email:          invite.Email,
			Password:       input.Password,
			OrganizationID: invite.OrganizationID,
			Role:           invite.Role,
		})
		if err != nil {
			return err
		}

		return userService.MarkInviteAccepted(invite)
	})
	if err != nil {
		var limitErr *porg.PlanLimitError
		switch {
		case errors.As(err, &limitErr):
			return respondError(c, fiber.StatusBadRequest, "Organization has reached its member limit; upgrade the plan to add more seats")
		case errors.Is(err, puser.ErrEmailTaken):
			return respondError(c, fiber.StatusBadRequest, "User already exists with this email")
		default:
			return signupError(c, err)
		}
	}

	org, err := porg.NewService(db).GetByID(invite.OrganizationID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	token, err := tokenIssuer(cfg).Issue(usr.ID)
	if err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusCreated, fiber.Map{
		"user":         usr,
		"organization": org,
		"token":        token,
	})
}
