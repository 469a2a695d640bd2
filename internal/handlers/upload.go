package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"coderev/internal/config"
	"coderev/internal/database"
	"coderev/internal/platform/storage"
	puser "coderev/internal/platform/user"
)

func UploadAvatar(c *fiber.Ctx) error {
	cfg := c.Locals("config").(*config.Config)
	db := c.Locals("db").(*gorm.DB)
	usr := c.Locals("user").(database.User)

	file, err := c.FormFile("avatar")
	if err != nil {
		return respondError(c, fiber.StatusBadRequest, "Avatar file required")
	}

	storageService := storage.NewStorageService(cfg.Storage())

	if !storageService.IsImageExtensionAllowed(file.Filename) {
		return respondError(c, fiber.StatusBadRequest, "Unsupported image type")
	}

	key := fmt.Sprintf("avatars/%s/%s", usr.ID, storageService.GenerateKeyName())
	if err := storageService.SaveFile(file, key, c); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	usr.Avatar = &key
	usr.Organization = nil
	if err := puser.NewService(db).Update(&usr); err != nil {
		return respondError(c, fiber.StatusInternalServerError, "Internal server error")
	}

	return respondData(c, fiber.StatusOK, usr)
}
