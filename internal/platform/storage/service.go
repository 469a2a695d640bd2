package storage

import (
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/s3/v2"

	"coderev/pkg/utils"
)

// StorageService defines methods for file storage operations
type StorageService interface {
	// SaveFile saves a file to the storage
	SaveFile(file *multipart.FileHeader, path string, c *fiber.Ctx) error

	// IsImageExtensionAllowed checks if the file is an accepted avatar image
	IsImageExtensionAllowed(filename string) bool

	// GenerateKeyName generates a random key name for file storage
	GenerateKeyName() string
}

type storageService struct {
	storage *s3.Storage
}

func NewStorageService(storage *s3.Storage) StorageService {
	return &storageService{
		storage: storage,
	}
}

func (s *storageService) SaveFile(file *multipart.FileHeader, path string, c *fiber.Ctx) error {
	return c.SaveFileToStorage(file, path, s.storage)
}

func (s *storageService) IsImageExtensionAllowed(filename string) bool {
	allowedExtensions := []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range allowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (s *storageService) GenerateKeyName() string {
	return strings.ToLower(utils.GenerateRandomString(16))
}
