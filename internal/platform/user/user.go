package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coderev/internal/auth"
	"coderev/internal/database"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// the two cases are indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError carries field-level detail for malformed input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

// dummyHash is compared against when no user matches the email, keeping
// verification effort constant for both failure cases.
var dummyHash, _ = auth.HashPassword(uuid.NewString())

type CreateUserInput struct {
	Name           string
	Email          string
	Password       string
	OrganizationID uuid.UUID
	Role           database.Role
	Status         database.UserStatus
}

type UserService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *UserService) Create(input CreateUserInput) (*database.User, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < 2 || len(name) > 50 {
		return nil, &ValidationError{Field: "name", Message: "must be between 2 and 50 characters"}
	}

	email := NormalizeEmail(input.Email)
	if !strings.Contains(email, "@") {
		return nil, &ValidationError{Field: "email", Message: "malformed address"}
	}

	if len(input.Password) < 6 {
		return nil, &ValidationError{Field: "password", Message: "must be at least 6 characters"}
	}

	if !input.Role.Valid() {
		return nil, &ValidationError{Field: "role", Message: "unknown role"}
	}

	var existing database.User
	if result := s.db.First(&existing, "email = ?", email); result.Error == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = database.UserActive
	}

	user := database.User{
		Name:           name,
		Email:          email,
		PasswordHash:   hash,
		Role:           input.Role,
		OrganizationID: input.OrganizationID,
		Status:         status,
		LastLoginAt:    time.Now(),
		Preferences:    database.DefaultUserPreferences(),
	}

	if result := s.db.Create(&user); result.Error != nil {
		return nil, result.Error
	}

	return &user, nil
}

func (s *UserService) GetUserByID(userID uuid.UUID) (*database.User, error) {
	var user database.User
	result := s.db.First(&user, "id = ?", userID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *UserService) GetUserByEmail(email string) (*database.User, error) {
	var user database.User
	result := s.db.First(&user, "email = ?", NormalizeEmail(email))
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

// VerifyCredentials checks a password against the stored hash and updates
// the last login timestamp on success. Unknown email, wrong password and
// non-active status all fail with ErrInvalidCredentials.
func (s *UserService) VerifyCredentials(email, password string) (*database.User, error) {
	user, err := s.GetUserByEmail(email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			auth.VerifyPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	if user.Status != database.UserActive {
		return nil, ErrInvalidCredentials
	}

	user.LastLoginAt = time.Now()
	s.db.Exec("UPDATE application.user SET last_login_at = ? WHERE id = ?", user.LastLoginAt, user.ID)

	return user, nil
}

// ListByOrganization is tenant-scoped; the organization id is mandatory.
func (s *UserService) ListByOrganization(orgID uuid.UUID) ([]database.User, error) {
	var users []database.User
	result := s.db.Where("organization_id = ?", orgID).Order("name ASC").Find(&users)
	if result.Error != nil {
		return nil, result.Error
	}
	return users, nil
}

func (s *UserService) Update(user *database.User) error {
	result := s.db.Save(user)
	if result.Error != nil {
		return result.Error
	}
	return nil
}
