package database

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleViewer    Role = "viewer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleDeveloper, RoleViewer:
		return true
	}
	return false
}

// Level orders roles so access checks are a single comparison.
func (r Role) Level() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleDeveloper:
		return 2
	case RoleViewer:
		return 1
	}
	return 0
}

func (r Role) AtLeast(min Role) bool {
	return r.Level() >= min.Level()
}

type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserPending  UserStatus = "pending"
	UserInactive UserStatus = "inactive"
)

type Plan string

const (
	PlanFree         Plan = "free"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

type User struct {
	ID             uuid.UUID       `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	PasswordHash   string          `json:"-"`
	Avatar         *string         `json:"avatar"`
	Role           Role            `json:"role" gorm:"default:'developer'"`
	OrganizationID uuid.UUID       `json:"organization_id" gorm:"type:uuid"`
	Organization   *Organization   `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
	Status         UserStatus      `json:"status" gorm:"default:'active'"`
	LastLoginAt    time.Time       `json:"last_login_at" gorm:"default:now()"`
	Preferences    UserPreferences `json:"preferences" gorm:"type:jsonb"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (u *User) TableName() string {
	return "application.user"
}

type Usage struct {
	Users          int       `json:"users" gorm:"default:0"`
	Repositories   int       `json:"repositories" gorm:"default:0"`
	ScansThisMonth int       `json:"scans_this_month" gorm:"default:0"`
	LastResetDate  time.Time `json:"last_reset_date" gorm:"default:now()"`
}

type Organization struct {
	ID   uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name string    `json:"name"`
	Slug string    `json:"slug" gorm:"uniqueIndex"`
	Plan Plan      `json:"plan" gorm:"default:'free'"`

	// Creation-time overrides; zero means the plan default applies.
	MaxUsers        int `json:"max_users" gorm:"default:0"`
	MaxRepositories int `json:"max_repositories" gorm:"default:0"`

	Usage    Usage                `json:"usage" gorm:"embedded;embeddedPrefix:usage_"`
	Settings OrganizationSettings `json:"settings" gorm:"type:jsonb"`
	Billing  BillingInfo          `json:"billing" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (o *Organization) TableName() string {
	return "application.organization"
}

type Invite struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Token          uuid.UUID  `json:"token" gorm:"type:uuid;uniqueIndex"`
	Email          string     `json:"email"`
	Role           Role       `json:"role" gorm:"default:'developer'"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid"`
	InvitedBy      uuid.UUID  `json:"invited_by" gorm:"type:uuid"`
	ExpiresAt      time.Time  `json:"expires_at"`
	AcceptedAt     *time.Time `json:"accepted_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

func (i *Invite) TableName() string {
	return "application.invite"
}
