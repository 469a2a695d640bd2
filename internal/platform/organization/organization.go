package organization

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"coderev/internal/database"
)

var (
	ErrNotFound  = errors.New("organization not found")
	ErrSlugTaken = errors.New("organization name already taken")
	// ErrEmptySlug rejects names with no alphanumeric content, which would
	// otherwise derive an empty slug.
	ErrEmptySlug = errors.New("organization name yields empty slug")
)

// PlanLimitError signals an admission denied because a usage counter is at
// its plan limit. Distinct from validation failures so handlers can surface
// an actionable message.
type PlanLimitError struct {
	Kind  ResourceKind
	Limit int
}

func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("%s limit reached (%d)", e.Kind, e.Limit)
}

type ResourceKind int

const (
	ResourceUser ResourceKind = iota
	ResourceRepository
	ResourceScan
)

func (k ResourceKind) String() string {
	switch k {
	case ResourceUser:
		return "user"
	case ResourceRepository:
		return "repository"
	case ResourceScan:
		return "scan"
	}
	return "unknown"
}

type Limits struct {
	MaxUsers           int `json:"max_users"`
	MaxRepositories    int `json:"max_repositories"`
	MaxScansPerMonth   int `json:"max_scans_per_month"`
	MaxConcurrentScans int `json:"max_concurrent_scans"`
}

var planLimits = map[database.Plan]Limits{
	database.PlanFree:         {MaxUsers: 5, MaxRepositories: 3, MaxScansPerMonth: 100, MaxConcurrentScans: 1},
	database.PlanProfessional: {MaxUsers: 20, MaxRepositories: 25, MaxScansPerMonth: 1000, MaxConcurrentScans: 3},
	database.PlanEnterprise:   {MaxUsers: 100, MaxRepositories: 100, MaxScansPerMonth: 10000, MaxConcurrentScans: 10},
}

// LimitsFor returns the limit tuple for a plan, falling back to the free
// tier for unrecognized plans.
func LimitsFor(plan database.Plan) Limits {
	if limits, ok := planLimits[plan]; ok {
		return limits
	}
	return planLimits[database.PlanFree]
}

// EffectiveLimits applies per-organization overrides on top of the plan
// defaults. Overrides exist only for users and repositories.
func EffectiveLimits(org *database.Organization) Limits {
	limits := LimitsFor(org.Plan)
	if org.MaxUsers > 0 {
		limits.MaxUsers = org.MaxUsers
	}
	if org.MaxRepositories > 0 {
		limits.MaxRepositories = org.MaxRepositories
	}
	return limits
}

// SizeOverrides maps a signup team-size bucket to maxUsers/maxRepositories
// overrides. Unknown buckets get the largest tier.
func SizeOverrides(teamSize string) (maxUsers, maxRepositories int) {
	switch teamSize {
	case "1-5":
		return 5, 3
	case "6-20":
		return 20, 10
	case "21-50":
		return 50, 25
	default:
		return 100, 100
	}
}

// MakeSlug derives the URL-safe unique identifier from an organization
// name: lowercase, non-alphanumeric runs collapsed to a single hyphen, no
// leading or trailing hyphen.
func MakeSlug(name string) string {
	return slug.Make(name)
}

func CanAdmit(org *database.Organization, kind ResourceKind) bool {
	limits := EffectiveLimits(org)
	switch kind {
	case ResourceUser:
		return org.Usage.Users < limits.MaxUsers
	case ResourceRepository:
		return org.Usage.Repositories < limits.MaxRepositories
	case ResourceScan:
		return org.Usage.ScansThisMonth < limits.MaxScansPerMonth
	}
	return false
}

type OrganizationService struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *OrganizationService {
	return &OrganizationService{db: db}
}

func (s *OrganizationService) Create(name, teamSize string) (*database.Organization, error) {
	orgSlug := MakeSlug(name)
	if orgSlug == "" {
		return nil, ErrEmptySlug
	}

	var existing database.Organization
	if result := s.db.First(&existing, "slug = ?", orgSlug); result.Error == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	maxUsers, maxRepositories := SizeOverrides(teamSize)

	now := time.Now()
	org := database.Organization{
		Name:            name,
		Slug:            orgSlug,
		Plan:            database.PlanFree,
		MaxUsers:        maxUsers,
		MaxRepositories: maxRepositories,
		Usage:           database.Usage{LastResetDate: now},
		Settings:        database.DefaultOrganizationSettings(),
		Billing: database.BillingInfo{
			Status:             database.BillingActive,
			CurrentPeriodStart: now,
			CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		},
	}

	if result := s.db.Create(&org); result.Error != nil {
		return nil, result.Error
	}

	return &org, nil
}

func (s *OrganizationService) GetByID(orgID uuid.UUID) (*database.Organization, error) {
	var org database.Organization
	result := s.db.First(&org, "id = ?", orgID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, result.Error
	}
	return &org, nil
}

// AdjustUsage applies a usage delta in a single guarded UPDATE so that
// concurrent admissions cannot jointly exceed a limit. Increments fail with
// PlanLimitError when the counter is at its effective limit; decrements
// clamp at zero.
func (s *OrganizationService) AdjustUsage(orgID uuid.UUID, kind ResourceKind, delta int) error {
	if delta == 0 {
		return nil
	}

	org, err := s.GetByID(orgID)
	if err != nil {
		return err
	}

	column, limit := usageColumn(org, kind)
	if column == "" {
		return fmt.Errorf("unknown resource kind %d", kind)
	}

	if delta > 0 {
		result := s.db.Exec(
			fmt.Sprintf("UPDATE application.organization SET %s = %s + ?, updated_at = now() WHERE id = ? AND %s + ? <= ?", column, column, column),
			delta, orgID, delta, limit)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return &PlanLimitError{Kind: kind, Limit: limit}
		}
		return nil
	}

	result := s.db.Exec(
		fmt.Sprintf("UPDATE application.organization SET %s = GREATEST(%s + ?, 0), updated_at = now() WHERE id = ?", column, column),
		delta, orgID)
	return result.Error
}

func usageColumn(org *database.Organization, kind ResourceKind) (string, int) {
	limits := EffectiveLimits(org)
	switch kind {
	case ResourceUser:
		return "usage_users", limits.MaxUsers
	case ResourceRepository:
		return "usage_repositories", limits.MaxRepositories
	case ResourceScan:
		return "usage_scans_this_month", limits.MaxScansPerMonth
	}
	return "", 0
}

// ResetMonthlyUsage zeroes scansThisMonth for every organization whose last
// reset precedes the first day of now's month. Idempotent; safe to run
// multiple times per day.
func (s *OrganizationService) ResetMonthlyUsage(now time.Time) (int64, error) {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	result := s.db.Exec(
		"UPDATE application.organization SET usage_scans_this_month = 0, usage_last_reset_date = ?, updated_at = now() WHERE usage_last_reset_date < ?",
		now, firstOfMonth)
	if result.Error != nil {
		return 0, result.Error
	}

	return result.RowsAffected, nil
}

func (s *OrganizationService) UpdateSettings(orgID uuid.UUID, settings database.OrganizationSettings) (*database.Organization, error) {
	org, err := s.GetByID(orgID)
	if err != nil {
		return nil, err
	}

	org.Settings = settings

	if result := s.db.Model(org).Update("settings", settings); result.Error != nil {
		return nil, result.Error
	}

	return org, nil
}
