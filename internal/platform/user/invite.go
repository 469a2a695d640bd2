package user

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"coderev/internal/database"
)

const inviteTTL = 7 * 24 * time.Hour

var ErrInviteInvalid = errors.New("invite invalid or expired")

// CreateInvite records a pending membership for an email address. The user
// record itself is created, and the usage counter charged, when the invite
// is accepted.
func (s *UserService) CreateInvite(orgID uuid.UUID, email string, role database.Role, invitedBy uuid.UUID) (*database.Invite, error) {
	email = NormalizeEmail(email)

	var existing database.User
	if result := s.db.First(&existing, "email = ?", email); result.Error == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, result.Error
	}

	if !role.Valid() {
		role = database.RoleDeveloper
	}

	invite := database.Invite{
		Token:          uuid.New(),
		Email:          email,
		Role:           role,
		OrganizationID: orgID,
		InvitedBy:      invitedBy,
		ExpiresAt:      time.Now().Add(inviteTTL),
	}

	if result := s.db.Create(&invite); result.Error != nil {
		return nil, result.Error
	}

	return &invite, nil
}

func (s *UserService) GetInviteByToken(token uuid.UUID) (*database.Invite, error) {
	var invite database.Invite
	result := s.db.First(&invite, "token = ?", token)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, result.Error
	}

	if invite.AcceptedAt != nil || time.Now().After(invite.ExpiresAt) {
		return nil, ErrInviteInvalid
	}

	return &invite, nil
}

func (s *UserService) MarkInviteAccepted(invite *database.Invite) error {
	now := time.Now()
	invite.AcceptedAt = &now

	result := s.db.Model(invite).Update("accepted_at", now)
	return result.Error
}
