package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/finnkap/org-management-api/internal/database"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrInvitationGone is returned when a delete targets an invitation row
	// that a concurrent accept or cancel already removed.
	ErrInvitationGone = errors.New("invitation repository: invitation no longer exists")
	// ErrCreateUser is returned when creating the accepting user fails inside the consume transaction.
	ErrCreateUser = errors.New("invitation repository: create user failed")
	// ErrCreateMember is returned when creating the membership fails inside the consume transaction.
	ErrCreateMember = errors.New("invitation repository: create membership failed")
)

// GormInvitationRepository is a GORM implementation of InvitationRepository
type GormInvitationRepository struct {
	db *gorm.DB
}

// NewInvitationRepository creates a new InvitationRepository
func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &GormInvitationRepository{db: db}
}

// Create creates a new invitation
func (r *GormInvitationRepository) Create(invite *models.Invitation) error {
	return r.db.Create(invite).Error
}

// FindByToken finds an invitation by token with its organization loaded
func (r *GormInvitationRepository) FindByToken(token string) (*models.Invitation, error) {
	var invite models.Invitation
	if err := r.db.Preload("Organization").
		Where("token = ?", token).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindByIDAndOrg finds an invitation scoped to an organization
func (r *GormInvitationRepository) FindByIDAndOrg(id, organizationID uint64) (*models.Invitation, error) {
	var invite models.Invitation
	if err := r.db.Where("id = ? AND organization_id = ?", id, organizationID).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// FindActiveByEmailAndOrg finds an unexpired invitation for (email, org)
func (r *GormInvitationRepository) FindActiveByEmailAndOrg(email string, organizationID uint64, now time.Time) (*models.Invitation, error) {
	var invite models.Invitation
	if err := r.db.Where("email = ? AND organization_id = ? AND expires_at > ?", email, organizationID, now).
		First(&invite).Error; err != nil {
		return nil, err
	}
	return &invite, nil
}

// ListActiveByOrg lists unexpired invitations for an organization, newest first
func (r *GormInvitationRepository) ListActiveByOrg(organizationID uint64, now time.Time, params utils.PaginationParams) ([]models.Invitation, int64, error) {
	query := r.db.Model(&models.Invitation{}).
		Where("organization_id = ? AND expires_at > ?", organizationID, now)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var invites []models.Invitation
	if err := query.Order("created_at desc").
		Scopes(database.Paginate(params)).
		Find(&invites).Error; err != nil {
		return nil, 0, err
	}
	return invites, total, nil
}

// Delete deletes an invitation, failing with ErrInvitationGone when the row
// is already gone so cancellation of a consumed invite maps to NotFound.
func (r *GormInvitationRepository) Delete(id uint64) error {
	res := r.db.Delete(&models.Invitation{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvitationGone
	}
	return nil
}

// Consume turns an invitation into a membership in one transaction. The
// invitation delete is the final, guarded step: losing a race against
// another accept or a cancel rolls back the membership as well.
func (r *GormInvitationRepository) Consume(inviteID uint64, newUser *models.User, member *models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if newUser != nil {
			if err := tx.Create(newUser).Error; err != nil {
				return fmt.Errorf("%w: %v", ErrCreateUser, err)
			}
			member.UserID = newUser.ID
		}

		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMember, err)
		}

		res := tx.Delete(&models.Invitation{}, inviteID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrInvitationGone
		}

		return nil
	})
}
