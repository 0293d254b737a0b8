package repository

import (
	"errors"
	"fmt"

	"github.com/finnkap/org-management-api/internal/database"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	// ErrCreateOrganization is returned when creating the organization fails inside the creation transaction.
	ErrCreateOrganization = errors.New("organization repository: create organization failed")
	// ErrCreateMembership is returned when creating the admin membership fails inside the creation transaction.
	ErrCreateMembership = errors.New("organization repository: create membership failed")
)

// GormOrganizationRepository is a GORM implementation of OrganizationRepository
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository creates a new OrganizationRepository
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// CreateWithAdmin creates the organization and its first ADMIN membership atomically.
func (r *GormOrganizationRepository) CreateWithAdmin(org *models.Organization, member *models.Membership) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateOrganization, err)
		}

		member.OrganizationID = org.ID

		if err := tx.Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateMembership, err)
		}

		return nil
	})
}

// FindByID finds an organization by ID
func (r *GormOrganizationRepository) FindByID(id uint64) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.First(&org, id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug finds an organization by slug
func (r *GormOrganizationRepository) FindBySlug(slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindMember finds a specific membership
func (r *GormOrganizationRepository) FindMember(organizationID, userID uint64) (*models.Membership, error) {
	var member models.Membership
	if err := r.db.Where("organization_id = ? AND user_id = ?", organizationID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembershipsByUserID lists all organizations a user is a member of
func (r *GormOrganizationRepository) ListMembershipsByUserID(userID uint64) ([]models.Membership, error) {
	var memberships []models.Membership
	if err := r.db.Preload("Organization").
		Where("user_id = ?", userID).
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}

// ListMembers lists members of an organization ordered by join date
func (r *GormOrganizationRepository) ListMembers(organizationID uint64, params utils.PaginationParams) ([]models.Membership, int64, error) {
	var total int64
	if err := r.db.Model(&models.Membership{}).
		Where("organization_id = ?", organizationID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var members []models.Membership
	if err := r.db.Preload("User").
		Where("organization_id = ?", organizationID).
		Order("joined_at asc").
		Scopes(database.Paginate(params)).
		Find(&members).Error; err != nil {
		return nil, 0, err
	}
	return members, total, nil
}
