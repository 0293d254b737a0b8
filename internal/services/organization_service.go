package services

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/finnkap/org-management-api/internal/constants"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/repository"
	"github.com/finnkap/org-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrOrganizationNotFound    = errors.New("organization not found")
	ErrInvalidOrganizationName = errors.New("organization name too short")
	ErrInvalidSlug             = errors.New("slug can only contain lowercase letters, numbers, and hyphens")
	ErrSlugTaken               = errors.New("organization with this slug already exists")
	ErrNotOrganizationMember   = errors.New("you don't have access to this organization")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// OrganizationService provides business logic for organization operations.
type OrganizationService struct {
	orgRepo repository.OrganizationRepository
}

// NewOrganizationService creates a new OrganizationService.
func NewOrganizationService(orgRepo repository.OrganizationRepository) *OrganizationService {
	return &OrganizationService{
		orgRepo: orgRepo,
	}
}

// CreateOrganizationInput represents parameters to create a new organization.
type CreateOrganizationInput struct {
	Name    string
	Slug    string
	OwnerID uint64
}

// CreateOrganization creates a new organization with the creator as its
// first ADMIN. The slug is immutable once created.
func (s *OrganizationService) CreateOrganization(input CreateOrganizationInput) (*models.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if len(name) < constants.MinNameLength {
		return nil, ErrInvalidOrganizationName
	}
	if len(input.Slug) < constants.MinSlugLength || !slugPattern.MatchString(input.Slug) {
		return nil, ErrInvalidSlug
	}

	if _, err := s.orgRepo.FindBySlug(input.Slug); err == nil {
		return nil, ErrSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check slug: %w", err)
	}

	org := &models.Organization{
		Name: name,
		Slug: input.Slug,
	}

	member := &models.Membership{
		UserID:   input.OwnerID,
		Role:     models.RoleAdmin,
		JoinedAt: time.Now(),
	}

	if err := s.orgRepo.CreateWithAdmin(org, member); err != nil {
		switch {
		case errors.Is(err, repository.ErrCreateOrganization):
			return nil, fmt.Errorf("failed to create organization: %w", err)
		case errors.Is(err, repository.ErrCreateMembership):
			return nil, fmt.Errorf("failed to add creator to organization: %w", err)
		default:
			return nil, fmt.Errorf("failed to complete organization creation: %w", err)
		}
	}

	return org, nil
}

// ListOrganizationsForUser returns organizations the user belongs to.
func (s *OrganizationService) ListOrganizationsForUser(userID uint64) ([]models.Membership, error) {
	memberships, err := s.orgRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	return memberships, nil
}

// ListMembers returns the members of an organization. The requester must
// hold any membership in it; the check runs against the store, not the session.
func (s *OrganizationService) ListMembers(requesterID, orgID uint64, params utils.PaginationParams) ([]models.Membership, int64, error) {
	if _, err := s.orgRepo.FindMember(orgID, requesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotOrganizationMember
		}
		return nil, 0, fmt.Errorf("failed to verify membership: %w", err)
	}

	members, total, err := s.orgRepo.ListMembers(orgID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organization members: %w", err)
	}
	return members, total, nil
}
