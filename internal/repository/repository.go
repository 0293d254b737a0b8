package repository

import (
	"time"

	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// Update updates a user
	Update(user *models.User) error
}

// OrganizationRepository defines the interface for organization data access
type OrganizationRepository interface {
	// CreateWithAdmin creates an organization and its first ADMIN membership
	// within a single transaction.
	CreateWithAdmin(org *models.Organization, member *models.Membership) error

	// FindByID finds an organization by ID
	FindByID(id uint64) (*models.Organization, error)

	// FindBySlug finds an organization by slug
	FindBySlug(slug string) (*models.Organization, error)

	// FindMember finds a specific membership
	FindMember(organizationID, userID uint64) (*models.Membership, error)

	// ListMembershipsByUserID lists all organizations a user is a member of
	ListMembershipsByUserID(userID uint64) ([]models.Membership, error)

	// ListMembers lists members of an organization, oldest first
	ListMembers(organizationID uint64, params utils.PaginationParams) ([]models.Membership, int64, error)
}

// InvitationRepository defines the interface for invitation data access
type InvitationRepository interface {
	// Create creates a new invitation
	Create(invite *models.Invitation) error

	// FindByToken finds an invitation by token with its organization loaded
	FindByToken(token string) (*models.Invitation, error)

	// FindByIDAndOrg finds an invitation scoped to an organization
	FindByIDAndOrg(id, organizationID uint64) (*models.Invitation, error)

	// FindActiveByEmailAndOrg finds an unexpired invitation for (email, org)
	FindActiveByEmailAndOrg(email string, organizationID uint64, now time.Time) (*models.Invitation, error)

	// ListActiveByOrg lists unexpired invitations for an organization, newest first
	ListActiveByOrg(organizationID uint64, now time.Time, params utils.PaginationParams) ([]models.Invitation, int64, error)

	// Delete deletes an invitation. Returns ErrInvitationGone when the row
	// was already consumed or cancelled.
	Delete(id uint64) error

	// Consume atomically creates the accepting user (when newUser is
	// non-nil), creates the membership, and deletes the invitation. The
	// delete is guarded: if a concurrent accept or cancel removed the row
	// first, the whole transaction fails with ErrInvitationGone.
	Consume(inviteID uint64, newUser *models.User, member *models.Membership) error
}
