package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"github.com/finnkap/org-management-api/internal/constants"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/repository"
	"github.com/finnkap/org-management-api/internal/utils"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrNotOrganizationAdmin = errors.New("only organization admins can manage invitations")
	ErrAlreadyMember        = errors.New("user is already a member of this organization")
	ErrDuplicateInvitation  = errors.New("an invitation has already been sent to this email")
	ErrInvalidRole          = errors.New("invalid role")
	ErrInvitationNotFound   = errors.New("invitation not found")
	ErrInvitationExpired    = errors.New("this invitation has expired")
	ErrNotificationFailed   = errors.New("failed to send invitation email")
)

// InvitationService manages the invitation lifecycle: creation, validation,
// acceptance, cancellation, and the resulting membership mutation.
type InvitationService struct {
	inviteRepo repository.InvitationRepository
	orgRepo    repository.OrganizationRepository
	userRepo   repository.UserRepository
	notifier   Notifier
	appBaseURL string
}

// NewInvitationService creates a new InvitationService.
func NewInvitationService(
	inviteRepo repository.InvitationRepository,
	orgRepo repository.OrganizationRepository,
	userRepo repository.UserRepository,
	notifier Notifier,
	appBaseURL string,
) *InvitationService {
	return &InvitationService{
		inviteRepo: inviteRepo,
		orgRepo:    orgRepo,
		userRepo:   userRepo,
		notifier:   notifier,
		appBaseURL: strings.TrimRight(appBaseURL, "/"),
	}
}

// CreateInvitationInput represents parameters to invite someone to an organization.
type CreateInvitationInput struct {
	RequesterID    uint64
	OrganizationID uint64
	Email          string
	Role           models.OrganizationRole
}

// CreateInvitation issues a single-use invitation and emails it to the
// recipient. The requester's ADMIN role is re-verified against the store,
// never trusted from the session. If the email dispatch fails the
// invitation is rolled back so no undiscoverable invitation survives.
func (s *InvitationService) CreateInvitation(ctx context.Context, input CreateInvitationInput) (*models.Invitation, error) {
	member, err := s.orgRepo.FindMember(input.OrganizationID, input.RequesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotOrganizationAdmin
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	if !member.Role.AtLeast(models.RoleAdmin) {
		return nil, ErrNotOrganizationAdmin
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if !input.Role.Valid() {
		return nil, ErrInvalidRole
	}

	org, err := s.orgRepo.FindByID(input.OrganizationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to find organization: %w", err)
	}

	// The recipient must not already hold a membership.
	if user, err := s.userRepo.FindByEmail(email); err == nil {
		if _, err := s.orgRepo.FindMember(org.ID, user.ID); err == nil {
			return nil, ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to verify membership: %w", err)
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	now := time.Now()
	if _, err := s.inviteRepo.FindActiveByEmailAndOrg(email, org.ID, now); err == nil {
		return nil, ErrDuplicateInvitation
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing invitations: %w", err)
	}

	invite := &models.Invitation{
		Token:          uuid.NewString(),
		Email:          email,
		OrganizationID: org.ID,
		Role:           input.Role,
		ExpiresAt:      now.Add(constants.InvitationTTL),
	}

	if err := s.inviteRepo.Create(invite); err != nil {
		return nil, fmt.Errorf("failed to create invitation: %w", err)
	}

	inviterName := ""
	if inviter, err := s.userRepo.FindByID(input.RequesterID); err == nil {
		inviterName = inviter.Name
		if inviterName == "" {
			inviterName = inviter.Email
		}
	}

	notifyErr := s.notifier.SendInvitation(ctx, InvitationNotification{
		To:               email,
		InviterName:      inviterName,
		OrganizationName: org.Name,
		Role:             invite.Role,
		InviteURL:        fmt.Sprintf("%s/auth/join?token=%s", s.appBaseURL, invite.Token),
	})
	if notifyErr != nil {
		log.Printf("Failed to send invitation email to %s: %v", email, notifyErr)
		// Compensating delete: the recipient has no way to discover an
		// invitation whose notification never went out.
		if err := s.inviteRepo.Delete(invite.ID); err != nil && !errors.Is(err, repository.ErrInvitationGone) {
			log.Printf("Failed to roll back invitation %d: %v", invite.ID, err)
		}
		return nil, ErrNotificationFailed
	}

	return invite, nil
}

// ValidateInvitation returns the public projection of an unexpired
// invitation. Expiry is a read-time predicate; the record stays in place.
func (s *InvitationService) ValidateInvitation(token string) (*models.Invitation, error) {
	invite, err := s.inviteRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invite.Expired(time.Now()) {
		return nil, ErrInvitationExpired
	}

	return invite, nil
}

// AcceptInvitationInput holds parameters to consume an invitation.
type AcceptInvitationInput struct {
	Token    string
	Name     string
	Password string
}

// AcceptInvitation consumes an invitation: it reuses or creates the target
// user, creates the membership with the invited role, and deletes the
// invitation. The last two run in one transaction, so racing accepts or a
// racing cancel cannot both succeed.
func (s *InvitationService) AcceptInvitation(input AcceptInvitationInput) (*models.User, *models.Membership, *models.Organization, error) {
	invite, err := s.inviteRepo.FindByToken(input.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrInvitationNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find invitation: %w", err)
	}

	if invite.Expired(time.Now()) {
		return nil, nil, nil, ErrInvitationExpired
	}

	var user *models.User
	var newUser *models.User

	existing, err := s.userRepo.FindByEmail(invite.Email)
	switch {
	case err == nil:
		// An existing identity is never overwritten by an invitation; the
		// submitted name and password are ignored.
		if _, err := s.orgRepo.FindMember(invite.OrganizationID, existing.ID); err == nil {
			return nil, nil, nil, ErrAlreadyMember
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, fmt.Errorf("failed to verify membership: %w", err)
		}
		user = existing
	case errors.Is(err, gorm.ErrRecordNotFound):
		if len(strings.TrimSpace(input.Name)) < constants.MinNameLength {
			return nil, nil, nil, ErrNameTooShort
		}
		if len(input.Password) < constants.MinPasswordLength {
			return nil, nil, nil, ErrPasswordTooShort
		}
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, nil, nil, ErrFailedToHashPassword
		}
		newUser = &models.User{
			Email:        invite.Email,
			Name:         strings.TrimSpace(input.Name),
			PasswordHash: string(hashedPassword),
		}
		user = newUser
	default:
		return nil, nil, nil, fmt.Errorf("failed to find user: %w", err)
	}

	member := &models.Membership{
		OrganizationID: invite.OrganizationID,
		Role:           invite.Role,
		JoinedAt:       time.Now(),
	}
	if newUser == nil {
		member.UserID = user.ID
	}

	if err := s.inviteRepo.Consume(invite.ID, newUser, member); err != nil {
		if errors.Is(err, repository.ErrInvitationGone) {
			return nil, nil, nil, ErrInvitationNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to consume invitation: %w", err)
	}

	org := invite.Organization
	return user, member, &org, nil
}

// ListMembershipsForUser returns the user's memberships with organizations
// loaded, so the join handler can refresh the session snapshot.
func (s *InvitationService) ListMembershipsForUser(userID uint64) ([]models.Membership, error) {
	memberships, err := s.orgRepo.ListMembershipsByUserID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return memberships, nil
}

// CancelInvitation deletes a pending invitation. Requires ADMIN in the
// owning organization; cancelling an already-consumed or already-cancelled
// invitation yields not-found.
func (s *InvitationService) CancelInvitation(requesterID, orgID, inviteID uint64) error {
	member, err := s.orgRepo.FindMember(orgID, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotOrganizationAdmin
		}
		return fmt.Errorf("failed to verify membership: %w", err)
	}
	if !member.Role.AtLeast(models.RoleAdmin) {
		return ErrNotOrganizationAdmin
	}

	if _, err := s.inviteRepo.FindByIDAndOrg(inviteID, orgID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to find invitation: %w", err)
	}

	if err := s.inviteRepo.Delete(inviteID); err != nil {
		if errors.Is(err, repository.ErrInvitationGone) {
			return ErrInvitationNotFound
		}
		return fmt.Errorf("failed to delete invitation: %w", err)
	}

	return nil
}

// ListActiveInvitations lists unexpired invitations for an organization,
// newest first. The requester must hold any membership in it.
func (s *InvitationService) ListActiveInvitations(requesterID, orgID uint64, params utils.PaginationParams) ([]models.Invitation, int64, error) {
	if _, err := s.orgRepo.FindMember(orgID, requesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrNotOrganizationMember
		}
		return nil, 0, fmt.Errorf("failed to verify membership: %w", err)
	}

	invites, total, err := s.inviteRepo.ListActiveByOrg(orgID, time.Now(), params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list invitations: %w", err)
	}
	return invites, total, nil
}
