package dto

import (
	"time"

	"github.com/finnkap/org-management-api/internal/models"
)

// InvitationDTO represents a pending invitation in API responses. The token
// is deliberately absent: it is a bearer credential delivered only by email.
type InvitationDTO struct {
	ID        uint64                  `json:"id"`
	Email     string                  `json:"email"`
	Role      models.OrganizationRole `json:"role"`
	ExpiresAt time.Time               `json:"expires_at"`
	CreatedAt time.Time               `json:"created_at"`
}

// InvitationPreviewDTO is the public projection returned when validating a
// token, before the recipient decides to join.
type InvitationPreviewDTO struct {
	Email        string                  `json:"email"`
	Role         models.OrganizationRole `json:"role"`
	Organization OrganizationDTO         `json:"organization"`
	ExpiresAt    time.Time               `json:"expires_at"`
}

// JoinResultDTO is returned after an invitation is accepted.
type JoinResultDTO struct {
	User         UserDTO                 `json:"user"`
	Organization OrganizationDTO         `json:"organization"`
	Role         models.OrganizationRole `json:"role"`
}

// ToInvitationDTO converts an invitation model to DTO
func ToInvitationDTO(invite models.Invitation) InvitationDTO {
	return InvitationDTO{
		ID:        invite.ID,
		Email:     invite.Email,
		Role:      invite.Role,
		ExpiresAt: invite.ExpiresAt,
		CreatedAt: invite.CreatedAt,
	}
}

// ToInvitationPreviewDTO converts an invitation with its organization loaded
func ToInvitationPreviewDTO(invite models.Invitation) InvitationPreviewDTO {
	return InvitationPreviewDTO{
		Email:        invite.Email,
		Role:         invite.Role,
		Organization: ToOrganizationDTO(invite.Organization),
		ExpiresAt:    invite.ExpiresAt,
	}
}
