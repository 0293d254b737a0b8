package dto

import (
	"time"

	"github.com/finnkap/org-management-api/internal/models"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// OrganizationWithRoleDTO represents an organization with the user's role
type OrganizationWithRoleDTO struct {
	OrganizationDTO
	Role models.OrganizationRole `json:"role"`
}

// MemberDTO represents a member in an organization
type MemberDTO struct {
	ID       uint64                  `json:"id"`
	Name     string                  `json:"name"`
	Email    string                  `json:"email"`
	Role     models.OrganizationRole `json:"role"`
	JoinedAt time.Time               `json:"joined_at"`
}

// ToOrganizationDTO converts an organization model to DTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:   org.ID,
		Name: org.Name,
		Slug: org.Slug,
	}
}

// ToOrganizationWithRoleDTO converts a membership to DTO with role
func ToOrganizationWithRoleDTO(member models.Membership) OrganizationWithRoleDTO {
	return OrganizationWithRoleDTO{
		OrganizationDTO: ToOrganizationDTO(member.Organization),
		Role:            member.Role,
	}
}

// ToMemberDTO converts a membership to DTO
func ToMemberDTO(member models.Membership) MemberDTO {
	name := member.User.Name
	if name == "" {
		name = "Unknown"
	}
	return MemberDTO{
		ID:       member.UserID,
		Name:     name,
		Email:    member.User.Email,
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}
