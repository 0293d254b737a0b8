package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/finnkap/org-management-api/internal/dto"
	apierrors "github.com/finnkap/org-management-api/internal/errors"
	"github.com/finnkap/org-management-api/internal/middleware"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/services"
	"github.com/finnkap/org-management-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// InvitationHandler coordinates invitation-related HTTP handlers.
type InvitationHandler struct {
	inviteService *services.InvitationService
}

// NewInvitationHandler creates a new InvitationHandler.
func NewInvitationHandler(inviteService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{
		inviteService: inviteService,
	}
}

// CreateInvitation invites someone to the organization by email.
func (h *InvitationHandler) CreateInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}

	type InviteRequest struct {
		Email string `json:"email" binding:"required,email"`
		Role  string `json:"role" binding:"required,oneof=ADMIN SUBADMIN MEMBER"`
	}

	var req InviteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	invite, err := h.inviteService.CreateInvitation(c.Request.Context(), services.CreateInvitationInput{
		RequesterID:    userID,
		OrganizationID: org.ID,
		Email:          req.Email,
		Role:           models.OrganizationRole(req.Role),
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Invitation sent successfully",
		"invite":  dto.ToInvitationDTO(*invite),
	})
}

// ListInvitations returns the unexpired invitations of an organization.
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}

	params := utils.GetPaginationParams(c)
	invites, total, err := h.inviteService.ListActiveInvitations(userID, org.ID, params)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	inviteDTOs := make([]dto.InvitationDTO, len(invites))
	for i, invite := range invites {
		inviteDTOs[i] = dto.ToInvitationDTO(invite)
	}

	c.JSON(http.StatusOK, gin.H{
		"invites": inviteDTOs,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// CancelInvitation deletes a pending invitation.
func (h *InvitationHandler) CancelInvitation(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	org, ok := middleware.GetOrganization(c)
	if !ok {
		apierrors.InternalError(c, "Organization not found in context")
		return
	}

	inviteID, err := strconv.ParseUint(c.Param("invite_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	if err := h.inviteService.CancelInvitation(userID, org.ID, inviteID); err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Invitation cancelled successfully",
	})
}

// ValidateInvitation returns the public projection of an invitation token.
// No authentication: the recipient follows the emailed link before having
// an account.
func (h *InvitationHandler) ValidateInvitation(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		apierrors.BadRequest(c, "Invitation token is required")
		return
	}

	invite, err := h.inviteService.ValidateInvitation(token)
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationPreviewDTO(*invite))
}

// Join accepts an invitation, creating the account when needed.
func (h *InvitationHandler) Join(c *gin.Context) {
	type JoinRequest struct {
		Token    string `json:"token" binding:"required,uuid"`
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, member, org, err := h.inviteService.AcceptInvitation(services.AcceptInvitationInput{
		Token:    req.Token,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		respondInvitationError(c, err)
		return
	}

	// Joining logs the user in with the membership snapshot already
	// including the new organization. A failed refresh only costs a
	// dashboard redirect until the next login.
	if memberships, err := h.inviteService.ListMembershipsForUser(user.ID); err == nil {
		if err := middleware.RefreshSessionPrincipal(c, user.ID, memberships); err != nil {
			log.Printf("Failed to refresh session for user %d: %v", user.ID, err)
		}
	} else {
		log.Printf("Failed to load memberships for user %d: %v", user.ID, err)
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Successfully joined the organization",
		"result": dto.JoinResultDTO{
			User:         dto.ToUserDTO(*user),
			Organization: dto.ToOrganizationDTO(*org),
			Role:         member.Role,
		},
	})
}

func respondInvitationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidEmail),
		errors.Is(err, services.ErrInvalidRole),
		errors.Is(err, services.ErrNameTooShort),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrAlreadyMember),
		errors.Is(err, services.ErrDuplicateInvitation),
		errors.Is(err, services.ErrInvitationExpired):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvitationNotFound),
		errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationAdmin),
		errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotificationFailed):
		apierrors.DependencyFailure(c, err.Error())
	default:
		apierrors.DependencyFailure(c, "")
	}
}
