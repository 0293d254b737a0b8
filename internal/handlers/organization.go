package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/finnkap/org-management-api/internal/dto"
	apierrors "github.com/finnkap/org-management-api/internal/errors"
	"github.com/finnkap/org-management-api/internal/middleware"
	"github.com/finnkap/org-management-api/internal/services"
	"github.com/finnkap/org-management-api/internal/utils"
	"github.com/gin-gonic/gin"
)

// OrganizationHandler coordinates organization-related HTTP handlers.
type OrganizationHandler struct {
	orgService *services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{
		orgService: orgService,
	}
}

// CreateOrganization creates a new organization with the caller as ADMIN.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateOrgRequest struct {
		Name   string `json:"name" binding:"required,min=2"`
		Slug   string `json:"slug" binding:"required,min=2"`
		UserID uint64 `json:"user_id" binding:"required"`
	}

	var req CreateOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	// The body's user id must match the authenticated principal.
	if req.UserID != userID {
		apierrors.Forbidden(c, "User ID mismatch")
		return
	}

	org, err := h.orgService.CreateOrganization(services.CreateOrganizationInput{
		Name:    req.Name,
		Slug:    req.Slug,
		OwnerID: userID,
	})
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	// The creator's session snapshot must include the new organization or
	// the gate bounces them off /org/{slug} until they re-login.
	if memberships, err := h.orgService.ListOrganizationsForUser(userID); err == nil {
		if err := middleware.RefreshSessionPrincipal(c, userID, memberships); err != nil {
			log.Printf("Failed to refresh session for user %d: %v", userID, err)
		}
	} else {
		log.Printf("Failed to load memberships for user %d: %v", userID, err)
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":      "Organization created successfully",
		"organization": dto.ToOrganizationDTO(*org),
	})
}

// ListOrganizations returns all organizations the user is a member of
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	memberships, err := h.orgService.ListOrganizationsForUser(userID)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	orgsWithRole := make([]dto.OrganizationWithRoleDTO, len(memberships))
	for i, m := range memberships {
		orgsWithRole[i] = dto.ToOrganizationWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"organizations": orgsWithRole,
	})
}

// ListMembers returns the members of an organization, oldest first.
func (h *OrganizationHandler) ListMembers(c *gin.Context) {
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
	members, total, err := h.orgService.ListMembers(userID, org.ID, params)
	if err != nil {
		respondOrganizationError(c, err)
		return
	}

	memberDTOs := make([]dto.MemberDTO, len(members))
	for i, m := range members {
		memberDTOs[i] = dto.ToMemberDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": memberDTOs,
		"pagination": utils.PaginationResponse{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

func respondOrganizationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidOrganizationName),
		errors.Is(err, services.ErrInvalidSlug),
		errors.Is(err, services.ErrSlugTaken):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrOrganizationNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrNotOrganizationMember):
		apierrors.Forbidden(c, err.Error())
	default:
		apierrors.DependencyFailure(c, "")
	}
}
