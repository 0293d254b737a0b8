package middleware

import (
	"strconv"

	"github.com/finnkap/org-management-api/internal/database"
	apierrors "github.com/finnkap/org-management-api/internal/errors"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/gin-gonic/gin"
)

const (
	contextKeyOrganization = "organization"
	contextKeyMembership   = "organization_member"
)

// RequireOrganizationAccess checks if the user is a member of the
// organization. The membership is read from the store on every request, not
// from the session snapshot, since session-embedded role data can be stale.
func RequireOrganizationAccess() gin.HandlerFunc {
	return func(c *gin.Context) {
		orgIDStr := c.Param("id")
		orgID, err := strconv.ParseUint(orgIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid organization ID")
			c.Abort()
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var org models.Organization
		if err := database.GetDB().First(&org, orgID).Error; err != nil {
			apierrors.NotFound(c, "Organization not found")
			c.Abort()
			return
		}

		var member models.Membership
		err = database.GetDB().Where("organization_id = ? AND user_id = ?", orgID, userID).First(&member).Error
		if err != nil {
			apierrors.Forbidden(c, "You don't have access to this organization")
			c.Abort()
			return
		}

		c.Set(contextKeyOrganization, org)
		c.Set(contextKeyMembership, member)
		c.Next()
	}
}

// RequireOrganizationRole checks that the member loaded by
// RequireOrganizationAccess holds at least the given role.
func RequireOrganizationRole(role models.OrganizationRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		memberInterface, exists := c.Get(contextKeyMembership)
		if !exists {
			apierrors.Forbidden(c, "Organization access required")
			c.Abort()
			return
		}

		member, ok := memberInterface.(models.Membership)
		if !ok {
			apierrors.InternalError(c, "Invalid organization member data")
			c.Abort()
			return
		}

		if !member.Role.AtLeast(role) {
			apierrors.Forbidden(c, "Insufficient role for this action")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetOrganization retrieves the organization loaded by RequireOrganizationAccess.
func GetOrganization(c *gin.Context) (models.Organization, bool) {
	orgInterface, exists := c.Get(contextKeyOrganization)
	if !exists {
		return models.Organization{}, false
	}
	org, ok := orgInterface.(models.Organization)
	return org, ok
}

// GetMembership retrieves the membership loaded by RequireOrganizationAccess.
func GetMembership(c *gin.Context) (models.Membership, bool) {
	memberInterface, exists := c.Get(contextKeyMembership)
	if !exists {
		return models.Membership{}, false
	}
	member, ok := memberInterface.(models.Membership)
	return member, ok
}
