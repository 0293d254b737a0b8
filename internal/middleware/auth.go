package middleware

import (
	"encoding/json"

	"github.com/finnkap/org-management-api/internal/constants"
	apierrors "github.com/finnkap/org-management-api/internal/errors"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/finnkap/org-management-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// SetSessionPrincipal stores the authenticated user and a snapshot of their
// memberships in the session. The snapshot is what the access gate uses for
// its redirect decisions until the next refresh.
func SetSessionPrincipal(session sessions.Session, userID uint64, memberships []models.Membership) error {
	snapshot := make([]services.SessionMembership, 0, len(memberships))
	for _, m := range memberships {
		snapshot = append(snapshot, services.SessionMembership{
			Slug: m.Organization.Slug,
			Role: m.Role,
		})
	}

	encoded, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	session.Set(constants.ContextKeyUserID, userID)
	session.Set(constants.SessionKeyMemberships, string(encoded))
	return session.Save()
}

// RefreshSessionPrincipal re-establishes the session principal after a
// membership change (accepting an invitation, creating an organization) so
// the gate's snapshot reflects it immediately. Requests carrying no session
// layer are left alone.
func RefreshSessionPrincipal(c *gin.Context, userID uint64, memberships []models.Membership) error {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return SetSessionPrincipal(sessions.Default(c), userID, memberships)
}

// SessionMemberships reads the membership snapshot back out of the session.
// A missing or corrupt snapshot degrades to no memberships, which only
// means the gate redirects to the dashboard.
func SessionMemberships(session sessions.Session) []services.SessionMembership {
	raw, ok := session.Get(constants.SessionKeyMemberships).(string)
	if !ok {
		return nil
	}

	var snapshot []services.SessionMembership
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		return nil
	}
	return snapshot
}
