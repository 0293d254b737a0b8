package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/finnkap/org-management-api/internal/constants"
	apierrors "github.com/finnkap/org-management-api/internal/errors"
	"github.com/finnkap/org-management-api/internal/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// gateRewrittenKey marks a re-dispatched request on its context. It rides
// the request rather than gin's Keys because Engine.HandleContext resets
// those before re-running the chain.
type gateRewrittenKey struct{}

// AccessGate evaluates the tenant/authorization decision for every request
// before any handler logic runs. Page requests get redirects; API requests
// get a 401 so clients see the documented status codes. Requests arriving on
// a tenant subdomain are rewritten onto the tenant-scoped route and
// re-dispatched through the engine.
func AccessGate(engine *gin.Engine, rootDomain string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Context().Value(gateRewrittenKey{}) != nil {
			c.Next()
			return
		}

		session := sessions.Default(c)
		authenticated := session.Get(constants.ContextKeyUserID) != nil

		decision := services.EvaluateGate(services.GateRequest{
			Host:          c.Request.Host,
			Path:          c.Request.URL.Path,
			Authenticated: authenticated,
			Memberships:   SessionMemberships(session),
		}, rootDomain)

		if decision.RedirectTo != "" {
			if strings.HasPrefix(c.Request.URL.Path, "/api/") {
				if authenticated {
					apierrors.Forbidden(c, "")
				} else {
					apierrors.Unauthorized(c, "")
				}
			} else {
				c.Redirect(http.StatusFound, decision.RedirectTo)
			}
			c.Abort()
			return
		}

		if decision.RewritePath != "" {
			ctx := context.WithValue(c.Request.Context(), gateRewrittenKey{}, true)
			c.Request = c.Request.WithContext(ctx)
			c.Request.URL.Path = decision.RewritePath
			engine.HandleContext(c)
			c.Abort()
			return
		}

		c.Next()
	}
}
