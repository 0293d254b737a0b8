package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/finnkap/org-management-api/internal/constants"
	"github.com/finnkap/org-management-api/internal/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func setupGateRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions(constants.SessionCookieName, store))
	router.Use(AccessGate(router, "example.com"))

	// Login endpoint used only to obtain a session cookie. It lives under
	// the public auth prefix so the gate lets it through.
	router.POST("/api/auth/test-login", func(c *gin.Context) {
		memberships := []models.Membership{
			{
				UserID:       1,
				Role:         models.RoleMember,
				JoinedAt:     time.Now(),
				Organization: models.Organization{Name: "Acme", Slug: "acme"},
			},
		}
		require.NoError(t, SetSessionPrincipal(sessions.Default(c), 1, memberships))
		c.Status(http.StatusOK)
	})

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "home"})
	})
	router.GET("/auth/signin", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "signin"})
	})
	router.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "dashboard"})
	})
	router.GET("/org/:slug/*rest", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "org", "slug": c.Param("slug"), "rest": c.Param("rest")})
	})
	router.GET("/api/organizations", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"organizations": []string{}})
	})

	return router
}

func gateLogin(t *testing.T, router *gin.Engine) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/test-login", nil)
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func gateGet(router *gin.Engine, host, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Host = host
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestAccessGate_UnauthenticatedRedirect(t *testing.T) {
	router := setupGateRouter(t)

	w := gateGet(router, "example.com", "/dashboard", nil)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/auth/signin", w.Header().Get("Location"))
}

func TestAccessGate_UnauthenticatedPublicPage(t *testing.T) {
	router := setupGateRouter(t)

	w := gateGet(router, "example.com", "/auth/signin", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = gateGet(router, "example.com", "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestAccessGate_UnauthenticatedAPI(t *testing.T) {
	router := setupGateRouter(t)

	// API paths get a status code instead of a redirect.
	w := gateGet(router, "example.com", "/api/organizations", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAccessGate_AuthenticatedSignInRedirect(t *testing.T) {
	router := setupGateRouter(t)
	cookies := gateLogin(t, router)

	w := gateGet(router, "example.com", "/auth/signin", cookies)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAccessGate_TenantPageWithMembership(t *testing.T) {
	router := setupGateRouter(t)
	cookies := gateLogin(t, router)

	w := gateGet(router, "example.com", "/org/acme/members", cookies)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"slug":"acme"`)
}

func TestAccessGate_TenantPageWithoutMembership(t *testing.T) {
	router := setupGateRouter(t)
	cookies := gateLogin(t, router)

	w := gateGet(router, "example.com", "/org/globex/members", cookies)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAccessGate_SubdomainRewrite(t *testing.T) {
	router := setupGateRouter(t)
	cookies := gateLogin(t, router)

	// acme.example.com/members serves the /org/acme/members route.
	w := gateGet(router, "acme.example.com", "/members", cookies)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"slug":"acme"`)
	require.Contains(t, w.Body.String(), `"rest":"/members"`)
}

func TestAccessGate_SubdomainWithoutMembership(t *testing.T) {
	router := setupGateRouter(t)
	cookies := gateLogin(t, router)

	w := gateGet(router, "globex.example.com", "/members", cookies)

	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/dashboard", w.Header().Get("Location"))
}

func TestAccessGate_RewrittenRequestNotReevaluated(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// The marker must survive gin's context reset on re-dispatch, so it
	// rides the request context. A marked request skips the gate entirely:
	// this otherwise-denied page is served.
	router := gin.New()
	router.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	router.Use(func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), gateRewrittenKey{}, true)
		c.Request = c.Request.WithContext(ctx)
	})
	router.Use(AccessGate(router, "example.com"))
	router.GET("/dashboard", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"page": "dashboard"})
	})

	w := gateGet(router, "example.com", "/dashboard", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestSessionPrincipalRoundTrip(t *testing.T) {
	router := setupGateRouter(t)
	cookies := gateLogin(t, router)

	gin.SetMode(gin.TestMode)
	verify := gin.New()
	verify.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("test-secret"))))
	verify.GET("/check", func(c *gin.Context) {
		session := sessions.Default(c)
		require.EqualValues(t, uint64(1), session.Get(constants.ContextKeyUserID))

		snapshot := SessionMemberships(session)
		require.Len(t, snapshot, 1)
		require.Equal(t, "acme", snapshot[0].Slug)
		require.Equal(t, models.RoleMember, snapshot[0].Role)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/check", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	verify.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
}
