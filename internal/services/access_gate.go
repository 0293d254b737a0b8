package services

import (
	"net"
	"regexp"
	"strings"

	"github.com/finnkap/org-management-api/internal/models"
)

// SessionMembership is the session-embedded snapshot of one membership.
// It is a routing hint for the gate's redirect decisions only; mutating
// operations always re-verify the authoritative role against the store.
type SessionMembership struct {
	Slug string                  `json:"slug"`
	Role models.OrganizationRole `json:"role"`
}

// GateRequest is the per-request input to the access control gate.
type GateRequest struct {
	Host          string
	Path          string
	Authenticated bool
	Memberships   []SessionMembership
}

// GateDecision is the outcome of evaluating a request. Exactly one of the
// deny/redirect/rewrite fields is meaningful: Allow false means redirect to
// RedirectTo (401 for API paths), a non-empty RewritePath means the request
// arrived via a tenant subdomain and should be served from the tenant-scoped
// route.
type GateDecision struct {
	Allow       bool
	RedirectTo  string
	RewritePath string
}

const (
	signInPath    = "/auth/signin"
	dashboardPath = "/dashboard"
)

var orgPathPattern = regexp.MustCompile(`^/org/([^/]+)`)

// publicPrefixes are reachable without authentication: sign-in, register,
// join-via-token, root, and the public API surface.
var publicPrefixes = []string{
	"/auth/signin",
	"/auth/register",
	"/auth/join",
	"/api/auth",
	"/api/invites/validate",
	"/health",
}

// authPagePrefixes are the pages an already-authenticated user has no
// business visiting.
var authPagePrefixes = []string{
	"/auth/signin",
	"/auth/register",
}

// EvaluateGate runs the stateless per-request authorization decision. It
// must run before any handler logic and never mutates state. Unknown paths
// are treated as protected (default-deny).
func EvaluateGate(req GateRequest, rootDomain string) GateDecision {
	tenant, fromSubdomain := resolveTenant(req.Host, req.Path, rootDomain)

	if !req.Authenticated {
		if isPublicPath(req.Path) {
			return GateDecision{Allow: true}
		}
		return GateDecision{RedirectTo: signInPath}
	}

	if isAuthPage(req.Path) {
		return GateDecision{RedirectTo: dashboardPath}
	}

	if tenant != "" {
		if !hasMembership(req.Memberships, tenant) {
			return GateDecision{RedirectTo: dashboardPath}
		}
		if fromSubdomain && !strings.HasPrefix(req.Path, "/org/") {
			return GateDecision{Allow: true, RewritePath: "/org/" + tenant + req.Path}
		}
	}

	return GateDecision{Allow: true}
}

// resolveTenant extracts the tenant slug from the request: a subdomain of
// the root domain wins; otherwise an /org/{slug} path prefix; otherwise
// there is no tenant context.
func resolveTenant(host, path, rootDomain string) (slug string, fromSubdomain bool) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	if hostname != "" && hostname != rootDomain && net.ParseIP(hostname) == nil && hostname != "localhost" {
		if label, ok := strings.CutSuffix(hostname, "."+rootDomain); ok {
			if label != "" && label != "www" && !strings.Contains(label, ".") {
				return label, true
			}
		}
	}

	if m := orgPathPattern.FindStringSubmatch(path); m != nil {
		return m[1], false
	}

	return "", false
}

func isPublicPath(path string) bool {
	if path == "/" {
		return true
	}
	for _, p := range publicPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func isAuthPage(path string) bool {
	for _, p := range authPagePrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}

func hasMembership(memberships []SessionMembership, slug string) bool {
	for _, m := range memberships {
		if m.Slug == slug {
			return true
		}
	}
	return false
}
