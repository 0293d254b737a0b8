package services

import (
	"testing"

	"github.com/finnkap/org-management-api/internal/models"
	"github.com/stretchr/testify/require"
)

func TestEvaluateGate(t *testing.T) {
	const rootDomain = "example.com"

	acmeMember := []SessionMembership{{Slug: "acme", Role: models.RoleMember}}

	tests := []struct {
		name string
		req  GateRequest
		want GateDecision
	}{
		{
			name: "unauthenticated public sign-in",
			req:  GateRequest{Host: "example.com", Path: "/auth/signin"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated register",
			req:  GateRequest{Host: "example.com", Path: "/auth/register"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated join with token",
			req:  GateRequest{Host: "example.com", Path: "/auth/join"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated root",
			req:  GateRequest{Host: "example.com", Path: "/"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated auth api",
			req:  GateRequest{Host: "example.com", Path: "/api/auth/login"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated invite validation api",
			req:  GateRequest{Host: "example.com", Path: "/api/invites/validate"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated health check",
			req:  GateRequest{Host: "example.com", Path: "/health"},
			want: GateDecision{Allow: true},
		},
		{
			name: "unauthenticated dashboard redirects to sign-in",
			req:  GateRequest{Host: "example.com", Path: "/dashboard"},
			want: GateDecision{RedirectTo: "/auth/signin"},
		},
		{
			name: "unauthenticated unknown path is denied",
			req:  GateRequest{Host: "example.com", Path: "/some/new/path"},
			want: GateDecision{RedirectTo: "/auth/signin"},
		},
		{
			name: "unauthenticated path sharing a public prefix is denied",
			req:  GateRequest{Host: "example.com", Path: "/healthcheck"},
			want: GateDecision{RedirectTo: "/auth/signin"},
		},
		{
			name: "authenticated sign-in page redirects to dashboard",
			req:  GateRequest{Host: "example.com", Path: "/auth/signin", Authenticated: true},
			want: GateDecision{RedirectTo: "/dashboard"},
		},
		{
			name: "authenticated register page redirects to dashboard",
			req:  GateRequest{Host: "example.com", Path: "/auth/register", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{RedirectTo: "/dashboard"},
		},
		{
			name: "authenticated dashboard",
			req:  GateRequest{Host: "example.com", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
		{
			name: "authenticated org page with membership",
			req:  GateRequest{Host: "example.com", Path: "/org/acme/members", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{Allow: true},
		},
		{
			name: "authenticated org page without membership redirects to dashboard",
			req:  GateRequest{Host: "example.com", Path: "/org/globex", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{RedirectTo: "/dashboard"},
		},
		{
			name: "authenticated org page with no memberships at all",
			req:  GateRequest{Host: "example.com", Path: "/org/acme", Authenticated: true},
			want: GateDecision{RedirectTo: "/dashboard"},
		},
		{
			name: "subdomain arrival rewrites into tenant path",
			req:  GateRequest{Host: "acme.example.com", Path: "/members", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{Allow: true, RewritePath: "/org/acme/members"},
		},
		{
			name: "subdomain arrival with port",
			req:  GateRequest{Host: "acme.example.com:8080", Path: "/members", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{Allow: true, RewritePath: "/org/acme/members"},
		},
		{
			name: "subdomain without membership redirects to dashboard",
			req:  GateRequest{Host: "globex.example.com", Path: "/members", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{RedirectTo: "/dashboard"},
		},
		{
			name: "subdomain request already under org path is not rewritten",
			req:  GateRequest{Host: "acme.example.com", Path: "/org/acme/members", Authenticated: true, Memberships: acmeMember},
			want: GateDecision{Allow: true},
		},
		{
			name: "www is not a tenant",
			req:  GateRequest{Host: "www.example.com", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
		{
			name: "root domain is not a tenant",
			req:  GateRequest{Host: "example.com", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
		{
			name: "localhost is not a tenant",
			req:  GateRequest{Host: "localhost:8080", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
		{
			name: "ip host is not a tenant",
			req:  GateRequest{Host: "127.0.0.1:8080", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
		{
			name: "nested subdomain label is not a tenant",
			req:  GateRequest{Host: "a.b.example.com", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
		{
			name: "unrelated domain is not a tenant",
			req:  GateRequest{Host: "acme.other.com", Path: "/dashboard", Authenticated: true},
			want: GateDecision{Allow: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EvaluateGate(tt.req, rootDomain)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateGate_SubdomainBeatsPathTenant(t *testing.T) {
	// When both a subdomain and an /org/{slug} path are present the
	// subdomain decides the tenant.
	decision := EvaluateGate(GateRequest{
		Host:          "acme.example.com",
		Path:          "/org/globex/members",
		Authenticated: true,
		Memberships:   []SessionMembership{{Slug: "acme", Role: models.RoleAdmin}},
	}, "example.com")

	require.Equal(t, GateDecision{Allow: true}, decision)
}
