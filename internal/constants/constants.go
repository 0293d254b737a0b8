package constants

import "time"

// Session
const (
	SessionCookieName     = "org_session"
	ContextKeyUserID      = "user_id"
	SessionKeyMemberships = "memberships"
)

// Validation
const (
	MinPasswordLength = 8
	MinNameLength     = 2
	MinSlugLength     = 2
)

// InvitationTTL is how long an invitation stays acceptable after creation.
const InvitationTTL = 7 * 24 * time.Hour

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)
