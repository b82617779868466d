package model

import "time"

// AccessLink is a user-specific, time-boxed token bound to one
// (test centre, route) pair at mint time. Validation is session-bound:
// the link only resolves for the user it was minted for.
//
// IsUsed is informational. A validated link stays valid until ExpiresAt;
// there is no hard single-redemption gate.
type AccessLink struct {
	ID             uint64     // access_links.id
	UserID         uint64     // access_links.user_id
	CentreName     string     // access_links.centre_name
	RouteNumber    int        // access_links.route_number
	Token          string     // access_links.token (unique)
	CreatedAt      time.Time  // access_links.created_at
	ExpiresAt      time.Time  // access_links.expires_at
	IsUsed         bool       // access_links.is_used
	LastAccessedAt *time.Time // access_links.last_accessed_at (nullable)
}

// AccessToken is a bearer capability token: possession is the credential.
// It is not bound to a route at mint time; the route is chosen at
// redemption via a path parameter, and redemption needs no session.
type AccessToken struct {
	ID             uint64     // access_tokens.id
	UserID         uint64     // access_tokens.user_id
	Token          string     // access_tokens.token (unique)
	CreatedAt      time.Time  // access_tokens.created_at
	ExpiresAt      time.Time  // access_tokens.expires_at
	IsUsed         bool       // access_tokens.is_used
	LastAccessedAt *time.Time // access_tokens.last_accessed_at (nullable)
}
