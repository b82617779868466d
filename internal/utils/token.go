package utils

import "github.com/google/uuid"

// NewLinkToken mints an opaque bearer token for access links and access
// tokens. A v4 UUID is drawn from crypto/rand, so the value is uniform
// and non-predictable; it is the sole credential for the redemption
// endpoint and must never be sequential or time-derived.
func NewLinkToken() string {
	return uuid.NewString()
}
