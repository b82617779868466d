package model

import "time"

// License kinds. A bundle unlocks the whole route catalog for three
// months; a single purchase unlocks it for thirty days.
const (
	LicenseKindBundle = "bundle"
	LicenseKindSingle = "single"
)

// License represents a grant of paid access for one user, keyed by the
// payment provider's intent id. The UNIQUE index on payment_intent_id is
// what makes license creation idempotent when the synchronous confirm
// call and the asynchronous webhook race on the same purchase.
//
// Rows are never deleted; a license stops counting once ExpiresAt has
// passed.
type License struct {
	ID                uint64    // licenses.id
	UserID            uint64    // licenses.user_id
	PaymentIntentID   string    // licenses.payment_intent_id (unique)
	CheckoutSessionID string    // licenses.checkout_session_id (may be empty)
	Kind              string    // licenses.kind (bundle|single)
	PurchasedAt       time.Time // licenses.purchased_at
	ExpiresAt         time.Time // licenses.expires_at
	IsActive          bool      // licenses.is_active
	// Permanent marks a synthetic license produced for admin allow-list
	// members. It never appears in the database.
	Permanent bool
}
