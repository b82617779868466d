// Package queue defines message payloads exchanged over the message broker.
package queue

// ContactMessageEvent is published when a visitor submits the contact
// form. The API only validates and enqueues; delivery (email relay,
// ticketing) is a consumer concern.
type ContactMessageEvent struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	UserID      uint64 `json:"user_id,omitempty"` // 0 when submitted anonymously
	SubmittedAt string `json:"submitted_at"`
}

// LicenseGrantedEvent is published after a license row is created, from
// either the confirm path or the webhook path. Consumers use it for
// receipts and purchase analytics without touching the primary database.
type LicenseGrantedEvent struct {
	UserID          uint64 `json:"user_id"`
	PaymentIntentID string `json:"payment_intent_id"`
	Kind            string `json:"kind"`
	AmountCents     int64  `json:"amount_cents"`
	ExpiresAt       string `json:"expires_at"`
	Source          string `json:"source"` // "confirm" or "webhook"
}
