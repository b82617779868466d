// Package payment adapts the Stripe API to the rest of the service.
// Handlers depend on the Gateway interface, never on stripe-go directly,
// so tests can exercise every failure path without network access.
package payment

import (
	"context"
	"errors"

	"github.com/roadready/roadready-api/internal/model"
)

// ErrNotConfigured is returned when a Stripe credential required for the
// operation is missing. Handlers map it to a 500: a deployment problem,
// not a user error.
var ErrNotConfigured = errors.New("payment gateway not configured")

// ErrBadSignature is returned when a webhook payload fails signature
// verification. No state change may follow it.
var ErrBadSignature = errors.New("webhook signature verification failed")

// ErrUpstream marks a provider response that violates the expected
// contract (e.g. an intent without a client secret).
var ErrUpstream = errors.New("unexpected payment provider response")

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	ID           string
	ClientSecret string
	Status       string // "succeeded" once the payment cleared
	Amount       int64
	Metadata     map[string]string
}

// CheckoutSession is the provider-neutral view of a hosted checkout.
type CheckoutSession struct {
	ID  string
	URL string
}

// Webhook event types the service reacts to.
const (
	EventIntentSucceeded  = "payment_intent.succeeded"
	EventSessionCompleted = "checkout.session.completed"
)

// Event is a verified webhook notification. Exactly one of Intent or
// Session is populated depending on Type.
type Event struct {
	Type    string
	Intent  *Intent
	Session *SessionEvent
}

// SessionEvent carries the fields of a completed checkout session the
// service correlates on. Legacy sessions carry the user id only in
// ClientReferenceID, newer ones also in metadata.
type SessionEvent struct {
	ID                string
	ClientReferenceID string
	Metadata          map[string]string
	AmountTotal       int64
}

// StatusSucceeded is the intent status required before a license is granted.
const StatusSucceeded = "succeeded"

// Gateway is the payment provider surface the handlers use.
type Gateway interface {
	CreateIntent(ctx context.Context, userID uint64, amountCents int64, kind string) (Intent, error)
	CreateCheckoutSession(ctx context.Context, userID uint64, amountCents int64, kind string) (CheckoutSession, error)
	RetrieveIntent(ctx context.Context, intentID string) (Intent, error)
	ParseWebhook(payload []byte, sigHeader string) (Event, error)
}

// KindForAmount maps a paid amount to a license kind: anything at or
// above the bundle price buys the bundle, anything below a single route.
func KindForAmount(amountCents, bundlePriceCents int64) string {
	if amountCents >= bundlePriceCents {
		return model.LicenseKindBundle
	}
	return model.LicenseKindSingle
}
