package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/paymentintent"
	"github.com/stripe/stripe-go/v79/webhook"
)

// StripeGateway implements Gateway against the Stripe API.
type StripeGateway struct {
	secretKey     string
	webhookSecret string
	baseURL       string // normalized checkout redirect base
}

// NewStripeGateway builds the adapter. An empty secretKey is allowed:
// every call will then fail with ErrNotConfigured instead of crashing the
// process at startup.
func NewStripeGateway(secretKey, webhookSecret, checkoutBaseURL string) *StripeGateway {
	if secretKey != "" {
		stripe.Key = secretKey
	}
	return &StripeGateway{
		secretKey:     secretKey,
		webhookSecret: webhookSecret,
		baseURL:       normalizeBaseURL(checkoutBaseURL),
	}
}

// CreateIntent creates a payment intent carrying user id, product kind
// and amount as metadata for later webhook correlation.
func (g *StripeGateway) CreateIntent(ctx context.Context, userID uint64, amountCents int64, kind string) (Intent, error) {
	if g.secretKey == "" {
		return Intent{}, ErrNotConfigured
	}
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(string(stripe.CurrencyEUR)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("user_id", strconv.FormatUint(userID, 10))
	params.AddMetadata("product", kind)
	params.AddMetadata("amount", strconv.FormatInt(amountCents, 10))

	pi, err := paymentintent.New(params)
	if err != nil {
		return Intent{}, err
	}
	if pi.ClientSecret == "" {
		// The client cannot complete a payment without the secret, so an
		// intent missing one is an upstream contract violation.
		return Intent{}, fmt.Errorf("%w: intent %s has no client secret", ErrUpstream, pi.ID)
	}
	return intentFromStripe(pi), nil
}

// CreateCheckoutSession creates a hosted checkout session. The user id
// travels both as client_reference_id and metadata so either field can
// be used when the completion webhook arrives.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID uint64, amountCents int64, kind string) (CheckoutSession, error) {
	if g.secretKey == "" {
		return CheckoutSession{}, ErrNotConfigured
	}
	uid := strconv.FormatUint(userID, 10)
	params := &stripe.CheckoutSessionParams{
		Params:            stripe.Params{Context: ctx},
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(g.baseURL + "/?checkout=success"),
		CancelURL:         stripe.String(g.baseURL + "/?checkout=cancel"),
		ClientReferenceID: stripe.String(uid),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(string(stripe.CurrencyEUR)),
				UnitAmount: stripe.Int64(amountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("RoadReady route access"),
				},
			},
			Quantity: stripe.Int64(1),
		}},
	}
	params.AddMetadata("user_id", uid)
	params.AddMetadata("product", kind)

	s, err := session.New(params)
	if err != nil {
		return CheckoutSession{}, err
	}
	if s.URL == "" {
		return CheckoutSession{}, fmt.Errorf("%w: session %s has no redirect url", ErrUpstream, s.ID)
	}
	return CheckoutSession{ID: s.ID, URL: s.URL}, nil
}

// RetrieveIntent fetches an intent for server-side re-verification on the
// confirm path.
func (g *StripeGateway) RetrieveIntent(ctx context.Context, intentID string) (Intent, error) {
	if g.secretKey == "" {
		return Intent{}, ErrNotConfigured
	}
	pi, err := paymentintent.Get(intentID, &stripe.PaymentIntentParams{Params: stripe.Params{Context: ctx}})
	if err != nil {
		return Intent{}, err
	}
	return intentFromStripe(pi), nil
}

// ParseWebhook verifies the Stripe-Signature header and converts the
// event into the provider-neutral form. A missing webhook secret yields
// ErrNotConfigured, a bad signature ErrBadSignature; in both cases no
// state change may follow.
func (g *StripeGateway) ParseWebhook(payload []byte, sigHeader string) (Event, error) {
	if g.webhookSecret == "" {
		return Event{}, ErrNotConfigured
	}
	ev, err := webhook.ConstructEventWithOptions(payload, sigHeader, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadSignature, err)
	}

	out := Event{Type: string(ev.Type)}
	switch out.Type {
	case EventIntentSucceeded:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		in := intentFromStripe(&pi)
		out.Intent = &in
	case EventSessionCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return Event{}, fmt.Errorf("%w: %v", ErrUpstream, err)
		}
		out.Session = &SessionEvent{
			ID:                s.ID,
			ClientReferenceID: s.ClientReferenceID,
			Metadata:          s.Metadata,
			AmountTotal:       s.AmountTotal,
		}
	}
	return out, nil
}

func intentFromStripe(pi *stripe.PaymentIntent) Intent {
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Metadata:     pi.Metadata,
	}
}

// normalizeBaseURL ensures the configured redirect base has a scheme and
// no trailing slashes, so appending paths and query markers is safe.
func normalizeBaseURL(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		s = "http://localhost:3000"
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	return strings.TrimRight(s, "/")
}
