package payment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roadready/roadready-api/internal/model"
)

func TestKindForAmount(t *testing.T) {
	const bundle = 1399
	require.Equal(t, model.LicenseKindBundle, KindForAmount(1399, bundle))
	require.Equal(t, model.LicenseKindBundle, KindForAmount(2000, bundle))
	require.Equal(t, model.LicenseKindSingle, KindForAmount(1398, bundle))
	require.Equal(t, model.LicenseKindSingle, KindForAmount(499, bundle))
}

func TestNormalizeBaseURL(t *testing.T) {
	cases := map[string]string{
		"example.com":              "https://example.com",
		"example.com/":             "https://example.com",
		"https://example.com///":   "https://example.com",
		"http://localhost:3000":    "http://localhost:3000",
		"  https://app.test.ie/ ":  "https://app.test.ie",
		"":                         "http://localhost:3000",
	}
	for in, want := range cases {
		require.Equal(t, want, normalizeBaseURL(in), "input %q", in)
	}
}

func TestStripeGateway_NotConfigured(t *testing.T) {
	g := NewStripeGateway("", "", "example.com")

	_, err := g.CreateIntent(t.Context(), 1, 1399, model.LicenseKindBundle)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = g.CreateCheckoutSession(t.Context(), 1, 1399, model.LicenseKindBundle)
	require.ErrorIs(t, err, ErrNotConfigured)

	_, err = g.RetrieveIntent(t.Context(), "pi_123")
	require.ErrorIs(t, err, ErrNotConfigured)

	// Missing webhook secret must fail closed before any signature work.
	_, err = g.ParseWebhook([]byte(`{}`), "t=1,v1=abc")
	require.ErrorIs(t, err, ErrNotConfigured)
}

func TestStripeGateway_ParseWebhook_BadSignature(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "whsec_test", "example.com")

	_, err := g.ParseWebhook([]byte(`{"type":"payment_intent.succeeded"}`), "t=1,v1=deadbeef")
	require.ErrorIs(t, err, ErrBadSignature)
}
