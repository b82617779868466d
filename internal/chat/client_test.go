package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientComplete_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req completionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "gpt-4o-mini", req.Model)
		require.Len(t, req.Messages, 2)
		require.Equal(t, "system", req.Messages[0].Role)
		require.Equal(t, "how long is the test?", req.Messages[1].Content)

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "About 40 minutes."}},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-4o-mini")
	reply, err := c.Complete(context.Background(), "how long is the test?")
	require.NoError(t, err)
	require.Equal(t, "About 40 minutes.", reply)
}

func TestClientComplete_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limited"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "test-key", "gpt-4o-mini")
	_, err := c.Complete(context.Background(), "hi")
	require.ErrorContains(t, err, "rate limited")
}

func TestClientComplete_NoKey(t *testing.T) {
	c := NewClient("http://localhost:1", "", "gpt-4o-mini")
	_, err := c.Complete(context.Background(), "hi")
	require.Error(t, err)
}

func TestQuota_NoRedisDegradesOpen(t *testing.T) {
	q := NewQuota(nil, 25)
	remaining, ok := q.Allow(context.Background(), 1)
	require.True(t, ok)
	require.Equal(t, 25, remaining)
}

func TestQuota_DisabledBudgetDegradesOpen(t *testing.T) {
	q := NewQuota(nil, 0)
	_, ok := q.Allow(context.Background(), 1)
	require.True(t, ok)
}
