// Package chat proxies user messages to an OpenAI-compatible
// chat-completions API and enforces per-user daily quotas.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const systemPrompt = "You are a helpful assistant for learner drivers preparing " +
	"for the Irish driving test. Answer questions about the rules of the road, " +
	"test procedure and driving technique. Keep answers short and practical."

// Client calls the configured chat-completions endpoint.
type Client struct {
	URL   string
	Key   string
	Model string
	HTTP  *http.Client
}

func NewClient(url, key, model string) *Client {
	return &Client{
		URL:   url,
		Key:   key,
		Model: model,
		HTTP:  &http.Client{Timeout: 30 * time.Second},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends one user message and returns the model's reply. Any
// upstream problem comes back as an error; the handler maps it to 502.
func (c *Client) Complete(ctx context.Context, message string) (string, error) {
	if c.Key == "" {
		return "", fmt.Errorf("chat api key not configured")
	}
	body, err := json.Marshal(completionRequest{
		Model: c.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: message},
		},
	})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Key)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var out completionResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil {
			return "", fmt.Errorf("chat api: %s", out.Error.Message)
		}
		return "", fmt.Errorf("chat api: status %d", resp.StatusCode)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("chat api: empty choices")
	}
	return out.Choices[0].Message.Content, nil
}
