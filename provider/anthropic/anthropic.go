// Package anthropic_provider wraps the Anthropic Messages API with the same
// retry and permission-denied semantics as the OpenAI client.
package anthropic_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/mohammad-safakhou/scout/internal/httpx"
	"github.com/mohammad-safakhou/scout/provider/types"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	maxTokens  = 4096
)

const (
	maxRetries = 3
	baseDelay  = 1 * time.Second
)

type client struct {
	apiKey     string
	model      string
	httpClient *http.Client
	retry      httpx.RetryPolicy
}

type request struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []types.Message `json:"messages"`
}

type response struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// New creates an Anthropic messages client.
func New(apiKey, model string, timeout time.Duration) *client {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &client{
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		retry:      httpx.RetryPolicy{MaxAttempts: maxRetries, BaseDelay: baseDelay},
	}
}

func (c *client) Name() string  { return "anthropic" }
func (c *client) Model() string { return c.model }

// Complete sends the conversation with the system instruction in the
// dedicated system field and returns the first text block of the reply.
func (c *client) Complete(ctx context.Context, messages []types.Message, system string) (string, error) {
	payload, err := json.Marshal(request{
		Model:     c.model,
		MaxTokens: maxTokens,
		System:    system,
		Messages:  messages,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	var answer string
	err = c.retry.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
		if err != nil {
			return httpx.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", c.apiKey)
		req.Header.Set("anthropic-version", apiVersion)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return httpx.Permanent(fmt.Errorf("%w: anthropic http %d", types.ErrPermissionDenied, resp.StatusCode))
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			return &httpx.StatusError{Code: resp.StatusCode, URL: apiURL}
		case resp.StatusCode != http.StatusOK:
			return httpx.Permanent(&httpx.StatusError{Code: resp.StatusCode, URL: apiURL})
		}

		var parsed response
		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return httpx.Permanent(fmt.Errorf("decode response: %w", err))
		}
		if parsed.Error != nil {
			return httpx.Permanent(fmt.Errorf("anthropic: %s", parsed.Error.Message))
		}
		if len(parsed.Content) == 0 {
			return httpx.Permanent(fmt.Errorf("anthropic returned no content"))
		}
		answer = parsed.Content[0].Text
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}
