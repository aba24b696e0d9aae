// Package openai_provider wraps the OpenAI Chat Completions API. Transient
// failures (connect errors, 429, 5xx) are retried with exponential backoff;
// 401/403 surfaces as types.ErrPermissionDenied so the caller can show a
// consistent message.
package openai_provider

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

const apiURL = "https://api.openai.com/v1/chat/completions"

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
	Model    string          `json:"model"`
	Messages []types.Message `json:"messages"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// New creates an OpenAI chat client.
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

func (c *client) Name() string  { return "openai" }
func (c *client) Model() string { return c.model }

// Complete sends the conversation, with the system instruction prepended as
// a system-role message, and returns the first choice's text.
func (c *client) Complete(ctx context.Context, messages []types.Message, system string) (string, error) {
	apiMessages := make([]types.Message, 0, len(messages)+1)
	if system != "" {
		apiMessages = append(apiMessages, types.Message{Role: "system", Content: system})
	}
	apiMessages = append(apiMessages, messages...)

	payload, err := json.Marshal(request{Model: c.model, Messages: apiMessages})
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
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return httpx.Permanent(fmt.Errorf("%w: openai http %d", types.ErrPermissionDenied, resp.StatusCode))
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
			return httpx.Permanent(fmt.Errorf("openai: %s", parsed.Error.Message))
		}
		if len(parsed.Choices) == 0 {
			return httpx.Permanent(fmt.Errorf("openai returned no choices"))
		}
		answer = parsed.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", err
	}
	return answer, nil
}
