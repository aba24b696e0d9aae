// Package provider abstracts the language-model backends behind a single
// completion capability. The research pipeline calls Complete exactly once
// per invocation; everything else in the pipeline is retrieval.
package provider

import (
	"context"
	"errors"
	"time"

	anthropic_provider "github.com/mohammad-safakhou/scout/provider/anthropic"
	openai_provider "github.com/mohammad-safakhou/scout/provider/openai"
	"github.com/mohammad-safakhou/scout/provider/types"
)

// Message is one turn of conversation context passed to the model.
type Message = types.Message

// ErrPermissionDenied signals a 401/403 from the backend. Callers surface it
// distinctly and never retry it.
var ErrPermissionDenied = types.ErrPermissionDenied

// Provider is the interface all LLM implementations satisfy.
type Provider interface {
	// Complete generates a reply for the conversation under the given
	// system instruction. Implementations retry transient failures
	// internally; a returned error is final.
	Complete(ctx context.Context, messages []Message, system string) (string, error)
	Name() string
	Model() string
}

// Client identifies an LLM backend.
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
)

// NewProvider builds the configured LLM client.
func NewProvider(client Client, apiKey, model string, timeout time.Duration) (Provider, error) {
	if apiKey == "" {
		return nil, errors.New("provider API key is not set")
	}
	switch client {
	case OpenAI:
		return openai_provider.New(apiKey, model, timeout), nil
	case Anthropic:
		return anthropic_provider.New(apiKey, model, timeout), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
