// Package types holds the wire-level pieces shared by the provider
// implementations, kept separate so the impl packages do not import their
// parent.
package types

import "errors"

// Message is one turn of conversation context.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ErrPermissionDenied maps a 401/403 from any backend.
var ErrPermissionDenied = errors.New("permission denied by LLM provider")
