// Package llm turns free-form notes into mind map JSON with a chat
// completion model.
package llm

import (
	"context"
	"fmt"
)

// Provider defines the interface for LLM providers.
type Provider interface {
	Complete(ctx context.Context, prompt string, options CompletionOptions) (string, error)
	IsAvailable() bool
}

// CompletionOptions configures LLM completion requests
type CompletionOptions struct {
	System      string  `json:"system,omitempty"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Format      string  `json:"format"` // "json" or "text"
}

// StatusError is a non-2xx answer from a provider API.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Body)
}
