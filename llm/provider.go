// Package llm abstracts the completion backend used by the refactoring
// engine. Providers return plain text; prompt construction and response
// parsing stay with the caller.
package llm

import (
	"context"
	"errors"
)

// Typed failures a provider can report. Callers branch on these instead of
// inspecting message strings.
var (
	// ErrNoAPIKey means the provider was asked to run without credentials.
	ErrNoAPIKey = errors.New("llm: no API key configured")
	// ErrRateLimited means the backend rejected the call for quota reasons.
	ErrRateLimited = errors.New("llm: rate limited")
	// ErrEmptyResponse means the backend answered with no usable text.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Provider is a text-completion backend.
type Provider interface {
	// Complete sends one prompt and returns the raw completion text.
	// maxTokens caps the response length; zero means the provider default.
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)

	// Name identifies the provider for logs and error messages.
	Name() string
}
