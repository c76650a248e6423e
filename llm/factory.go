package llm

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Config selects and tunes the completion backend.
type Config struct {
	Provider       string // "openai" or "mock"; empty picks by key presence
	Model          string
	APIKey         string
	RequestTimeout time.Duration
	MinInterval    time.Duration // spacing between calls; zero means default
}

// NewProvider builds the configured provider, wrapped with the call-interval
// limiter. With no provider named, a present API key selects openai and an
// absent one falls back to the offline mock.
func NewProvider(cfg Config) (Provider, error) {
	name := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if name == "" {
		if cfg.APIKey != "" {
			name = "openai"
		} else {
			slog.Warn("no llm provider configured, using offline mock")
			name = "mock"
		}
	}

	switch name {
	case "openai":
		inner, err := NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.RequestTimeout)
		if err != nil {
			return nil, err
		}
		return NewRateLimited(inner, cfg.MinInterval), nil
	case "mock":
		return NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
