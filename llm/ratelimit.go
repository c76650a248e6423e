package llm

import (
	"context"
	"sync"
	"time"
)

// DefaultMinInterval is the default spacing between calls to a rate-limited
// provider.
const DefaultMinInterval = 4 * time.Second

// RateLimited wraps a provider and enforces a minimum interval between
// completions. The wait respects context cancellation, so a caller that gives
// up does not hold the slot.
type RateLimited struct {
	inner    Provider
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

// NewRateLimited wraps inner with a minimum call interval. A non-positive
// interval falls back to DefaultMinInterval.
func NewRateLimited(inner Provider, interval time.Duration) *RateLimited {
	if interval <= 0 {
		interval = DefaultMinInterval
	}
	return &RateLimited{inner: inner, interval: interval}
}

func (r *RateLimited) Name() string { return r.inner.Name() }

func (r *RateLimited) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	r.mu.Lock()
	wait := time.Until(r.last.Add(r.interval))
	// Reserve the slot before waiting so concurrent callers space out too.
	if wait > 0 {
		r.last = r.last.Add(r.interval)
	} else {
		r.last = time.Now()
	}
	r.mu.Unlock()

	if wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-timer.C:
		}
	}
	return r.inner.Complete(ctx, prompt, maxTokens)
}
