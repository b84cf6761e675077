package provider

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket used to keep free-tier API quotas happy.
type RateLimiter struct {
	mu         sync.Mutex
	tokens     int
	maxTokens  int
	refillEach time.Duration
	lastRefill time.Time
}

// NewRateLimiter allows a burst of maxTokens, refilling one token every
// refillEach.
func NewRateLimiter(maxTokens int, refillEach time.Duration) *RateLimiter {
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillEach: refillEach,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a token is available or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	for {
		if r.take() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.refillEach):
		}
	}
}

func (r *RateLimiter) take() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := time.Since(r.lastRefill)
	if n := int(elapsed / r.refillEach); n > 0 {
		r.tokens += n
		if r.tokens > r.maxTokens {
			r.tokens = r.maxTokens
		}
		r.lastRefill = r.lastRefill.Add(time.Duration(n) * r.refillEach)
	}

	if r.tokens > 0 {
		r.tokens--
		return true
	}
	return false
}
