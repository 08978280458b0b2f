package pageglot

import (
	"context"
	"sync"
	"time"
)

// Pacer spaces out engine calls using a token bucket, so overlapping
// callers (selection popup, full sweep) cannot hammer the host engine.
type Pacer struct {
	tokens     float64
	maxTokens  float64
	refillRate float64 // tokens per second
	lastRefill time.Time
	mu         sync.Mutex
}

// PacingConfig configures the pacer.
type PacingConfig struct {
	CallsPerMinute int // Maximum engine calls per minute
	BurstSize      int // Maximum burst size (default: same as CallsPerMinute)
}

// NewPacer creates a new pacer.
func NewPacer(cfg PacingConfig) *Pacer {
	cpm := float64(cfg.CallsPerMinute)
	if cpm <= 0 {
		cpm = 120
	}

	burst := float64(cfg.BurstSize)
	if burst <= 0 {
		burst = cpm
	}

	return &Pacer{
		tokens:     burst,
		maxTokens:  burst,
		refillRate: cpm / 60.0,
		lastRefill: time.Now(),
	}
}

// Wait blocks until a call slot is available or the context is
// cancelled.
func (p *Pacer) Wait(ctx context.Context) error {
	for {
		if p.TryAcquire() {
			return nil
		}

		p.mu.Lock()
		waitTime := time.Duration(float64(time.Second) / p.refillRate)
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(waitTime):
		}
	}
}

// TryAcquire attempts to take a call slot without blocking.
func (p *Pacer) TryAcquire() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.refill()

	if p.tokens >= 1 {
		p.tokens--
		return true
	}

	return false
}

// refill adds tokens based on elapsed time (lock held).
func (p *Pacer) refill() {
	now := time.Now()
	elapsed := now.Sub(p.lastRefill).Seconds()
	p.lastRefill = now

	p.tokens += elapsed * p.refillRate
	if p.tokens > p.maxTokens {
		p.tokens = p.maxTokens
	}
}

// Available returns the current number of free call slots.
func (p *Pacer) Available() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refill()
	return p.tokens
}
