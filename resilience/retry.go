package resilience

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"time"
)

// RetryConfig configures reconnect behavior.
type RetryConfig struct {
	// MaxAttempts is the maximum number of consecutive failed attempts before
	// giving up. Zero means retry forever.
	MaxAttempts int
	// InitialBackoff is the delay after the first failure.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// BackoffFactor is the multiplier for exponential backoff.
	BackoffFactor float64
	// Jitter adds randomness to backoff (0.0 to 1.0).
	Jitter float64
	// RetryIf determines if an error should be retried.
	RetryIf func(error) bool
	// OnRetry is called before each retry.
	OnRetry func(attempt int, err error, backoff time.Duration)
}

// DefaultRetryConfig returns sensible defaults for a long-lived stream.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    0,
		InitialBackoff: time.Second,
		MaxBackoff:     30 * time.Second,
		BackoffFactor:  2.0,
		Jitter:         0.1,
		RetryIf:        DefaultRetryIf,
	}
}

// DefaultRetryIf retries all errors except context cancellation.
func DefaultRetryIf(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// withDefaults fills in zero-value fields.
func (cfg RetryConfig) withDefaults() RetryConfig {
	if cfg.MaxAttempts < 0 {
		cfg.MaxAttempts = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 30 * time.Second
	}
	if cfg.MaxBackoff < cfg.InitialBackoff {
		cfg.MaxBackoff = cfg.InitialBackoff
	}
	if cfg.BackoffFactor <= 0 {
		cfg.BackoffFactor = 2.0
	}
	if cfg.RetryIf == nil {
		cfg.RetryIf = DefaultRetryIf
	}
	return cfg
}

// Backoff tracks consecutive failures and computes reconnect delays.
// It is safe for concurrent use.
type Backoff struct {
	mu      sync.Mutex
	cfg     RetryConfig
	attempt int
}

// NewBackoff creates a Backoff from cfg.
func NewBackoff(cfg RetryConfig) *Backoff {
	return &Backoff{cfg: cfg.withDefaults()}
}

// Next records a failure and returns the delay before the next attempt.
// ok is false when err is not retryable or the attempt budget is spent.
func (b *Backoff) Next(err error) (delay time.Duration, ok bool) {
	b.mu.Lock()
	b.attempt++
	attempt := b.attempt
	cfg := b.cfg
	b.mu.Unlock()

	if err != nil && !cfg.RetryIf(err) {
		return 0, false
	}
	if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
		return 0, false
	}

	delay = calculateBackoff(attempt, cfg)
	if cfg.OnRetry != nil {
		cfg.OnRetry(attempt, err, delay)
	}
	return delay, true
}

// Reset clears the failure count after a successful attempt.
func (b *Backoff) Reset() {
	b.mu.Lock()
	b.attempt = 0
	b.mu.Unlock()
}

// Attempt returns the number of consecutive failures recorded.
func (b *Backoff) Attempt() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attempt
}

// SetInitial replaces the initial delay, e.g. from a server "retry:" hint.
func (b *Backoff) SetInitial(d time.Duration) {
	if d <= 0 {
		return
	}
	b.mu.Lock()
	b.cfg.InitialBackoff = d
	if b.cfg.MaxBackoff < d {
		b.cfg.MaxBackoff = d
	}
	b.mu.Unlock()
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// calculateBackoff calculates the backoff duration for an attempt.
func calculateBackoff(attempt int, cfg RetryConfig) time.Duration {
	// Exponential backoff: initial * factor^(attempt-1)
	backoffFloat := float64(cfg.InitialBackoff) * math.Pow(cfg.BackoffFactor, float64(attempt-1))

	if cfg.Jitter > 0 {
		jitterRange := backoffFloat * cfg.Jitter
		jitter := (rand.Float64()*2 - 1) * jitterRange
		backoffFloat += jitter
	}

	if backoffFloat > float64(cfg.MaxBackoff) {
		backoffFloat = float64(cfg.MaxBackoff)
	}

	if backoffFloat < 0 {
		backoffFloat = float64(cfg.InitialBackoff)
	}

	return time.Duration(backoffFloat)
}
