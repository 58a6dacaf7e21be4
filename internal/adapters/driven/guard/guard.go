// Package guard wraps embedding and completion providers with a per-call
// timeout, retry with exponential backoff, a client-side rate limit and a
// circuit breaker.
package guard

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/railkm/internal/adapters/driven/provider"
	"github.com/custodia-labs/railkm/internal/core/domain"
	"github.com/custodia-labs/railkm/internal/logger"
)

// maxBackoff caps the delay between two attempts.
const maxBackoff = 30 * time.Second

// Config configures a guard.
type Config struct {
	// Timeout bounds a single provider call.
	Timeout time.Duration

	// MaxAttempts is the total number of tries for a retryable failure.
	MaxAttempts int

	// BaseDelay is the backoff unit. Zero retries immediately.
	BaseDelay time.Duration

	// RequestsPerSecond limits outgoing calls. Zero disables the limit.
	RequestsPerSecond float64

	// BreakerFailures consecutive failures open the breaker.
	BreakerFailures int

	// BreakerCooldown is how long an open breaker rejects calls.
	BreakerCooldown time.Duration
}

// ConfigFromSettings converts guard settings, filling defaults for zero values.
func ConfigFromSettings(s domain.GuardSettings) Config {
	return Config{
		Timeout:           s.Timeout,
		MaxAttempts:       s.MaxAttempts,
		BaseDelay:         s.RetryDelay,
		RequestsPerSecond: s.RequestsPerSecond,
		BreakerFailures:   s.BreakerFailures,
		BreakerCooldown:   s.BreakerCooldown,
	}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = domain.DefaultProviderTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = domain.DefaultMaxAttempts
	}
	if c.BaseDelay < 0 {
		c.BaseDelay = 0
	}
	if c.BreakerFailures <= 0 {
		c.BreakerFailures = domain.DefaultBreakerFailures
	}
	if c.BreakerCooldown <= 0 {
		c.BreakerCooldown = domain.DefaultBreakerCooldown
	}
	return c
}

// guard runs provider calls under the configured protections.
// One guard serves one provider so that breaker state is per provider.
type guard struct {
	name    string
	cfg     Config
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func newGuard(name string, cfg Config) *guard {
	cfg = cfg.withDefaults()

	g := &guard{name: name, cfg: cfg}
	if cfg.RequestsPerSecond > 0 {
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
		// A call the user cancelled says nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker %s: %s -> %s", name, from, to)
		},
	})
	return g
}

// do calls fn until it succeeds, fails permanently or runs out of attempts.
// Every returned error is a *domain.ProviderError.
func (g *guard) do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	for attempt := 1; ; attempt++ {
		err := g.once(ctx, op, fn)
		if err == nil {
			return nil
		}
		if !domain.IsRetryable(err) || attempt >= g.cfg.MaxAttempts {
			return err
		}

		delay := calculateBackoff(g.cfg.BaseDelay, attempt)
		logger.Debug("%s %s attempt %d failed, retrying in %v: %v", g.name, op, attempt, delay, err)

		if err := sleep(ctx, delay); err != nil {
			return permanent(g.name, op, err)
		}
	}
}

func (g *guard) once(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return permanent(g.name, op, fmt.Errorf("rate limit wait: %w", err))
		}
	}

	_, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()

		err := fn(callCtx)
		if err != nil && ctx.Err() == nil && errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return nil, &domain.ProviderError{
				Provider:  g.name,
				Op:        op,
				Retryable: true,
				Err:       fmt.Errorf("timed out after %v: %w", g.cfg.Timeout, context.DeadlineExceeded),
			}
		}
		return nil, err
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return permanent(g.name, op, fmt.Errorf("%w: %v", domain.ErrCircuitOpen, err))
	case ctx.Err() != nil:
		return permanent(g.name, op, err)
	default:
		return provider.Error(g.name, op, 0, err)
	}
}

// permanent builds a non-retryable ProviderError.
func permanent(name, op string, err error) error {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && !pe.Retryable {
		return err
	}
	return &domain.ProviderError{Provider: name, Op: op, Err: err}
}

// calculateBackoff returns exponential backoff with jitter.
// The base delay is doubled each attempt with up to 25% jitter either way.
func calculateBackoff(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	backoff := baseDelay * time.Duration(1<<uint(attempt))
	if backoff > maxBackoff || backoff <= 0 {
		backoff = maxBackoff
	}
	if backoff < 4 {
		return backoff
	}
	jitter := time.Duration(rand.Int64N(int64(backoff)/2)) - backoff/4
	return backoff + jitter
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
