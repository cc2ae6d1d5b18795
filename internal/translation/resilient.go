package translation

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ResilienceConfig controls the Resilient wrapper
type ResilienceConfig struct {
	// MaxRetries is the number of extra attempts for temporary errors
	MaxRetries int
	// BaseDelay is the first backoff delay; it doubles per attempt
	BaseDelay time.Duration
	// RequestsPerSecond limits calls to the provider; <= 0 disables limiting
	RequestsPerSecond float64
	// FailureThreshold consecutive temporary failures open the circuit
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before probing again
	OpenTimeout time.Duration
}

// DefaultResilienceConfig returns the defaults used by the CLI
func DefaultResilienceConfig() ResilienceConfig {
	return ResilienceConfig{
		MaxRetries:        2,
		BaseDelay:         200 * time.Millisecond,
		RequestsPerSecond: 5,
		FailureThreshold:  5,
		OpenTimeout:       30 * time.Second,
	}
}

// Resilient wraps a Provider with a rate limiter, bounded retries with
// exponential backoff for temporary errors, and a circuit breaker.
type Resilient struct {
	next    Provider
	cfg     ResilienceConfig
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewResilient wraps next
func NewResilient(next Provider, cfg ResilienceConfig, logger zerolog.Logger) *Resilient {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultResilienceConfig().FailureThreshold
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = DefaultResilienceConfig().OpenTimeout
	}

	r := &Resilient{
		next:    next,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
		sleep:   sleepContext,
	}

	threshold := cfg.FailureThreshold
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        next.Name(),
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		// Permanent errors say nothing about provider health.
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTemporary(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn().
				Str("provider", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})

	return r
}

// Name returns the wrapped provider name
func (r *Resilient) Name() string {
	return r.next.Name()
}

// Translate calls the wrapped provider. Temporary errors are retried up to
// MaxRetries times; an open circuit fails immediately.
func (r *Resilient) Translate(ctx context.Context, text, from, to string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.BaseDelay << (attempt - 1)
			r.logger.Debug().
				Str("provider", r.Name()).
				Int("attempt", attempt).
				Dur("delay", delay).
				Err(lastErr).
				Msg("retrying translation")
			if err := r.sleep(ctx, delay); err != nil {
				return "", transportError(r.Name(), err)
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return "", transportError(r.Name(), err)
		}

		result, err := r.breaker.Execute(func() (interface{}, error) {
			return r.next.Translate(ctx, text, from, to)
		})
		if err == nil {
			return result.(string), nil
		}

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", newError(r.Name(), KindCircuitOpen, err)
		}
		if !IsTemporary(err) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
