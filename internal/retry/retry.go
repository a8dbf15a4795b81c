// Package retry drives repeated upload attempts against a single provider.
package retry

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/zinc-sig/pst/internal/config"
	"github.com/zinc-sig/pst/internal/upload"
)

// Config holds retry settings
type Config struct {
	MaxRetries     int
	BaseDelay      time.Duration
	MaxDelay       time.Duration // zero means uncapped
	AttemptTimeout time.Duration // zero means no per-attempt timeout
}

// FromGeneral builds a retry configuration from the general settings
func FromGeneral(g config.General) Config {
	return Config{
		MaxRetries:     g.MaxRetries,
		BaseDelay:      g.RetryDelay(),
		MaxDelay:       g.MaxRetryDelay(),
		AttemptTimeout: g.AttemptTimeout(),
	}
}

// newBackOff returns a jitter free exponential backoff. The delay before
// retry n is BaseDelay * 2^(n-1), capped at MaxDelay.
func (c Config) newBackOff() backoff.BackOff {
	maxDelay := c.MaxDelay
	if maxDelay <= 0 {
		maxDelay = time.Duration(math.MaxInt64)
	}
	return backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(c.BaseDelay),
		backoff.WithRandomizationFactor(0),
		backoff.WithMultiplier(2),
		backoff.WithMaxInterval(maxDelay),
		backoff.WithMaxElapsedTime(0),
	)
}

// Schedule returns the delays that precede each retry
func (c Config) Schedule() []time.Duration {
	b := c.newBackOff()
	delays := make([]time.Duration, 0, c.MaxRetries)
	for i := 0; i < c.MaxRetries; i++ {
		delays = append(delays, b.NextBackOff())
	}
	return delays
}

// SleepFunc waits for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy executes an adapter with bounded retries on transient errors
type Policy struct {
	cfg   Config
	sleep SleepFunc
	now   func() time.Time
	log   *slog.Logger
}

// Option configures a Policy
type Option func(*Policy)

// WithSleep replaces the delay function, used by tests
func WithSleep(fn SleepFunc) Option {
	return func(p *Policy) { p.sleep = fn }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(p *Policy) { p.log = l }
}

// WithClock replaces the time source used for attempt durations
func WithClock(now func() time.Time) Option {
	return func(p *Policy) { p.now = now }
}

// NewPolicy creates a retry policy. A negative MaxRetries is treated as
// zero, so every execution makes at least one attempt.
func NewPolicy(cfg Config, opts ...Option) *Policy {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	p := &Policy{
		cfg:   cfg,
		sleep: sleepContext,
		now:   time.Now,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Config returns the policy configuration
func (p *Policy) Config() Config { return p.cfg }

// Execute attempts the upload up to MaxRetries+1 times. Only transient
// errors are retried. Every attempt is passed to record in order. When ctx
// is done the context error is returned instead of a provider error.
func (p *Policy) Execute(ctx context.Context, adapter upload.Adapter, req *upload.Request, record func(upload.AttemptRecord)) (*upload.Success, error) {
	if record == nil {
		record = func(upload.AttemptRecord) {}
	}
	name := adapter.Name()
	b := p.cfg.newBackOff()

	var lastErr *upload.ProviderError
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := b.NextBackOff()
			if lastErr != nil && lastErr.RetryAfter > delay {
				delay = lastErr.RetryAfter
				if p.cfg.MaxDelay > 0 && delay > p.cfg.MaxDelay {
					delay = p.cfg.MaxDelay
				}
			}
			p.log.Info("retrying provider",
				"provider", name, "retry", attempt, "max_retries", p.cfg.MaxRetries,
				"delay", delay, "error", lastErr)
			if err := p.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		res, err := p.attempt(ctx, adapter, req)
		rec := upload.AttemptRecord{Provider: name, Retry: attempt, Duration: res.duration}
		if err == nil {
			rec.Success = true
			record(rec)
			p.log.Debug("attempt succeeded", "provider", name, "retry", attempt, "duration", res.duration)
			return res.success, nil
		}

		rec.Err = err
		record(rec)
		lastErr = err
		p.log.Debug("attempt failed", "provider", name, "retry", attempt, "kind", err.Kind, "error", err)

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !err.Transient() {
			return nil, err
		}
	}
	return nil, lastErr
}

type attemptResult struct {
	success  *upload.Success
	duration time.Duration
}

func (p *Policy) attempt(ctx context.Context, adapter upload.Adapter, req *upload.Request) (attemptResult, *upload.ProviderError) {
	actx := ctx
	if p.cfg.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, p.cfg.AttemptTimeout)
		defer cancel()
	}

	start := p.now()
	success, err := adapter.Upload(actx, req)
	res := attemptResult{success: success, duration: p.now().Sub(start)}

	if err != nil {
		return res, upload.Classify(adapter.Name(), err)
	}
	if success == nil || success.URL == "" {
		return res, upload.NewError(adapter.Name(), upload.ErrRemoteRejected, "provider returned no URL", nil)
	}
	return res, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
