package retry

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// Policy defines bounded retry with exponential backoff. A Policy is an
// immutable value built once at process start and shared by every run;
// no per-run state lives inside it.
type Policy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffMultiple float64
	Logger          *slog.Logger
}

// DefaultPolicy provides sensible defaults for transient file I/O.
// 2s, 4s (Max 30s)
func DefaultPolicy(logger *slog.Logger) *Policy {
	return &Policy{
		MaxAttempts:     3,
		InitialDelay:    2 * time.Second,
		MaxDelay:        30 * time.Second,
		BackoffMultiple: 2.0,
		Logger:          logger,
	}
}

// Execute runs op until it succeeds or MaxAttempts is exhausted. Every
// failed attempt is logged as a warning with the attempt number and the
// error. The wait between attempts suspends on the context, never
// busy-waits, and aborts early if the context is cancelled.
//
// After exhausting retries the last error is returned unchanged; the
// caller decides whether that fails the run. op must be safe to invoke
// multiple times with identical effect.
func (p *Policy) Execute(ctx context.Context, label string, op func(ctx context.Context) error) error {
	// A policy that would never invoke op must not report success
	if p.MaxAttempts < 1 {
		return fmt.Errorf("retry policy for %s: max attempts %d, nothing would run", label, p.MaxAttempts)
	}

	log := p.Logger
	if log == nil {
		log = slog.Default()
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		err := op(ctx)
		if err == nil {
			return nil
		}

		lastErr = err
		log.Warn("Attempt failed",
			"op", label,
			"attempt", attempt,
			"max_attempts", p.MaxAttempts,
			"error", err,
		)

		if attempt == p.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.delay(attempt)):
		}
	}

	return lastErr
}

// delay calculates backoff for the given attempt (1-indexed):
// InitialDelay * BackoffMultiple^(attempt-1), capped at MaxDelay.
func (p *Policy) delay(attempt int) time.Duration {
	d := float64(p.InitialDelay) * math.Pow(p.BackoffMultiple, float64(attempt-1))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}
