package retry

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"
)

// =============================================================================
// Log capture
// =============================================================================

type captureHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *captureHandler) Enabled(ctx context.Context, level slog.Level) bool { return true }

func (h *captureHandler) Handle(ctx context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}

func (h *captureHandler) WithAttrs(attrs []slog.Attr) slog.Handler { return h }
func (h *captureHandler) WithGroup(name string) slog.Handler       { return h }

func (h *captureHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.records)
}

func fastPolicy(logger *slog.Logger, maxAttempts int) *Policy {
	return &Policy{
		MaxAttempts:     maxAttempts,
		InitialDelay:    time.Millisecond,
		MaxDelay:        10 * time.Millisecond,
		BackoffMultiple: 2.0,
		Logger:          logger,
	}
}

// =============================================================================
// Execute
// =============================================================================

func TestExecute_SucceedsAfterTransientFailures(t *testing.T) {
	h := &captureHandler{}
	p := fastPolicy(slog.New(h), 5)

	// Fails first 2 attempts, succeeds on attempt 3
	calls := 0
	err := p.Execute(context.Background(), "load", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("file locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", calls)
	}
	if h.count() != 2 {
		t.Errorf("Expected 2 logged warnings, got %d", h.count())
	}
}

func TestExecute_ExhaustsAttempts(t *testing.T) {
	h := &captureHandler{}
	p := fastPolicy(slog.New(h), 3)

	sentinel := errors.New("no such file")
	calls := 0
	err := p.Execute(context.Background(), "load", func(ctx context.Context) error {
		calls++
		return sentinel
	})

	if calls != 3 {
		t.Errorf("Expected exactly 3 attempts, got %d", calls)
	}
	if h.count() != 3 {
		t.Errorf("Expected 3 logged warnings, got %d", h.count())
	}
	// Last failure surfaces unchanged
	if !errors.Is(err, sentinel) {
		t.Errorf("Expected sentinel error, got %v", err)
	}
	if err != sentinel {
		t.Errorf("Expected last error unchanged, got %v", err)
	}
}

func TestExecute_RejectsNonPositiveMaxAttempts(t *testing.T) {
	// A zero-value or negative policy must not report success without
	// running the operation
	for _, maxAttempts := range []int{0, -1} {
		p := fastPolicy(slog.New(&captureHandler{}), maxAttempts)

		calls := 0
		err := p.Execute(context.Background(), "load", func(ctx context.Context) error {
			calls++
			return nil
		})

		if err == nil {
			t.Errorf("MaxAttempts=%d: expected error, got nil", maxAttempts)
		}
		if calls != 0 {
			t.Errorf("MaxAttempts=%d: expected 0 attempts, got %d", maxAttempts, calls)
		}
	}
}

func TestExecute_ContextCancelledDuringWait(t *testing.T) {
	p := &Policy{
		MaxAttempts:     5,
		InitialDelay:    time.Hour, // never elapses
		MaxDelay:        time.Hour,
		BackoffMultiple: 2.0,
		Logger:          slog.New(&captureHandler{}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- p.Execute(ctx, "load", func(ctx context.Context) error {
			calls++
			return errors.New("transient")
		})
	}()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Execute did not return after cancellation")
	}

	if calls != 1 {
		t.Errorf("Expected 1 attempt before cancellation, got %d", calls)
	}
}

// =============================================================================
// Backoff
// =============================================================================

func TestDelay_ExponentialWithCap(t *testing.T) {
	p := &Policy{
		MaxAttempts:     5,
		InitialDelay:    1 * time.Second,
		MaxDelay:        10 * time.Second,
		BackoffMultiple: 2.0,
	}

	// Attempt 1: 1s
	if d := p.delay(1); d != 1*time.Second {
		t.Errorf("expected 1s, got %v", d)
	}
	// Attempt 2: 2s
	if d := p.delay(2); d != 2*time.Second {
		t.Errorf("expected 2s, got %v", d)
	}
	// Attempt 3: 4s
	if d := p.delay(3); d != 4*time.Second {
		t.Errorf("expected 4s, got %v", d)
	}
	// Attempt 10: cap at MaxDelay (10s)
	if d := p.delay(10); d != 10*time.Second {
		t.Errorf("expected 10s, got %v", d)
	}
}
