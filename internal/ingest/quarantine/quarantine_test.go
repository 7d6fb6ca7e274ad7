package quarantine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// =============================================================================
// Mock Repository
// =============================================================================

type mockQuarantineRepo struct {
	mu      sync.Mutex
	entries []domain.QuarantineEntry
	failErr error
}

func (r *mockQuarantineRepo) AddBatch(ctx context.Context, entries []domain.QuarantineEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failErr != nil {
		return r.failErr
	}
	r.entries = append(r.entries, entries...)
	return nil
}

func (r *mockQuarantineRepo) Location(runID string, ts time.Time) string {
	return fmt.Sprintf("quarantine:%s:%s", ts.UTC().Format("20060102T150405Z"), runID)
}

func (r *mockQuarantineRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entries {
		if e.RunID == runID {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Tests
// =============================================================================

func invalidOutcome(id string, reasons ...string) domain.ValidationOutcome {
	return domain.ValidationOutcome{
		Record:  domain.TransactionRecord{ID: id},
		Reasons: reasons,
	}
}

func TestWrite_KeyedByRun(t *testing.T) {
	repo := &mockQuarantineRepo{}
	w := New(repo)
	ts := time.Date(2026, 8, 1, 3, 0, 0, 0, time.UTC)

	entries := Entries([]domain.ValidationOutcome{
		invalidOutcome("tx-1", "bad amount"),
		invalidOutcome("tx-2", "bad currency", "bad amount"),
	}, "run-a", ts)

	loc, err := w.Write(context.Background(), entries, "run-a", ts)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if loc == "" {
		t.Error("Expected non-empty location")
	}

	n, _ := repo.CountByRun(context.Background(), "run-a")
	if n != 2 {
		t.Errorf("Expected 2 entries for run-a, got %d", n)
	}
	if repo.entries[0].QuarantinedAt != ts {
		t.Error("Expected entries stamped with run timestamp")
	}
	if len(repo.entries[1].Reasons) != 2 {
		t.Errorf("Expected full reason list preserved, got %v", repo.entries[1].Reasons)
	}
}

func TestWrite_RepeatedRunsDoNotClobber(t *testing.T) {
	repo := &mockQuarantineRepo{}
	w := New(repo)
	ts := time.Now()

	first := Entries([]domain.ValidationOutcome{invalidOutcome("tx-1", "r")}, "run-a", ts)
	second := Entries([]domain.ValidationOutcome{invalidOutcome("tx-1", "r")}, "run-b", ts.Add(time.Hour))

	if _, err := w.Write(context.Background(), first, "run-a", ts); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if _, err := w.Write(context.Background(), second, "run-b", ts.Add(time.Hour)); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	a, _ := repo.CountByRun(context.Background(), "run-a")
	b, _ := repo.CountByRun(context.Background(), "run-b")
	if a != 1 || b != 1 {
		t.Errorf("Expected both runs preserved, got run-a=%d run-b=%d", a, b)
	}
}

func TestWrite_EmptyIsNoop(t *testing.T) {
	repo := &mockQuarantineRepo{failErr: errors.New("should not be called")}
	loc, err := New(repo).Write(context.Background(), nil, "run-a", time.Now())
	if err != nil {
		t.Fatalf("Expected no-op success, got %v", err)
	}
	if loc == "" {
		t.Error("Expected location even for no-op write")
	}
}

func TestWrite_FailureWrapped(t *testing.T) {
	repo := &mockQuarantineRepo{failErr: errors.New("sink unavailable")}
	entries := Entries([]domain.ValidationOutcome{invalidOutcome("tx-1", "r")}, "run-a", time.Now())

	_, err := New(repo).Write(context.Background(), entries, "run-a", time.Now())
	var qerr *domain.QuarantineWriteError
	if !errors.As(err, &qerr) {
		t.Fatalf("Expected *domain.QuarantineWriteError, got %T", err)
	}
	if qerr.RunID != "run-a" {
		t.Errorf("Expected run ID in error, got %s", qerr.RunID)
	}
}
