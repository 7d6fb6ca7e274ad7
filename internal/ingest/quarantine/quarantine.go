package quarantine

import (
	"context"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// Writer persists invalid records to the segregated quarantine area.
// Quarantine is best-effort observability: callers log a write failure as
// a warning and keep the run alive.
type Writer struct {
	repo storage.QuarantineRepository
}

// New creates a quarantine writer over the given repository.
func New(repo storage.QuarantineRepository) *Writer {
	return &Writer{repo: repo}
}

// Entries builds quarantine entries from invalid outcomes, stamped with
// the run that produced them.
func Entries(invalid []domain.ValidationOutcome, runID string, runTS time.Time) []domain.QuarantineEntry {
	entries := make([]domain.QuarantineEntry, 0, len(invalid))
	for _, o := range invalid {
		entries = append(entries, domain.QuarantineEntry{
			RunID:         runID,
			Record:        o.Record,
			Reasons:       o.Reasons,
			QuarantinedAt: runTS,
		})
	}
	return entries
}

// Write appends the entries to the quarantine area and returns its
// location. Entries are keyed by run, so concurrent or repeated runs never
// clobber each other. Writing zero entries is a valid no-op that still
// reports the location.
func (w *Writer) Write(ctx context.Context, entries []domain.QuarantineEntry, runID string, runTS time.Time) (string, error) {
	location := w.repo.Location(runID, runTS)
	if len(entries) == 0 {
		return location, nil
	}
	if err := w.repo.AddBatch(ctx, entries); err != nil {
		return location, &domain.QuarantineWriteError{RunID: runID, Err: err}
	}
	return location, nil
}
