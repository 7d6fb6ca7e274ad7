package storage

import (
	"context"
	"errors"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
)

var (
	// ErrRunNotFound is returned when a run report doesn't exist
	ErrRunNotFound = errors.New("run not found")
)

// ResultRepository handles persistence of processed results.
type ResultRepository interface {
	// SaveBatch writes results as a single bulk operation. All-or-nothing:
	// a failure commits nothing.
	SaveBatch(ctx context.Context, results []domain.ProcessedResult) error

	// Count returns the total number of persisted results
	Count(ctx context.Context) (int, error)
}

// QuarantineRepository handles the segregated storage for invalid records.
type QuarantineRepository interface {
	// AddBatch appends quarantine entries. Entries carry their run ID and
	// timestamp so repeated runs never overwrite prior data.
	AddBatch(ctx context.Context, entries []domain.QuarantineEntry) error

	// Location describes where a run's entries live (key, table scope, path)
	Location(runID string, ts time.Time) string

	// CountByRun returns the number of entries quarantined by a run
	CountByRun(ctx context.Context, runID string) (int, error)
}

// RunRepository handles run report bookkeeping.
type RunRepository interface {
	// Create records a run at start (status running)
	Create(ctx context.Context, report *domain.RunReport) error

	// Finish finalizes a run with its counts and terminal status
	Finish(ctx context.Context, report *domain.RunReport) error

	// LatestByJob retrieves the most recent run for a job name
	LatestByJob(ctx context.Context, jobName string) (*domain.RunReport, error)

	// ListRecent retrieves the most recent runs across jobs, newest first
	ListRecent(ctx context.Context, limit int) ([]*domain.RunReport, error)
}

// SourceFileRepository is the checksum-keyed ledger of ingested batch files.
type SourceFileRepository interface {
	// Exists reports whether a file with this checksum was already ingested
	Exists(ctx context.Context, checksum string) (bool, error)

	// Record marks a file as ingested
	Record(ctx context.Context, file *domain.SourceFile) error
}
