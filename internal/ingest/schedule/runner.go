package schedule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// Executor runs one ingest pass over a batch file.
type Executor interface {
	Execute(ctx context.Context, inputPath, outputPath string) *domain.RunReport
}

// Config holds one runner's schedule.
type Config struct {
	JobName   string
	InputDir  string
	ReportDir string
	Pattern   string
	Interval  time.Duration
}

// Runner triggers a job on a recurring interval. Each tick it scans the
// input directory for batch files not yet in the source-file ledger and
// runs the job once per new file, sequentially. The running guard keeps at
// most one scan loop alive per runner, so runs for the same job name never
// overlap.
type Runner struct {
	cfg     Config
	job     Executor
	files   storage.SourceFileRepository
	running atomic.Bool
	stop    chan struct{}
	log     *slog.Logger
}

// NewRunner creates a runner for one configured job.
func NewRunner(cfg Config, job Executor, files storage.SourceFileRepository, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		cfg:   cfg,
		job:   job,
		files: files,
		stop:  make(chan struct{}),
		log:   logger.With("job", cfg.JobName),
	}
}

// Start begins the trigger loop. An immediate scan runs before the first
// tick so a restart picks up pending files without waiting a full interval.
func (r *Runner) Start(ctx context.Context) error {
	if !r.running.CompareAndSwap(false, true) {
		return fmt.Errorf("runner %s already running", r.cfg.JobName)
	}
	defer r.running.Store(false)

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	if err := r.scan(ctx); err != nil {
		r.log.Error("Scan failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-r.stop:
			return nil
		case <-ticker.C:
			if err := r.scan(ctx); err != nil {
				r.log.Error("Scan failed", "error", err)
			}
		}
	}
}

// Stop stops the runner.
func (r *Runner) Stop() {
	if r.running.Load() {
		close(r.stop)
	}
}

// scan discovers pending batch files and runs the job for each. A file is
// pending when its checksum is not in the ledger; it is recorded only
// after a completed run, so failed files are retried on the next tick and
// already-ingested files are skipped forever (idempotent re-scheduling).
func (r *Runner) scan(ctx context.Context) error {
	matches, err := filepath.Glob(filepath.Join(r.cfg.InputDir, r.cfg.Pattern))
	if err != nil {
		return fmt.Errorf("glob %s: %w", r.cfg.Pattern, err)
	}
	sort.Strings(matches)

	for _, path := range matches {
		if err := ctx.Err(); err != nil {
			return err
		}

		checksum, err := fileChecksum(path)
		if err != nil {
			r.log.Warn("Failed to checksum file", "path", path, "error", err)
			continue
		}

		seen, err := r.files.Exists(ctx, checksum)
		if err != nil {
			return fmt.Errorf("ledger lookup: %w", err)
		}
		if seen {
			r.log.Debug("Skipping already ingested file", "path", path)
			continue
		}

		report := r.job.Execute(ctx, path, r.cfg.ReportDir)
		if report.Status != domain.RunStatusCompleted {
			continue
		}

		err = r.files.Record(ctx, &domain.SourceFile{
			Checksum:   checksum,
			Path:       path,
			RunID:      report.RunID,
			IngestedAt: report.FinishedAt,
		})
		if err != nil {
			// Worst case the file is re-processed next tick; results are
			// keyed deterministically, so duplicates cannot corrupt state.
			r.log.Warn("Failed to record ingested file", "path", path, "error", err)
		}
	}

	return nil
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
