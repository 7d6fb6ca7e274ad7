package job

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/ingest/metrics"
	"github.com/vietddude/ingestd/internal/ingest/quarantine"
	"github.com/vietddude/ingestd/internal/ingest/retry"
	"github.com/vietddude/ingestd/internal/ingest/validate"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// Loader reads one batch file.
type Loader interface {
	Load(ctx context.Context, path string) (*domain.Batch, error)
}

// Validator classifies every record of a batch.
type Validator interface {
	Validate(batch *domain.Batch) []domain.ValidationOutcome
}

// Processor transforms valid records and bulk-persists the results.
type Processor interface {
	Process(batch *domain.Batch, valid []domain.TransactionRecord) []domain.ProcessedResult
	Persist(ctx context.Context, results []domain.ProcessedResult) (int, error)
}

// Quarantiner writes invalid records to the quarantine area.
type Quarantiner interface {
	Write(ctx context.Context, entries []domain.QuarantineEntry, runID string, runTS time.Time) (string, error)
}

// Config holds one job's collaborators. The retry policy is shared across
// jobs; everything else is per-job.
type Config struct {
	Name       string
	Retry      *retry.Policy
	Loader     Loader
	Validator  Validator
	Processor  Processor
	Quarantine Quarantiner
	Runs       storage.RunRepository
	Logger     *slog.Logger
}

// Job executes one ingest run per trigger: load, validate, process,
// quarantine, with an error path from any stage to Failed. The external
// scheduler guarantees at most one concurrent run per job name; a
// violation of that guarantee can only cause duplicate processing because
// every run owns its batch, results and report exclusively.
type Job struct {
	cfg   Config
	log   *slog.Logger
	state atomic.Value // domain.RunState
}

// New creates a job from its collaborators.
func New(cfg Config) *Job {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	j := &Job{cfg: cfg, log: log.With("job", cfg.Name)}
	j.state.Store(domain.StateIdle)
	return j
}

// State returns where the current (or last) run is in its lifecycle.
func (j *Job) State() domain.RunState {
	return j.state.Load().(domain.RunState)
}

func (j *Job) setState(s domain.RunState) {
	j.state.Store(s)
	j.log.Debug("State transition", "state", s)
}

// Execute runs the pipeline once over inputPath and returns the finalized
// run report. Reports are also appended under outputPath and recorded
// through the run repository. Execute never returns an error itself: every
// failure is captured in the report's status and error fields.
func (j *Job) Execute(ctx context.Context, inputPath, outputPath string) *domain.RunReport {
	report := &domain.RunReport{
		RunID:     uuid.NewString(),
		JobName:   j.cfg.Name,
		InputPath: inputPath,
		StartedAt: time.Now().UTC(),
		Status:    domain.RunStatusRunning,
	}
	j.setState(domain.StateIdle)
	j.log.Info("Run started", "run_id", report.RunID, "input", inputPath)

	if err := j.cfg.Runs.Create(ctx, report); err != nil {
		// Bookkeeping only; the run itself proceeds
		j.log.Warn("Failed to record run start", "run_id", report.RunID, "error", err)
	}

	// 1. Load, wrapped in the retry policy. Loading is idempotent (the
	// loader only reads), so re-invocation across attempts is safe. A
	// malformed line hard-fails the load: the batch never shrinks silently,
	// and records that parse but break business rules still reach
	// quarantine via validation.
	j.setState(domain.StateLoading)
	var batch *domain.Batch
	err := j.cfg.Retry.Execute(ctx, "load "+inputPath, func(ctx context.Context) error {
		b, err := j.cfg.Loader.Load(ctx, inputPath)
		if err != nil {
			return err
		}
		batch = b
		return nil
	})
	if err != nil {
		// Exhausted retries: no partial valid/invalid counts
		return j.finalize(ctx, report, outputPath, err)
	}
	report.Loaded = len(batch.Records)

	if err := ctx.Err(); err != nil {
		return j.finalize(ctx, report, outputPath, err)
	}

	// 2. Validate. Classification itself cannot fail the run.
	j.setState(domain.StateValidating)
	outcomes := j.cfg.Validator.Validate(batch)
	valid, invalid := validate.Partition(outcomes)
	report.Valid = len(valid)
	report.Invalid = len(invalid)

	if err := ctx.Err(); err != nil {
		return j.finalize(ctx, report, outputPath, err)
	}

	// 3. Process and bulk-persist. A rejected write fails the run, but the
	// quarantine stage still gets its chance first.
	j.setState(domain.StateProcessing)
	results := j.cfg.Processor.Process(batch, valid)
	persisted, persistErr := j.cfg.Processor.Persist(ctx, results)
	report.Persisted = persisted

	if err := ctx.Err(); err != nil {
		return j.finalize(ctx, report, outputPath, err)
	}

	// 4. Quarantine, unconditionally. A no-op write keeps reports
	// symmetric across runs. Failure here is a warning, never fatal.
	j.setState(domain.StateQuarantining)
	entries := quarantine.Entries(invalid, report.RunID, report.StartedAt)
	location, qerr := j.cfg.Quarantine.Write(ctx, entries, report.RunID, report.StartedAt)
	report.QuarantineLocation = location
	if qerr != nil {
		j.log.Warn("Quarantine write failed", "run_id", report.RunID, "error", qerr)
		metrics.QuarantineWriteFailures.WithLabelValues(j.cfg.Name).Inc()
		report.QuarantineWarning = qerr.Error()
	} else {
		report.Quarantined = len(entries)
	}

	return j.finalize(ctx, report, outputPath, persistErr)
}

// finalize stamps the terminal status, records metrics, persists the run
// row and appends the report to the output path.
func (j *Job) finalize(ctx context.Context, report *domain.RunReport, outputPath string, runErr error) *domain.RunReport {
	report.FinishedAt = time.Now().UTC()

	if runErr != nil {
		report.Status = domain.RunStatusFailed
		report.Error = runErr.Error()
		j.setState(domain.StateFailed)
		j.log.Error("Run failed",
			"run_id", report.RunID,
			"loaded", report.Loaded,
			"persisted", report.Persisted,
			"duration", report.Duration(),
			"error", runErr,
		)
	} else {
		report.Status = domain.RunStatusCompleted
		j.setState(domain.StateCompleted)
		j.log.Info("Run completed",
			"run_id", report.RunID,
			"loaded", report.Loaded,
			"valid", report.Valid,
			"invalid", report.Invalid,
			"persisted", report.Persisted,
			"quarantined", report.Quarantined,
			"duration", report.Duration(),
		)
	}

	metrics.RunsTotal.WithLabelValues(j.cfg.Name, string(report.Status)).Inc()
	metrics.RecordsLoaded.WithLabelValues(j.cfg.Name).Add(float64(report.Loaded))
	metrics.RecordsValid.WithLabelValues(j.cfg.Name).Add(float64(report.Valid))
	metrics.RecordsInvalid.WithLabelValues(j.cfg.Name).Add(float64(report.Invalid))
	metrics.RecordsPersisted.WithLabelValues(j.cfg.Name).Add(float64(report.Persisted))
	metrics.RecordsQuarantined.WithLabelValues(j.cfg.Name).Add(float64(report.Quarantined))
	metrics.RunDuration.WithLabelValues(j.cfg.Name).Observe(report.Duration().Seconds())
	metrics.LastRunTimestamp.WithLabelValues(j.cfg.Name).Set(float64(report.FinishedAt.Unix()))

	if err := j.cfg.Runs.Finish(ctx, report); err != nil {
		j.log.Warn("Failed to record run finish", "run_id", report.RunID, "error", err)
	}
	j.appendReport(report, outputPath)

	return report
}

// appendReport appends the report as one JSON line to a per-day file under
// dir. Best-effort: a write failure is logged, not propagated.
func (j *Job) appendReport(report *domain.RunReport, dir string) {
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		j.log.Warn("Failed to create report directory", "dir", dir, "error", err)
		return
	}

	path := filepath.Join(dir, "runs-"+report.FinishedAt.Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		j.log.Warn("Failed to open report file", "path", path, "error", err)
		return
	}
	defer f.Close()

	data, err := json.Marshal(report)
	if err != nil {
		j.log.Warn("Failed to marshal report", "run_id", report.RunID, "error", err)
		return
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		j.log.Warn("Failed to append report", "path", path, "error", err)
	}
}
