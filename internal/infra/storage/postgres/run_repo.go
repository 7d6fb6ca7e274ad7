package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// RunRepo implements storage.RunRepository using PostgreSQL.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new PostgreSQL run repository.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// Create records a run at start.
func (r *RunRepo) Create(ctx context.Context, report *domain.RunReport) error {
	query := `
		INSERT INTO job_runs (run_id, job_name, input_path, started_at, status)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		report.RunID, report.JobName, report.InputPath, report.StartedAt, string(domain.RunStatusRunning),
	)
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// Finish finalizes a run with its counts and terminal status.
func (r *RunRepo) Finish(ctx context.Context, report *domain.RunReport) error {
	query := `
		UPDATE job_runs
		SET finished_at = $2,
		    status = $3,
		    loaded = $4,
		    valid = $5,
		    invalid = $6,
		    persisted = $7,
		    quarantined = $8,
		    error_message = $9,
		    quarantine_warning = $10,
		    quarantine_location = $11
		WHERE run_id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		report.RunID, report.FinishedAt, string(report.Status),
		report.Loaded, report.Valid, report.Invalid,
		report.Persisted, report.Quarantined,
		report.Error, report.QuarantineWarning, report.QuarantineLocation,
	)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return storage.ErrRunNotFound
	}
	return nil
}

type runRow struct {
	RunID              string       `db:"run_id"`
	JobName            string       `db:"job_name"`
	InputPath          string       `db:"input_path"`
	StartedAt          time.Time    `db:"started_at"`
	FinishedAt         sql.NullTime `db:"finished_at"`
	Status             string       `db:"status"`
	Loaded             int          `db:"loaded"`
	Valid              int          `db:"valid"`
	Invalid            int          `db:"invalid"`
	Persisted          int          `db:"persisted"`
	Quarantined        int          `db:"quarantined"`
	ErrorMessage       string       `db:"error_message"`
	QuarantineWarning  string       `db:"quarantine_warning"`
	QuarantineLocation string       `db:"quarantine_location"`
}

func (row *runRow) toDomain() *domain.RunReport {
	report := &domain.RunReport{
		RunID:              row.RunID,
		JobName:            row.JobName,
		InputPath:          row.InputPath,
		StartedAt:          row.StartedAt,
		Loaded:             row.Loaded,
		Valid:              row.Valid,
		Invalid:            row.Invalid,
		Persisted:          row.Persisted,
		Quarantined:        row.Quarantined,
		Status:             domain.RunStatus(row.Status),
		Error:              row.ErrorMessage,
		QuarantineWarning:  row.QuarantineWarning,
		QuarantineLocation: row.QuarantineLocation,
	}
	if row.FinishedAt.Valid {
		report.FinishedAt = row.FinishedAt.Time
	}
	return report
}

const runColumns = `
	run_id, job_name, input_path, started_at, finished_at, status,
	loaded, valid, invalid, persisted, quarantined, error_message, quarantine_warning, quarantine_location
`

// LatestByJob retrieves the most recent run for a job name.
func (r *RunRepo) LatestByJob(ctx context.Context, jobName string) (*domain.RunReport, error) {
	query := `
		SELECT ` + runColumns + `
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT 1
	`
	var row runRow
	err := r.db.GetContext(ctx, &row, query, jobName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}
	return row.toDomain(), nil
}

// ListRecent retrieves the most recent runs across jobs, newest first.
func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.RunReport, error) {
	query := `
		SELECT ` + runColumns + `
		FROM job_runs
		ORDER BY started_at DESC
		LIMIT $1
	`
	var rows []runRow
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	reports := make([]*domain.RunReport, 0, len(rows))
	for i := range rows {
		reports = append(reports, rows[i].toDomain())
	}
	return reports, nil
}
