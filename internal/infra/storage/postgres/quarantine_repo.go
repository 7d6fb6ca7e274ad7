package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// QuarantineRepo implements storage.QuarantineRepository using PostgreSQL.
// Rows are keyed by run, so repeated runs append rather than overwrite.
type QuarantineRepo struct {
	db *DB
}

// NewQuarantineRepo creates a new PostgreSQL quarantine repository.
func NewQuarantineRepo(db *DB) *QuarantineRepo {
	return &QuarantineRepo{db: db}
}

// AddBatch appends quarantine entries in one transaction.
func (r *QuarantineRepo) AddBatch(ctx context.Context, entries []domain.QuarantineEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin quarantine insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO quarantine_entries (
			run_id, record_id, amount, currency, record_timestamp, description, reasons, quarantined_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare quarantine insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		reasons, err := json.Marshal(e.Reasons)
		if err != nil {
			return fmt.Errorf("marshal reasons: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			e.RunID, e.Record.ID, e.Record.Amount.String(), e.Record.Currency,
			e.Record.Timestamp, e.Record.Description, string(reasons), e.QuarantinedAt,
		)
		if err != nil {
			return fmt.Errorf("insert quarantine entry %s: %w", e.Record.ID, err)
		}
	}

	return tx.Commit()
}

// Location describes where a run's entries live.
func (r *QuarantineRepo) Location(runID string, ts time.Time) string {
	return fmt.Sprintf("postgres:quarantine_entries:%s:%s", ts.UTC().Format("20060102T150405Z"), runID)
}

// CountByRun returns the number of entries a run quarantined.
func (r *QuarantineRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count,
		`SELECT COUNT(*) FROM quarantine_entries WHERE run_id = $1`, runID)
	if err != nil {
		return 0, fmt.Errorf("count quarantine entries: %w", err)
	}
	return count, nil
}
