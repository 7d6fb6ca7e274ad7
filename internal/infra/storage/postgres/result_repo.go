package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// ResultRepo implements storage.ResultRepository using PostgreSQL.
type ResultRepo struct {
	db *DB
}

// NewResultRepo creates a new PostgreSQL result repository.
func NewResultRepo(db *DB) *ResultRepo {
	return &ResultRepo{db: db}
}

// SaveBatch writes all results in one transaction. Result IDs are
// deterministic per source batch, so re-processing the same file upserts
// identical rows instead of duplicating them.
func (r *ResultRepo) SaveBatch(ctx context.Context, results []domain.ProcessedResult) error {
	if len(results) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin bulk insert: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO transactions (
			result_id, record_id, source_checksum, amount, direction, currency, record_timestamp, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (result_id) DO NOTHING
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("prepare bulk insert: %w", err)
	}
	defer stmt.Close()

	for _, res := range results {
		_, err := stmt.ExecContext(ctx,
			res.ResultID, res.RecordID, res.SourceChecksum,
			res.Amount.String(), string(res.Direction), res.Currency,
			res.Timestamp, res.Description,
		)
		if err != nil {
			return fmt.Errorf("insert result %s: %w", res.ResultID, err)
		}
	}

	return tx.Commit()
}

// Count returns the number of persisted results.
func (r *ResultRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM transactions`); err != nil {
		return 0, fmt.Errorf("count transactions: %w", err)
	}
	return count, nil
}
