package postgres

import (
	"context"
	"fmt"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// SourceFileRepo implements storage.SourceFileRepository using PostgreSQL.
type SourceFileRepo struct {
	db *DB
}

// NewSourceFileRepo creates a new PostgreSQL source file ledger.
func NewSourceFileRepo(db *DB) *SourceFileRepo {
	return &SourceFileRepo{db: db}
}

// Exists reports whether a file with this checksum was already ingested.
func (r *SourceFileRepo) Exists(ctx context.Context, checksum string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM source_files WHERE checksum = $1)`, checksum)
	if err != nil {
		return false, fmt.Errorf("check source file: %w", err)
	}
	return exists, nil
}

// Record marks a file as ingested.
func (r *SourceFileRepo) Record(ctx context.Context, file *domain.SourceFile) error {
	query := `
		INSERT INTO source_files (checksum, path, run_id, ingested_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (checksum) DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, file.Checksum, file.Path, file.RunID, file.IngestedAt)
	if err != nil {
		return fmt.Errorf("record source file: %w", err)
	}
	return nil
}
