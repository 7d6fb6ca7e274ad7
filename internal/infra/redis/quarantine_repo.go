package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vietddude/ingestd/internal/core/domain"
)

// QuarantineRepo implements QuarantineRepository using Redis.
// Entries are retained for review and expire after the retention window.
type QuarantineRepo struct {
	rdb       *redis.Client
	jobName   string
	retention time.Duration
}

// NewQuarantineRepo creates a new Redis-backed quarantine repository.
func NewQuarantineRepo(client *Client, jobName string) *QuarantineRepo {
	return &QuarantineRepo{
		rdb:       client.rdb,
		jobName:   jobName,
		retention: 7 * 24 * time.Hour,
	}
}

// Key helpers
func (r *QuarantineRepo) runKey(runID string) string {
	return fmt.Sprintf("quarantine:%s:%s", r.jobName, runID)
}

func (r *QuarantineRepo) entryKey(runID, recordID string) string {
	return fmt.Sprintf("quarantine_entry:%s:%s:%s", r.jobName, runID, recordID)
}

// AddBatch stores quarantine entries keyed by run.
func (r *QuarantineRepo) AddBatch(ctx context.Context, entries []domain.QuarantineEntry) error {
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("failed to marshal quarantine entry: %w", err)
		}

		if err := r.rdb.Set(ctx, r.entryKey(entry.RunID, entry.Record.ID), data, r.retention).Err(); err != nil {
			return fmt.Errorf("failed to set quarantine entry: %w", err)
		}

		// Run-scoped index, scored by quarantine time for ordered review
		if err := r.rdb.ZAdd(ctx, r.runKey(entry.RunID), redis.Z{
			Score:  float64(entry.QuarantinedAt.UnixNano()),
			Member: entry.Record.ID,
		}).Err(); err != nil {
			return fmt.Errorf("failed to add to quarantine index: %w", err)
		}
		if err := r.rdb.Expire(ctx, r.runKey(entry.RunID), r.retention).Err(); err != nil {
			return fmt.Errorf("failed to set quarantine index expiry: %w", err)
		}
	}
	return nil
}

// Location returns the run-scoped key the entries were written under.
func (r *QuarantineRepo) Location(runID string, ts time.Time) string {
	return fmt.Sprintf("redis:%s", r.runKey(runID))
}

// CountByRun returns the number of entries quarantined in a run.
func (r *QuarantineRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	count, err := r.rdb.ZCard(ctx, r.runKey(runID)).Result()
	if err != nil {
		return 0, fmt.Errorf("zcard failed: %w", err)
	}
	return int(count), nil
}

// ListByRun retrieves all entries quarantined in a run, oldest first.
func (r *QuarantineRepo) ListByRun(ctx context.Context, runID string) ([]domain.QuarantineEntry, error) {
	ids, err := r.rdb.ZRange(ctx, r.runKey(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}

	entries := make([]domain.QuarantineEntry, 0, len(ids))
	for _, id := range ids {
		data, err := r.rdb.Get(ctx, r.entryKey(runID, id)).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get quarantine entry: %w", err)
		}

		var entry domain.QuarantineEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
