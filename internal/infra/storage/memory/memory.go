package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// MemoryStorage backs all repositories for single-process runs and tests.
type MemoryStorage struct {
	results    map[string]domain.ProcessedResult
	quarantine []domain.QuarantineEntry
	runs       map[string]*domain.RunReport
	runOrder   []string
	files      map[string]*domain.SourceFile
	mu         sync.RWMutex
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		results: make(map[string]domain.ProcessedResult),
		runs:    make(map[string]*domain.RunReport),
		files:   make(map[string]*domain.SourceFile),
	}
}

// -----------------------------------------------------------------------------
// Result Repository
// -----------------------------------------------------------------------------

type ResultRepo struct {
	store *MemoryStorage
}

func NewResultRepo(store *MemoryStorage) *ResultRepo {
	return &ResultRepo{store: store}
}

func (r *ResultRepo) SaveBatch(ctx context.Context, results []domain.ProcessedResult) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	// Keyed by deterministic result ID, so re-processing the same batch
	// overwrites identical rows instead of duplicating them
	for _, res := range results {
		r.store.results[res.ResultID] = res
	}
	return nil
}

func (r *ResultRepo) Count(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	return len(r.store.results), nil
}

// -----------------------------------------------------------------------------
// Quarantine Repository
// -----------------------------------------------------------------------------

type QuarantineRepo struct {
	store *MemoryStorage
}

func NewQuarantineRepo(store *MemoryStorage) *QuarantineRepo {
	return &QuarantineRepo{store: store}
}

func (r *QuarantineRepo) AddBatch(ctx context.Context, entries []domain.QuarantineEntry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.quarantine = append(r.store.quarantine, entries...)
	return nil
}

func (r *QuarantineRepo) Location(runID string, ts time.Time) string {
	return fmt.Sprintf("memory:quarantine:%s:%s", ts.UTC().Format("20060102T150405Z"), runID)
}

func (r *QuarantineRepo) CountByRun(ctx context.Context, runID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	n := 0
	for _, e := range r.store.quarantine {
		if e.RunID == runID {
			n++
		}
	}
	return n, nil
}

// -----------------------------------------------------------------------------
// Run Repository
// -----------------------------------------------------------------------------

type RunRepo struct {
	store *MemoryStorage
}

func NewRunRepo(store *MemoryStorage) *RunRepo {
	return &RunRepo{store: store}
}

func (r *RunRepo) Create(ctx context.Context, report *domain.RunReport) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	snapshot := *report
	r.store.runs[report.RunID] = &snapshot
	r.store.runOrder = append(r.store.runOrder, report.RunID)
	return nil
}

func (r *RunRepo) Finish(ctx context.Context, report *domain.RunReport) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.runs[report.RunID]; !ok {
		return storage.ErrRunNotFound
	}
	snapshot := *report
	r.store.runs[report.RunID] = &snapshot
	return nil
}

func (r *RunRepo) LatestByJob(ctx context.Context, jobName string) (*domain.RunReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for i := len(r.store.runOrder) - 1; i >= 0; i-- {
		run := r.store.runs[r.store.runOrder[i]]
		if run.JobName == jobName {
			snapshot := *run
			return &snapshot, nil
		}
	}
	return nil, nil
}

func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]*domain.RunReport, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	runs := make([]*domain.RunReport, 0, len(r.store.runs))
	for _, run := range r.store.runs {
		snapshot := *run
		runs = append(runs, &snapshot)
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// -----------------------------------------------------------------------------
// Source File Repository
// -----------------------------------------------------------------------------

type SourceFileRepo struct {
	store *MemoryStorage
}

func NewSourceFileRepo(store *MemoryStorage) *SourceFileRepo {
	return &SourceFileRepo{store: store}
}

func (r *SourceFileRepo) Exists(ctx context.Context, checksum string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	_, ok := r.store.files[checksum]
	return ok, nil
}

func (r *SourceFileRepo) Record(ctx context.Context, file *domain.SourceFile) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.files[file.Checksum] = file
	return nil
}
