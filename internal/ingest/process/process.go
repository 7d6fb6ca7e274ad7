package process

import (
	"context"

	"github.com/google/uuid"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// resultNamespace scopes the UUIDv5 derivation of result IDs.
var resultNamespace = uuid.MustParse("7b0dd48a-3a6f-4c0e-9d41-2f9b67a51c22")

// Processor transforms valid records into persistable results and writes
// them through the result repository.
type Processor struct {
	results storage.ResultRepository
}

// New creates a processor backed by the given repository.
func New(results storage.ResultRepository) *Processor {
	return &Processor{results: results}
}

// Process derives one ProcessedResult per valid record. Pure and
// deterministic: the same batch always yields the same results. Result
// IDs are UUIDv5 over the batch checksum and record ID, and no field
// depends on the wall clock.
func (p *Processor) Process(batch *domain.Batch, valid []domain.TransactionRecord) []domain.ProcessedResult {
	results := make([]domain.ProcessedResult, 0, len(valid))
	for _, rec := range valid {
		direction := domain.DirectionCredit
		if rec.Amount.IsNegative() {
			direction = domain.DirectionDebit
		}

		results = append(results, domain.ProcessedResult{
			ResultID:       uuid.NewSHA1(resultNamespace, []byte(batch.Checksum+":"+rec.ID)).String(),
			RecordID:       rec.ID,
			SourceChecksum: batch.Checksum,
			Amount:         rec.Amount.Abs(),
			Direction:      direction,
			Currency:       rec.Currency,
			Timestamp:      rec.Timestamp.UTC(),
			Description:    rec.Description,
		})
	}
	return results
}

// Persist writes all results as one bulk operation and returns the count
// persisted. A store rejection surfaces as a *domain.PersistenceError with
// zero counted, never a silent partial commit.
func (p *Processor) Persist(ctx context.Context, results []domain.ProcessedResult) (int, error) {
	if len(results) == 0 {
		return 0, nil
	}
	if err := p.results.SaveBatch(ctx, results); err != nil {
		return 0, &domain.PersistenceError{Count: len(results), Err: err}
	}
	return len(results), nil
}
