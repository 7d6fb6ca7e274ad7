package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one parsed line of an input batch file.
type TransactionRecord struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Timestamp   time.Time       `json:"timestamp"`
	Description string          `json:"description"`
}

// Batch is the full ordered set of records from one load, plus provenance.
// Immutable after load; owned by the run that loaded it.
type Batch struct {
	SourcePath string              `json:"source_path"`
	Checksum   string              `json:"checksum"` // SHA-256 of the file contents
	LoadedAt   time.Time           `json:"loaded_at"`
	Records    []TransactionRecord `json:"records"`
}

// SourceFile is the ledger entry for a batch file that has been ingested.
// Keyed by checksum so re-scheduling the same file is a no-op.
type SourceFile struct {
	Checksum   string    `json:"checksum"`
	Path       string    `json:"path"`
	RunID      string    `json:"run_id"`
	IngestedAt time.Time `json:"ingested_at"`
}
