package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValidationOutcome is the per-record validation result. A record with zero
// reasons is valid; one or more reasons makes it invalid. Never both.
type ValidationOutcome struct {
	Record  TransactionRecord `json:"record"`
	Reasons []string          `json:"reasons,omitempty"`
}

// Valid reports whether the record passed every rule.
func (o ValidationOutcome) Valid() bool {
	return len(o.Reasons) == 0
}

// Direction classifies a transaction by the sign of its amount.
type Direction string

const (
	DirectionDebit  Direction = "debit"
	DirectionCredit Direction = "credit"
)

// ProcessedResult is the persistable entity derived from one valid record.
// All fields are deterministic given the source batch.
type ProcessedResult struct {
	ResultID       string          `json:"result_id"` // UUIDv5 of checksum+record ID
	RecordID       string          `json:"record_id"`
	SourceChecksum string          `json:"source_checksum"`
	Amount         decimal.Decimal `json:"amount"` // absolute value
	Direction      Direction       `json:"direction"`
	Currency       string          `json:"currency"`
	Timestamp      time.Time       `json:"timestamp"`
	Description    string          `json:"description"`
}

// QuarantineEntry is an invalid record routed to the quarantine area,
// keyed by the run that produced it so repeated runs never overwrite
// prior quarantine data.
type QuarantineEntry struct {
	RunID         string            `json:"run_id"`
	Record        TransactionRecord `json:"record"`
	Reasons       []string          `json:"reasons"`
	QuarantinedAt time.Time         `json:"quarantined_at"`
}
