package validate

import (
	"fmt"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// RequiredFields checks the structural invariants every record must meet.
type RequiredFields struct{}

func (RequiredFields) Name() string { return "required_fields" }

func (RequiredFields) Check(rec domain.TransactionRecord) []string {
	var reasons []string
	if rec.ID == "" {
		reasons = append(reasons, "identifier is required")
	}
	if rec.Currency == "" {
		reasons = append(reasons, "currency is required")
	}
	if rec.Timestamp.IsZero() {
		reasons = append(reasons, "timestamp is required")
	}
	return reasons
}

// NonNegativeAmount rejects negative amounts.
type NonNegativeAmount struct{}

func (NonNegativeAmount) Name() string { return "non_negative_amount" }

func (NonNegativeAmount) Check(rec domain.TransactionRecord) []string {
	if rec.Amount.IsNegative() {
		return []string{fmt.Sprintf("amount %s violates non-negative amount rule", rec.Amount)}
	}
	return nil
}

// KnownCurrency restricts records to a configured currency set. An empty
// set allows everything.
type KnownCurrency struct {
	Allowed []string
}

func (KnownCurrency) Name() string { return "known_currency" }

func (r KnownCurrency) Check(rec domain.TransactionRecord) []string {
	if len(r.Allowed) == 0 {
		return nil
	}
	for _, c := range r.Allowed {
		if rec.Currency == c {
			return nil
		}
	}
	return []string{fmt.Sprintf("unknown currency %q", rec.Currency)}
}

// MaxFutureTimestamp rejects records dated too far in the future. Now is
// injectable so checks stay deterministic in tests.
type MaxFutureTimestamp struct {
	Skew time.Duration
	Now  func() time.Time
}

func (MaxFutureTimestamp) Name() string { return "max_future_timestamp" }

func (r MaxFutureTimestamp) Check(rec domain.TransactionRecord) []string {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	if rec.Timestamp.After(now().Add(r.Skew)) {
		return []string{fmt.Sprintf("timestamp %s is in the future", rec.Timestamp.Format(time.RFC3339))}
	}
	return nil
}
