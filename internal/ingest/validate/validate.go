package validate

import (
	"fmt"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// Rule is one injected validation check. Check returns every violation it
// finds, in order, and an empty slice for a clean record.
type Rule interface {
	Name() string
	Check(rec domain.TransactionRecord) []string
}

// Validator runs the configured rule set over a batch. It applies no
// business judgment of its own beyond the batch-scoped structural
// invariant that record identifiers are unique within the batch; rules
// see one record at a time and cannot check that.
type Validator struct {
	rules []Rule
}

// New creates a validator with the given rule set.
func New(rules ...Rule) *Validator {
	return &Validator{rules: rules}
}

// Validate returns one outcome per record, preserving input order. Every
// rule runs for every record without short-circuiting on the first violation, so
// operators see the full reason list. An empty batch yields zero outcomes.
func (v *Validator) Validate(batch *domain.Batch) []domain.ValidationOutcome {
	outcomes := make([]domain.ValidationOutcome, 0, len(batch.Records))
	seen := make(map[string]bool, len(batch.Records))

	for _, rec := range batch.Records {
		var reasons []string

		if rec.ID != "" {
			if seen[rec.ID] {
				reasons = append(reasons, fmt.Sprintf("duplicate identifier %q within batch", rec.ID))
			}
			seen[rec.ID] = true
		}

		for _, rule := range v.rules {
			reasons = append(reasons, rule.Check(rec)...)
		}

		outcomes = append(outcomes, domain.ValidationOutcome{Record: rec, Reasons: reasons})
	}

	return outcomes
}

// Partition splits outcomes into the valid records and the invalid
// outcomes. Every record lands in exactly one side.
func Partition(outcomes []domain.ValidationOutcome) ([]domain.TransactionRecord, []domain.ValidationOutcome) {
	var valid []domain.TransactionRecord
	var invalid []domain.ValidationOutcome
	for _, o := range outcomes {
		if o.Valid() {
			valid = append(valid, o.Record)
		} else {
			invalid = append(invalid, o)
		}
	}
	return valid, invalid
}
