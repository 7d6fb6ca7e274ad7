package loader

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vietddude/ingestd/internal/core/domain"
)

// Input batch files are CSV with this exact header. Timestamps are RFC3339.
var expectedHeader = []string{"id", "amount", "currency", "timestamp", "description"}

// Loader reads a batch file into a domain.Batch. It never mutates or
// deletes the source file, and is safe to invoke repeatedly on the same
// path (required by the retry wrapper around Load).
type Loader struct{}

// New creates a CSV batch loader.
func New() *Loader {
	return &Loader{}
}

// Load parses the file at path into a Batch. Any failure (missing file,
// unreadable file, bad header, malformed line) returns a *domain.LoadError;
// a malformed line fails the whole load rather than shrinking the batch.
func (l *Loader) Load(ctx context.Context, path string) (*domain.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.LoadError{Path: path, Reason: fmt.Sprintf("read file: %v", err), Err: err}
	}

	sum := sha256.Sum256(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(expectedHeader)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err == io.EOF {
		return nil, &domain.LoadError{Path: path, Reason: "empty file, missing header"}
	}
	if err != nil {
		return nil, &domain.LoadError{Path: path, Line: 1, Reason: fmt.Sprintf("read header: %v", err), Err: err}
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), expectedHeader[i]) {
			return nil, &domain.LoadError{
				Path: path, Line: 1,
				Reason: fmt.Sprintf("unexpected header column %d: got %q, want %q", i+1, col, expectedHeader[i]),
			}
		}
	}

	var records []domain.TransactionRecord
	line := 1
	for {
		fields, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, &domain.LoadError{Path: path, Line: line, Reason: err.Error(), Err: err}
		}

		rec, err := parseRecord(fields)
		if err != nil {
			return nil, &domain.LoadError{Path: path, Line: line, Reason: err.Error(), Err: err}
		}
		records = append(records, rec)
	}

	return &domain.Batch{
		SourcePath: path,
		Checksum:   hex.EncodeToString(sum[:]),
		LoadedAt:   time.Now().UTC(),
		Records:    records,
	}, nil
}

func parseRecord(fields []string) (domain.TransactionRecord, error) {
	var rec domain.TransactionRecord

	rec.ID = strings.TrimSpace(fields[0])

	amount, err := decimal.NewFromString(strings.TrimSpace(fields[1]))
	if err != nil {
		return rec, fmt.Errorf("amount %q: %w", fields[1], err)
	}
	rec.Amount = amount

	rec.Currency = strings.ToUpper(strings.TrimSpace(fields[2]))

	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(fields[3]))
	if err != nil {
		return rec, fmt.Errorf("timestamp %q: %w", fields[3], err)
	}
	rec.Timestamp = ts

	rec.Description = strings.TrimSpace(fields[4])

	return rec, nil
}
