package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vietddude/ingestd/internal/core/domain"
)

func writeBatchFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "batch.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write batch file: %v", err)
	}
	return path
}

const validBatch = `id,amount,currency,timestamp,description
tx-001,100.50,USD,2026-08-01T10:00:00Z,invoice 42
tx-002,-25.00,EUR,2026-08-01T11:30:00Z,refund
tx-003,0.99,USD,2026-08-02T09:15:00Z,subscription
`

func TestLoad_ValidFile(t *testing.T) {
	path := writeBatchFile(t, validBatch)

	batch, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(batch.Records) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(batch.Records))
	}
	if batch.SourcePath != path {
		t.Errorf("Expected source path %s, got %s", path, batch.SourcePath)
	}
	if batch.Checksum == "" {
		t.Error("Expected non-empty checksum")
	}
	if batch.LoadedAt.IsZero() {
		t.Error("Expected load timestamp to be set")
	}

	// Order preserved
	ids := []string{"tx-001", "tx-002", "tx-003"}
	for i, rec := range batch.Records {
		if rec.ID != ids[i] {
			t.Errorf("Record %d: expected ID %s, got %s", i, ids[i], rec.ID)
		}
	}

	if batch.Records[0].Amount.String() != "100.5" {
		t.Errorf("Expected amount 100.5, got %s", batch.Records[0].Amount)
	}
	if !batch.Records[1].Amount.IsNegative() {
		t.Error("Expected tx-002 amount to be negative")
	}
	if batch.Records[1].Currency != "EUR" {
		t.Errorf("Expected currency EUR, got %s", batch.Records[1].Currency)
	}
}

func TestLoad_ChecksumDeterministic(t *testing.T) {
	path := writeBatchFile(t, validBatch)
	l := New()

	b1, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("First load failed: %v", err)
	}
	b2, err := l.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Second load failed: %v", err)
	}

	if b1.Checksum != b2.Checksum {
		t.Errorf("Checksum differs across loads: %s vs %s", b1.Checksum, b2.Checksum)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := New().Load(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}

	var loadErr *domain.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *domain.LoadError, got %T", err)
	}
	if loadErr.Line != 0 {
		t.Errorf("Expected whole-file failure (line 0), got line %d", loadErr.Line)
	}
}

func TestLoad_MalformedLineFailsWholeLoad(t *testing.T) {
	// Record 2 has a non-numeric amount. Policy: hard-fail, no partial batch.
	path := writeBatchFile(t, `id,amount,currency,timestamp,description
tx-001,100.50,USD,2026-08-01T10:00:00Z,ok
tx-002,not-a-number,USD,2026-08-01T11:00:00Z,bad
tx-003,5.00,USD,2026-08-01T12:00:00Z,ok
`)

	batch, err := New().Load(context.Background(), path)
	if err == nil {
		t.Fatal("Expected error for malformed line")
	}
	if batch != nil {
		t.Error("Expected no partial batch on malformed line")
	}

	var loadErr *domain.LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *domain.LoadError, got %T", err)
	}
	if loadErr.Line != 3 {
		t.Errorf("Expected failure at line 3, got line %d", loadErr.Line)
	}
}

func TestLoad_BadTimestamp(t *testing.T) {
	path := writeBatchFile(t, `id,amount,currency,timestamp,description
tx-001,10.00,USD,yesterday,bad ts
`)

	var loadErr *domain.LoadError
	_, err := New().Load(context.Background(), path)
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *domain.LoadError, got %v", err)
	}
}

func TestLoad_WrongHeader(t *testing.T) {
	path := writeBatchFile(t, `identifier,value,ccy,when,memo
tx-001,10.00,USD,2026-08-01T10:00:00Z,x
`)

	var loadErr *domain.LoadError
	_, err := New().Load(context.Background(), path)
	if !errors.As(err, &loadErr) {
		t.Fatalf("Expected *domain.LoadError for wrong header, got %v", err)
	}
}

func TestLoad_HeaderOnly(t *testing.T) {
	path := writeBatchFile(t, "id,amount,currency,timestamp,description\n")

	batch, err := New().Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(batch.Records) != 0 {
		t.Errorf("Expected empty batch, got %d records", len(batch.Records))
	}
}

func TestLoad_DoesNotMutateSource(t *testing.T) {
	path := writeBatchFile(t, validBatch)

	before, _ := os.ReadFile(path)
	if _, err := New().Load(context.Background(), path); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Source file unreadable after load: %v", err)
	}
	if string(before) != string(after) {
		t.Error("Source file was mutated by load")
	}
}
