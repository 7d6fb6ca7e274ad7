package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
)

func newTestServer(latest *domain.RunReport) *Server {
	monitor := NewMonitor([]string{"transactions"}, &stubRunRepo{latest: latest}, time.Hour)
	return NewServer(monitor, 0)
}

func TestHandleHealth_Healthy(t *testing.T) {
	s := newTestServer(finishedRun(domain.RunStatusCompleted, time.Minute))

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != string(StatusHealthy) {
		t.Errorf("expected healthy, got %s", body["status"])
	}
}

func TestHandleHealth_CriticalReturns503(t *testing.T) {
	run := finishedRun(domain.RunStatusFailed, time.Minute)
	run.Error = "load batch.csv: no such file"
	s := newTestServer(run)

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["status"] != string(StatusCritical) {
		t.Errorf("expected critical, got %s", body["status"])
	}
}

func TestHandleDetailed_ReportsPerJob(t *testing.T) {
	run := finishedRun(domain.RunStatusCompleted, time.Minute)
	run.QuarantineWarning = "quarantine sink unavailable"
	run.Quarantined = 2
	s := newTestServer(run)

	rec := httptest.NewRecorder()
	s.handleDetailed(rec, httptest.NewRequest(http.MethodGet, "/health/detailed", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var report SystemReport
	if err := json.NewDecoder(rec.Body).Decode(&report); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if report.SystemStatus != StatusDegraded {
		t.Errorf("expected system status degraded, got %s", report.SystemStatus)
	}

	job, ok := report.Jobs["transactions"]
	if !ok {
		t.Fatal("expected transactions job in report")
	}
	if job.Status != StatusDegraded {
		t.Errorf("expected job status degraded, got %s", job.Status)
	}
	if job.QuarantineWarning == "" {
		t.Error("expected quarantine warning to be surfaced")
	}
	if job.Quarantined != 2 {
		t.Errorf("expected quarantined count 2, got %d", job.Quarantined)
	}
}
