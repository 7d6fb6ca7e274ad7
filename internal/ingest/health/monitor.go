package health

import (
	"context"
	"sync"
	"time"

	"github.com/vietddude/ingestd/internal/core/domain"
	"github.com/vietddude/ingestd/internal/infra/storage"
)

// Monitor aggregates health status from the run bookkeeping of each job.
type Monitor struct {
	jobs       []string
	runs       storage.RunRepository
	staleAfter time.Duration
	now        func() time.Time
	lastCheck  time.Time
	lastReport map[string]JobHealth
	mu         sync.RWMutex
}

// NewMonitor creates a new health monitor. staleAfter is how long a job may
// go without a finished run before it is considered degraded.
func NewMonitor(jobs []string, runs storage.RunRepository, staleAfter time.Duration) *Monitor {
	return &Monitor{
		jobs:       jobs,
		runs:       runs,
		staleAfter: staleAfter,
		now:        time.Now,
		lastReport: make(map[string]JobHealth),
	}
}

// CheckHealth performs a health check for all jobs.
func (m *Monitor) CheckHealth(ctx context.Context) map[string]JobHealth {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks (max once per 10s) to avoid hammering storage
	if m.now().Sub(m.lastCheck) < 10*time.Second && len(m.lastReport) > 0 {
		return m.lastReport
	}

	report := make(map[string]JobHealth)

	for _, name := range m.jobs {
		health := JobHealth{
			JobName: name,
			Status:  StatusHealthy,
		}

		latest, err := m.runs.LatestByJob(ctx, name)
		if err != nil {
			health.Status = StatusDegraded
			report[name] = health
			continue
		}
		if latest == nil {
			// No run yet. Fine right after startup, reported as healthy.
			report[name] = health
			continue
		}

		health.LastRunStatus = string(latest.Status)
		health.Quarantined = latest.Quarantined
		health.QuarantineWarning = latest.QuarantineWarning
		health.LastError = latest.Error

		if !latest.FinishedAt.IsZero() {
			health.LastRunAgeSeconds = int64(m.now().Sub(latest.FinishedAt).Seconds())
		}

		switch {
		case latest.Status == domain.RunStatusFailed:
			health.Status = StatusCritical
		case latest.QuarantineWarning != "":
			health.Status = StatusDegraded
		case m.staleAfter > 0 && !latest.FinishedAt.IsZero() && m.now().Sub(latest.FinishedAt) > m.staleAfter:
			health.Status = StatusDegraded
		}

		report[name] = health
	}

	m.lastCheck = m.now()
	m.lastReport = report
	return report
}
