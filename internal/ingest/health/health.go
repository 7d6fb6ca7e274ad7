// Package health provides system health monitoring and status reporting.
package health

// SystemStatus represents the overall health state of the system or a job.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// JobHealth contains health indicators for a single scheduled job.
type JobHealth struct {
	JobName           string       `json:"job_name"`
	Status            SystemStatus `json:"status"`
	LastRunStatus     string       `json:"last_run_status,omitempty"`
	LastRunAgeSeconds int64        `json:"last_run_age_seconds,omitempty"`
	Quarantined       int          `json:"quarantined"`
	QuarantineWarning string       `json:"quarantine_warning,omitempty"`
	LastError         string       `json:"last_error,omitempty"`
}

// SystemReport contains the full system health report.
type SystemReport struct {
	SystemStatus SystemStatus         `json:"system_status"`
	Jobs         map[string]JobHealth `json:"jobs"`
}
