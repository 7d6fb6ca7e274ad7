package domain

import "time"

// RunState tracks where a run is in its lifecycle.
type RunState string

const (
	StateIdle         RunState = "idle"
	StateLoading      RunState = "loading"
	StateValidating   RunState = "validating"
	StateProcessing   RunState = "processing"
	StateQuarantining RunState = "quarantining"
	StateCompleted    RunState = "completed"
	StateFailed       RunState = "failed"
)

// RunStatus is the terminal status of a run.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// RunReport summarizes one end-to-end execution of a scheduled job.
// Created at run start, finalized at run end, immutable thereafter.
type RunReport struct {
	RunID     string `json:"run_id"`
	JobName   string `json:"job_name"`
	InputPath string `json:"input_path"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`

	Loaded      int `json:"loaded"`
	Valid       int `json:"valid"`
	Invalid     int `json:"invalid"`
	Persisted   int `json:"persisted"`
	Quarantined int `json:"quarantined"`

	Status             RunStatus `json:"status"`
	Error              string    `json:"error,omitempty"`
	QuarantineWarning  string    `json:"quarantine_warning,omitempty"`
	QuarantineLocation string    `json:"quarantine_location,omitempty"`
}

// Duration returns the total run time, zero if the run has not finished.
func (r *RunReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
