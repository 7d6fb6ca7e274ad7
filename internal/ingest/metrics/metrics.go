package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RunsTotal tracks completed runs per job and terminal status
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_runs_total",
			Help: "Total number of job runs",
		},
		[]string{"job", "status"},
	)

	// RecordsLoaded tracks records loaded from batch files per job
	RecordsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_loaded_total",
			Help: "Total number of records loaded",
		},
		[]string{"job"},
	)

	// RecordsValid tracks records that passed validation per job
	RecordsValid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_valid_total",
			Help: "Total number of records that passed validation",
		},
		[]string{"job"},
	)

	// RecordsInvalid tracks records that failed validation per job
	RecordsInvalid = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_invalid_total",
			Help: "Total number of records that failed validation",
		},
		[]string{"job"},
	)

	// RecordsPersisted tracks valid records persisted per job
	RecordsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_persisted_total",
			Help: "Total number of records persisted",
		},
		[]string{"job"},
	)

	// RecordsQuarantined tracks invalid records quarantined per job
	RecordsQuarantined = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_records_quarantined_total",
			Help: "Total number of records quarantined",
		},
		[]string{"job"},
	)

	// QuarantineWriteFailures tracks best-effort quarantine writes that failed
	QuarantineWriteFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingestd_quarantine_write_failures_total",
			Help: "Total number of failed quarantine writes",
		},
		[]string{"job"},
	)

	// RunDuration tracks end-to-end run duration
	RunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ingestd_run_duration_seconds",
			Help:    "Job run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	// LastRunTimestamp tracks when each job last finished a run
	LastRunTimestamp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ingestd_last_run_timestamp_seconds",
			Help: "Unix timestamp of the last finished run",
		},
		[]string{"job"},
	)
)
