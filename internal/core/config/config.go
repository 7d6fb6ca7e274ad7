package config

import (
	"time"

	redisclient "github.com/vietddude/ingestd/internal/infra/redis"
	"github.com/vietddude/ingestd/internal/infra/storage/postgres"
)

// AppConfig represents the top-level configuration.
type AppConfig struct {
	Server   ServerConfig       `yaml:"server"`
	Jobs     []JobConfig        `yaml:"jobs"`
	Retry    RetryConfig        `yaml:"retry"`
	Redis    redisclient.Config `yaml:"redis"`
	Logging  LoggingConfig      `yaml:"logging"`
	Database postgres.Config    `yaml:"database"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
}

// RetryConfig holds the load retry policy. One policy is built at process
// start and shared by every run.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialDelay    time.Duration `yaml:"initial_delay"`
	MaxDelay        time.Duration `yaml:"max_delay"`
	BackoffMultiple float64       `yaml:"backoff_multiple"`
}

// JobConfig holds settings for one scheduled ingest job.
type JobConfig struct {
	Name       string        `yaml:"name"`
	InputDir   string        `yaml:"input_dir"`
	ReportDir  string        `yaml:"report_dir"`
	Pattern    string        `yaml:"pattern"`  // file glob, relative to input_dir
	Interval   time.Duration `yaml:"interval"` // trigger cadence
	Currencies []string      `yaml:"currencies"`
}
