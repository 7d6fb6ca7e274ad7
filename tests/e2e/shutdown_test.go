package e2e

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/vietddude/ingestd/internal/control"
	"github.com/vietddude/ingestd/internal/core/config"
)

func TestGracefulShutdown(t *testing.T) {
	// Memory storage, no files to ingest. Enough to start every component.
	dir := t.TempDir()
	cfg := config.AppConfig{
		Server: config.ServerConfig{Port: 0},
		Jobs: []config.JobConfig{
			{
				Name:      "transactions",
				InputDir:  dir,
				ReportDir: filepath.Join(dir, "reports"),
				Pattern:   "*.csv",
				Interval:  100 * time.Millisecond,
			},
		},
		Retry: config.RetryConfig{
			MaxAttempts:     3,
			InitialDelay:    10 * time.Millisecond,
			MaxDelay:        time.Second,
			BackoffMultiple: 2.0,
		},
	}

	app, err := control.NewApp(cfg)
	if err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let it run for a few ticks
	time.Sleep(300 * time.Millisecond)

	// Trigger shutdown
	cancel()

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer stopCancel()

	if err := app.Stop(stopCtx); err != nil {
		t.Errorf("Stop failed: %v", err)
	}
}
