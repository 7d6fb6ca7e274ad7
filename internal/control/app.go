package control

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vietddude/ingestd/internal/core/config"
	"github.com/vietddude/ingestd/internal/ingest/health"
	"github.com/vietddude/ingestd/internal/ingest/job"
	"github.com/vietddude/ingestd/internal/ingest/loader"
	"github.com/vietddude/ingestd/internal/ingest/process"
	"github.com/vietddude/ingestd/internal/ingest/quarantine"
	"github.com/vietddude/ingestd/internal/ingest/retry"
	"github.com/vietddude/ingestd/internal/ingest/schedule"
	"github.com/vietddude/ingestd/internal/ingest/validate"
	redisclient "github.com/vietddude/ingestd/internal/infra/redis"
	"github.com/vietddude/ingestd/internal/infra/storage"
	"github.com/vietddude/ingestd/internal/infra/storage/memory"
	"github.com/vietddude/ingestd/internal/infra/storage/postgres"
)

// App is the main application struct that manages the ingest lifecycle.
type App struct {
	cfg          config.AppConfig
	runners      map[string]*schedule.Runner
	jobs         map[string]*job.Job
	healthMon    *health.Monitor
	healthServer *health.Server
	runs         storage.RunRepository
	db           *postgres.DB
	redisClient  *redisclient.Client
	log          *slog.Logger
}

// NewApp creates a new App instance with all dependencies initialized.
func NewApp(cfg config.AppConfig) (*App, error) {

	// 1. Initialize Storage
	var resultRepo storage.ResultRepository
	var quarantineRepo storage.QuarantineRepository
	var runRepo storage.RunRepository
	var fileRepo storage.SourceFileRepository
	var db *postgres.DB

	if cfg.Database.URL != "" {
		var err error
		db, err = postgres.NewDB(context.Background(), cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to init db: %w", err)
		}

		if err := postgres.Migrate(db, "migrations"); err != nil {
			return nil, fmt.Errorf("failed to migrate db: %w", err)
		}

		resultRepo = postgres.NewResultRepo(db)
		quarantineRepo = postgres.NewQuarantineRepo(db)
		runRepo = postgres.NewRunRepo(db)
		fileRepo = postgres.NewSourceFileRepo(db)

		slog.Info("Using PostgreSQL storage")
	} else {
		store := memory.NewMemoryStorage()
		resultRepo = memory.NewResultRepo(store)
		quarantineRepo = memory.NewQuarantineRepo(store)
		runRepo = memory.NewRunRepo(store)
		fileRepo = memory.NewSourceFileRepo(store)

		slog.Info("Using Memory storage")
	}

	// 2. Optional Redis quarantine sink. Takes precedence over the primary
	// store for quarantined records so review tooling has one place to look.
	var redisClient *redisclient.Client
	if cfg.Redis.URL != "" {
		var err error
		redisClient, err = redisclient.NewClient(cfg.Redis)
		if err != nil {
			slog.Warn("Failed to connect to Redis, quarantine uses primary storage", "error", err)
		} else {
			quarantineRepo = redisclient.NewQuarantineRepo(redisClient, "ingestd")
			slog.Info("Using Redis quarantine sink")
		}
	}

	// 3. Shared retry policy
	policy := &retry.Policy{
		MaxAttempts:     cfg.Retry.MaxAttempts,
		InitialDelay:    cfg.Retry.InitialDelay,
		MaxDelay:        cfg.Retry.MaxDelay,
		BackoffMultiple: cfg.Retry.BackoffMultiple,
		Logger:          slog.Default(),
	}

	// 4. Per-job pipelines and runners
	runners := make(map[string]*schedule.Runner)
	jobs := make(map[string]*job.Job)
	jobNames := make([]string, 0, len(cfg.Jobs))
	maxInterval := time.Duration(0)

	for _, jobCfg := range cfg.Jobs {
		validator := validate.New(
			validate.RequiredFields{},
			validate.NonNegativeAmount{},
			validate.KnownCurrency{Allowed: jobCfg.Currencies},
			validate.MaxFutureTimestamp{Skew: 24 * time.Hour},
		)

		j := job.New(job.Config{
			Name:       jobCfg.Name,
			Retry:      policy,
			Loader:     loader.New(),
			Validator:  validator,
			Processor:  process.New(resultRepo),
			Quarantine: quarantine.New(quarantineRepo),
			Runs:       runRepo,
			Logger:     slog.Default(),
		})
		jobs[jobCfg.Name] = j

		runners[jobCfg.Name] = schedule.NewRunner(schedule.Config{
			JobName:   jobCfg.Name,
			InputDir:  jobCfg.InputDir,
			ReportDir: jobCfg.ReportDir,
			Pattern:   jobCfg.Pattern,
			Interval:  jobCfg.Interval,
		}, j, fileRepo, slog.Default())

		jobNames = append(jobNames, jobCfg.Name)
		if jobCfg.Interval > maxInterval {
			maxInterval = jobCfg.Interval
		}
	}

	// 5. Health Monitor. A job with no finished run for three intervals is
	// considered stale.
	healthMon := health.NewMonitor(jobNames, runRepo, 3*maxInterval)
	healthServer := health.NewServer(healthMon, cfg.Server.Port)

	return &App{
		cfg:          cfg,
		runners:      runners,
		jobs:         jobs,
		healthMon:    healthMon,
		healthServer: healthServer,
		runs:         runRepo,
		db:           db,
		redisClient:  redisClient,
		log:          slog.Default(),
	}, nil
}

// Runs exposes the run bookkeeping, for status tooling.
func (a *App) Runs() storage.RunRepository {
	return a.runs
}

// RunOnce executes every configured job against a single batch file and
// returns the reports. Used by the one-shot CLI path.
func (a *App) RunOnce(ctx context.Context, inputPath, reportDir string) []string {
	runIDs := make([]string, 0, len(a.jobs))
	for name, j := range a.jobs {
		a.log.Info("Running job once", "job", name, "input", inputPath)
		report := j.Execute(ctx, inputPath, reportDir)
		runIDs = append(runIDs, report.RunID)
	}
	return runIDs
}

// Start starts the app and all its components.
func (a *App) Start(ctx context.Context) error {
	// Start Health Server
	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	// Start Runners
	for name, r := range a.runners {
		a.log.Info("Starting job runner", "job", name)
		go func(name string, runner *schedule.Runner) {
			if err := runner.Start(ctx); err != nil {
				a.log.Error("Job runner failed", "job", name, "error", err)
			}
		}(name, r)
	}

	return nil
}

// Stop stops the app.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping ingestd...")

	// Stop Runners
	for _, r := range a.runners {
		r.Stop()
	}

	// Close Redis
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.log.Warn("Failed to close Redis", "error", err)
		}
	}

	// Close DB
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Warn("Failed to close database", "error", err)
		}
	}

	// Stop Health Server
	return a.healthServer.Stop(ctx)
}
