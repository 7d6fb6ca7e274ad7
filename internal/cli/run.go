package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/vietddude/ingestd/internal/control"
	"github.com/vietddude/ingestd/internal/core/config"
)

var runReportDir string

var runCmd = &cobra.Command{
	Use:   "run <batch-file>",
	Short: "Run every configured job once against a single batch file",
	Args:  cobra.ExactArgs(1),
	Run:   runOnce,
}

func init() {
	runCmd.Flags().StringVar(&runReportDir, "report-dir", "", "directory for run reports (defaults to each job's report_dir)")
	rootCmd.AddCommand(runCmd)
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	initLogging(cfg)

	app, err := control.NewApp(*cfg)
	if err != nil {
		slog.Error("Failed to initialize ingestd", "error", err)
		os.Exit(1)
	}

	reportDir := runReportDir
	if reportDir == "" && len(cfg.Jobs) > 0 {
		reportDir = cfg.Jobs[0].ReportDir
	}

	ctx := context.Background()
	runIDs := app.RunOnce(ctx, args[0], reportDir)
	slog.Info("Run finished", "runs", len(runIDs))

	if err := app.Stop(ctx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
}
