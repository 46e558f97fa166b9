package cmd

import (
	"context"
	"fmt"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/reconcile"
	"catalog-sync/core/source"
	"catalog-sync/core/syncrun"

	"catalog-sync/feature/catalog"
	"catalog-sync/feature/catalog/models"
	"catalog-sync/feature/sources/onec"
	"catalog-sync/feature/sources/sheets"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var dryRunSync bool

// syncCmd performs a one-shot sync run without starting the server.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one catalog sync and exit",
	Long: `Fetches all sources, reconciles them, and applies the resulting
changeset to the database.

Examples:
  # Full run
  sync

  # Compute and report the changeset without writing
  sync --dry-run`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().BoolVar(&dryRunSync, "dry-run", false, "Compute the changeset but do not write")
	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting catalog sync", zap.Bool("dry_run", dryRunSync))

	// Connect to database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Entry{}, &models.SyncRunRecord{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	// Build the pipeline
	policy, err := reconcile.ParsePolicy(cfg.Sync.Priority, cfg.Sync.FieldPriority)
	if err != nil {
		return fmt.Errorf("invalid conflict policy: %w", err)
	}

	sources := []source.Source{
		onec.NewAdapter(cfg.OneC, l),
		sheets.NewAdapter(cfg.Sheets, l),
	}
	writer := catalog.NewWriter(db, l)
	runStore := catalog.NewRunStore(db)

	orchestrator := syncrun.New(cfg.Sync, sources, reconcile.NewEngine(policy), writer, runStore, l)

	run, err := orchestrator.RunOnce(ctx, dryRunSync)
	if err != nil {
		return fmt.Errorf("failed to run sync: %w", err)
	}

	printRunReport(l, run)

	if run.Outcome == syncrun.OutcomeFailed {
		return fmt.Errorf("sync run failed: %s", run.Error)
	}
	return nil
}

// printRunReport prints a formatted run report using logger.
func printRunReport(l *zap.Logger, run *syncrun.Run) {
	l.Info("Sync run report",
		zap.String("run_id", run.ID),
		zap.String("outcome", string(run.Outcome)),
		zap.Int("inserts", run.Inserts),
		zap.Int("updates", run.Updates),
		zap.Int("noops", run.NoOps),
		zap.Int("deletes", run.Deletes),
		zap.Int("rejected", run.Rejected),
		zap.Int("conflicts", run.Conflicts),
		zap.Duration("duration", run.FinishedAt.Sub(run.StartedAt)),
	)

	for name, report := range run.Sources {
		l.Info("Source report",
			zap.String("source", name),
			zap.Int("records", report.Records),
			zap.Int("rejected", report.Rejected),
			zap.Int("attempts", report.Attempts),
			zap.Bool("missing", report.Missing),
		)
	}

	if dryRunSync {
		l.Info("Dry-run mode: No changes were made.")
	}
}
