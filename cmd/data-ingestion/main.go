// Package main provides the entry point for the draw ingestion tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/digit-edge/internal/config"
	"github.com/yourusername/digit-edge/internal/database"
	"github.com/yourusername/digit-edge/internal/datasource"
	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/metrics"
	"github.com/yourusername/digit-edge/internal/repository"
)

var (
	configPath string
	dataPath   string
	dataURL    string
	dryRun     bool
)

var rootCmd = &cobra.Command{
	Use:   "data-ingestion",
	Short: "Load, validate and store historical pick-3 draws",
	Long: `data-ingestion reads draws from a JSON file or an HTTP endpoint, rejects
malformed and duplicate periods, and writes the rest to Postgres.

Examples:
  data-ingestion --data data/draws.json
  data-ingestion --url https://example.org/draws --dry-run`,
	SilenceUsage: true,
	RunE:         runIngestion,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", "config/config.yaml", "Path to config file")
	rootCmd.Flags().StringVar(&dataPath, "data", "", "JSON draw file (overrides data.path)")
	rootCmd.Flags().StringVar(&dataURL, "url", "", "HTTP draw endpoint (overrides data.url)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate only, do not write to the database")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runIngestion(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplySecrets(ctx, cfg); err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}
	switch {
	case dataURL != "":
		cfg.Data.Source = "http"
		cfg.Data.URL = dataURL
	case dataPath != "":
		cfg.Data.Source = "json"
		cfg.Data.Path = dataPath
	case cfg.Data.Source == "postgres":
		return fmt.Errorf("data.source is postgres; pass --data or --url to ingest from a file or endpoint")
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	src, err := datasource.NewDrawSource(cfg.Data, log)
	if err != nil {
		return err
	}
	raw, err := src.FetchDraws(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch draws from %s: %w", src.Name(), err)
	}

	result := datasource.NewDrawValidator(log).Ingest(src.Name(), raw)
	metrics.RecordIngestion(len(result.Accepted), len(result.Rejections), result.Duplicates())

	entry := log.WithFields(logrus.Fields{
		"source":     src.Name(),
		"fetched":    len(raw),
		"accepted":   len(result.Accepted),
		"rejected":   len(result.Rejections),
		"duplicates": result.Duplicates(),
	})
	if dryRun {
		entry.Info("Dry run, nothing written")
		return nil
	}
	if !cfg.HasDatabase() {
		return fmt.Errorf("database.host is required to store draws")
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	inserted, err := repos.Draw.InsertBatch(ctx, result.Accepted)
	if err != nil {
		return fmt.Errorf("failed to store draws: %w", err)
	}

	entry.WithField("inserted", inserted).Info("Ingestion completed")
	return nil
}
