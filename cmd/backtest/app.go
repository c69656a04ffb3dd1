package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/backtest"
	"github.com/yourusername/digit-edge/internal/config"
	"github.com/yourusername/digit-edge/internal/database"
	"github.com/yourusername/digit-edge/internal/datasource"
	"github.com/yourusername/digit-edge/internal/logger"
	"github.com/yourusername/digit-edge/internal/metrics"
	"github.com/yourusername/digit-edge/internal/models"
	"github.com/yourusername/digit-edge/internal/oracle"
	"github.com/yourusername/digit-edge/internal/repository"
	"github.com/yourusername/digit-edge/internal/strategy"
)

// app holds the wired components of one CLI invocation
type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	db       *database.DB
	repos    *repository.Repositories
	engine   *backtest.Engine
	btConfig backtest.BacktestConfig
	scorer   string
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewLoggerForEnvironment(cfg.App.LogLevel, cfg.App.Environment)
	metrics.InitRegistry()

	a := &app{cfg: cfg, log: log, scorer: cfg.Features.Registry}
	if cfg.HasDatabase() {
		db, err := database.Initialize(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		a.db = db
		if a.repos, err = repository.NewRepositories(db); err != nil {
			db.Close()
			return nil, err
		}
	} else {
		a.repos = repository.NewMemoryRepositories()
	}

	orc, err := oracle.New(cfg, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create oracle: %w", err)
	}
	if orc, err = oracle.OverridePredictions(orc, predictionsPath); err != nil {
		a.Close()
		return nil, err
	}

	scorer, err := buildScorer(cfg.Features)
	if err != nil {
		a.Close()
		return nil, err
	}

	if a.btConfig, err = backtest.FromConfig(cfg); err != nil {
		a.Close()
		return nil, fmt.Errorf("invalid backtest config: %w", err)
	}
	if a.engine, err = backtest.NewEngine(a.btConfig, orc, scorer, log); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	log.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"oracle":      orc.Name(),
		"scorer":      a.scorer,
		"gate":        a.engine.Gate().Name(),
		"database":    cfg.HasDatabase(),
	}).Info("Backtester initialized")
	return a, nil
}

// loadConfig applies defaults, the secrets overlay and command-line overrides, then validates
func loadConfig(ctx context.Context) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.ApplySecrets(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}

	if dataPath != "" {
		cfg.Data.Source = "json"
		cfg.Data.Path = dataPath
	}
	if oracleKind != "" {
		cfg.Oracle.Kind = oracleKind
	}
	if oracleKind == "static" && cfg.Oracle.PredictionsPath == "" {
		cfg.Oracle.PredictionsPath = predictionsPath
	}
	if outputPath != "" {
		cfg.Backtest.OutputPath = outputPath
		cfg.Backtest.ExportEnabled = true
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func buildScorer(cfg config.FeaturesConfig) (*strategy.Scorer, error) {
	registry, err := strategy.RegistryByName(cfg.Registry)
	if err != nil {
		return nil, err
	}
	if len(cfg.Weights) > 0 {
		if registry, err = registry.WithWeights(cfg.Weights); err != nil {
			return nil, fmt.Errorf("invalid feature weights: %w", err)
		}
	}
	return strategy.NewScorer(registry)
}

// loadDraws reads the history from Postgres or from the configured file/HTTP source
func (a *app) loadDraws(ctx context.Context) ([]models.Draw, error) {
	if a.cfg.Data.Source == "postgres" {
		draws, err := a.repos.Draw.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list draws: %w", err)
		}
		a.log.WithField("draws", len(draws)).Info("Loaded draws from database")
		return draws, nil
	}

	src, err := datasource.NewDrawSource(a.cfg.Data, a.log)
	if err != nil {
		return nil, err
	}
	raw, err := src.FetchDraws(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch draws from %s: %w", src.Name(), err)
	}
	result := datasource.NewDrawValidator(a.log).Ingest(src.Name(), raw)
	metrics.RecordIngestion(len(result.Accepted), len(result.Rejections), result.Duplicates())
	return result.Accepted, nil
}

// evaluate runs the backtest and baseline, then reports, exports and persists the run
func (a *app) evaluate(ctx context.Context) (*backtest.Report, error) {
	draws, err := a.loadDraws(ctx)
	if err != nil {
		return nil, err
	}

	series, result, err := a.engine.Run(ctx, draws)
	if err != nil {
		return nil, fmt.Errorf("backtest failed: %w", err)
	}
	baseline, err := a.engine.Baseline(ctx, result, backtest.MonteCarloFromConfig(a.cfg))
	if err != nil {
		return nil, fmt.Errorf("baseline failed: %w", err)
	}
	report, err := backtest.AggregateResults(a.btConfig, series, result, baseline, a.scorer)
	if err != nil {
		return nil, err
	}

	fmt.Print(backtest.GenerateConsoleReport(report))

	if a.cfg.Backtest.ExportEnabled {
		if err := backtest.ExportDir(report, a.cfg.Backtest.OutputPath); err != nil {
			return nil, fmt.Errorf("export failed: %w", err)
		}
		a.log.WithField("output", a.cfg.Backtest.OutputPath).Info("Results exported")
	}
	if a.db != nil {
		if _, err := backtest.ExportToDatabase(ctx, report, a.repos.BacktestRun, logger.NewAuditLogger(a.log)); err != nil {
			return nil, err
		}
	}
	return report, nil
}

// Close releases the database pool
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
}
