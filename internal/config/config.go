// Package config provides configuration management for the digit-edge backtester.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/digit-edge/internal/models"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
	Oracle     OracleConfig     `mapstructure:"oracle" validate:"required"`
	Data       DataConfig       `mapstructure:"data"`
	Betting    BettingConfig    `mapstructure:"betting" validate:"required"`
	Gate       GateConfig       `mapstructure:"gate" validate:"required"`
	Sizing     SizingConfig     `mapstructure:"sizing" validate:"required"`
	Allocation AllocationConfig `mapstructure:"allocation" validate:"required"`
	Backtest   BacktestConfig   `mapstructure:"backtest" validate:"required"`
	MonteCarlo MonteCarloConfig `mapstructure:"monte_carlo" validate:"required"`
	Scanner    ScannerConfig    `mapstructure:"scanner" validate:"required"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Schedule   ScheduleConfig   `mapstructure:"schedule"`
	Features   FeaturesConfig   `mapstructure:"features"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration. Host empty means no database.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// SecretsConfig controls the AWS Secrets Manager overlay
type SecretsConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Region     string `mapstructure:"region"`
	SecretName string `mapstructure:"secret_name"`
}

// OracleConfig selects and tunes the probability oracle
type OracleConfig struct {
	Kind                  string  `mapstructure:"kind" validate:"required,oneof=frequency http static"`
	URL                   string  `mapstructure:"url" validate:"omitempty,url"`
	APIKey                string  `mapstructure:"api_key"`
	PredictionsPath       string  `mapstructure:"predictions_path"`
	RequestTimeoutSeconds int     `mapstructure:"request_timeout_seconds" validate:"gt=0"`
	RetryAttempts         int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond     float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	CacheTTLSeconds       int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	Smoothing             float64 `mapstructure:"smoothing" validate:"gte=0"`
}

// DataConfig locates the historical draw source
type DataConfig struct {
	Source string `mapstructure:"source" validate:"omitempty,oneof=json http postgres"`
	Path   string `mapstructure:"path"`
	URL    string `mapstructure:"url" validate:"omitempty,url"`
}

// BettingConfig holds ticket economics and per-period stake budget
type BettingConfig struct {
	TicketPrice int64             `mapstructure:"ticket_price" validate:"required,gt=0"`
	NumBets     int               `mapstructure:"num_bets" validate:"required,gt=0"`
	TopK        int               `mapstructure:"top_k" validate:"required,min=1,max=10"`
	StakeMode   string            `mapstructure:"stake_mode" validate:"required,stakemode"`
	Prizes      models.PrizeTable `mapstructure:"prizes" validate:"required"`
}

// GateConfig selects the bet/skip decision rule
type GateConfig struct {
	Mode       string  `mapstructure:"mode" validate:"required,gatemode"`
	Threshold  float64 `mapstructure:"threshold" validate:"gte=0"`
	Percentile float64 `mapstructure:"percentile" validate:"gt=0,lt=1"`
	Cut        string  `mapstructure:"cut" validate:"required,cutmode"`
	Lookback   int     `mapstructure:"lookback" validate:"gte=0"`
	MinHistory int     `mapstructure:"min_history" validate:"gte=0"`
}

// SizingConfig tunes the fractional Kelly position sizer
type SizingConfig struct {
	KellyMultiplier  float64 `mapstructure:"kelly_multiplier" validate:"gt=0,lte=1"`
	MaxRiskFraction  float64 `mapstructure:"max_risk_fraction" validate:"gt=0,lte=1"`
	MinBet           int64   `mapstructure:"min_bet" validate:"gt=0"`
	MaxBet           int64   `mapstructure:"max_bet" validate:"gtefield=MinBet"`
	InitialWinRate   float64 `mapstructure:"initial_win_rate" validate:"gte=0,lte=1"`
	HistoryWeight    float64 `mapstructure:"history_weight" validate:"gte=0,lte=1"`
	ConfidenceWeight float64 `mapstructure:"confidence_weight" validate:"gte=0,lte=1"`
}

// AllocationConfig tunes how the stake budget is spread over ranked combinations
type AllocationConfig struct {
	DecayRate      float64 `mapstructure:"decay_rate" validate:"gt=0,lte=1"`
	SelectFraction float64 `mapstructure:"select_fraction" validate:"gt=0,lte=1"`
	MinSelect      int     `mapstructure:"min_select" validate:"gt=0"`
}

// BacktestConfig represents walk-forward backtest configuration
type BacktestConfig struct {
	WindowSize     int    `mapstructure:"window_size" validate:"required,gt=0"`
	InitialCapital int64  `mapstructure:"initial_capital" validate:"required,gt=0"`
	TestPeriods    int    `mapstructure:"test_periods" validate:"gte=0"`
	PeriodsPerYear int    `mapstructure:"periods_per_year" validate:"required,gt=0"`
	SegmentSize    int    `mapstructure:"segment_size" validate:"gte=0"`
	OutputPath     string `mapstructure:"output_path"`
	ExportEnabled  bool   `mapstructure:"export_enabled"`
}

// MonteCarloConfig controls the random baseline
type MonteCarloConfig struct {
	Trials          int   `mapstructure:"trials" validate:"required,gt=0"`
	Seed            int64 `mapstructure:"seed"`
	Workers         int   `mapstructure:"workers" validate:"gte=0"`
	MatchBetPeriods bool  `mapstructure:"match_bet_periods"`
}

// ScannerConfig controls the fixed-threshold sweep
type ScannerConfig struct {
	Min     float64 `mapstructure:"min"`
	Max     float64 `mapstructure:"max"`
	Step    float64 `mapstructure:"step" validate:"gt=0"`
	Workers int     `mapstructure:"workers" validate:"gte=0"`
}

// MetricsConfig represents metrics and health endpoint configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Path    string `mapstructure:"path"`
}

// ScheduleConfig represents the cron schedule for periodic evaluation
type ScheduleConfig struct {
	Evaluation string `mapstructure:"evaluation"`
	// MaxStalenessMinutes marks serve not ready when the last good evaluation is older; 0 disables
	MaxStalenessMinutes int `mapstructure:"max_staleness_minutes" validate:"gte=0"`
}

// FeaturesConfig selects and reweights the opportunity score features
type FeaturesConfig struct {
	Registry string             `mapstructure:"registry" validate:"omitempty,oneof=full model_only"`
	Weights  map[string]float64 `mapstructure:"weights"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// HasDatabase reports whether a database connection is configured
func (c *Config) HasDatabase() bool {
	return c.Database.Host != ""
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// OracleTimeout returns the per-request oracle timeout
func (c *Config) OracleTimeout() time.Duration {
	return time.Duration(c.Oracle.RequestTimeoutSeconds) * time.Second
}

// OracleCacheTTL returns the prediction cache TTL; zero disables caching
func (c *Config) OracleCacheTTL() time.Duration {
	return time.Duration(c.Oracle.CacheTTLSeconds) * time.Second
}
