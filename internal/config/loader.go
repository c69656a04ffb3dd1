// Package config provides configuration management for the digit-edge backtester.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "DIGIT_EDGE"

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for every option.
// A missing file is not an error; defaults and environment variables still apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v := newViper()
	SetDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// SetDefaults registers the default for every recognised option
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "digit-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("oracle.kind", "frequency")
	v.SetDefault("oracle.request_timeout_seconds", 10)
	v.SetDefault("oracle.retry_attempts", 3)
	v.SetDefault("oracle.requests_per_second", 20)
	v.SetDefault("oracle.cache_ttl_seconds", 3600)
	v.SetDefault("oracle.smoothing", 1)

	v.SetDefault("data.source", "json")
	v.SetDefault("data.path", "data/draws.json")

	v.SetDefault("betting.ticket_price", 2)
	v.SetDefault("betting.num_bets", 100)
	v.SetDefault("betting.top_k", 10)
	v.SetDefault("betting.stake_mode", "fixed")
	v.SetDefault("betting.prizes.group3", 346)
	v.SetDefault("betting.prizes.group6", 173)
	v.SetDefault("betting.prizes.leopard", 1040)

	v.SetDefault("gate.mode", "fixed")
	v.SetDefault("gate.threshold", 58.45)
	v.SetDefault("gate.percentile", 0.90)
	v.SetDefault("gate.cut", "window")
	v.SetDefault("gate.lookback", 100)
	v.SetDefault("gate.min_history", 20)

	v.SetDefault("sizing.kelly_multiplier", 0.25)
	v.SetDefault("sizing.max_risk_fraction", 0.05)
	v.SetDefault("sizing.min_bet", 10)
	v.SetDefault("sizing.max_bet", 500)
	v.SetDefault("sizing.initial_win_rate", 0.1)
	v.SetDefault("sizing.history_weight", 0.4)
	v.SetDefault("sizing.confidence_weight", 0.6)

	v.SetDefault("allocation.decay_rate", 0.85)
	v.SetDefault("allocation.select_fraction", 0.25)
	v.SetDefault("allocation.min_select", 15)

	v.SetDefault("backtest.window_size", 30)
	v.SetDefault("backtest.initial_capital", 10000)
	v.SetDefault("backtest.test_periods", 0)
	v.SetDefault("backtest.periods_per_year", 358)
	v.SetDefault("backtest.segment_size", 50)
	v.SetDefault("backtest.output_path", "results")

	v.SetDefault("monte_carlo.trials", 1000)
	v.SetDefault("monte_carlo.seed", 42)
	v.SetDefault("monte_carlo.workers", 4)

	v.SetDefault("scanner.min", 50)
	v.SetDefault("scanner.max", 75)
	v.SetDefault("scanner.step", 2)
	v.SetDefault("scanner.workers", 4)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("schedule.evaluation", "0 30 21 * * *")
	v.SetDefault("schedule.max_staleness_minutes", 1560)
	v.SetDefault("features.registry", "full")
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}
