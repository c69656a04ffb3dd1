package oracle

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/config"
)

// New builds the configured oracle. Remote and frequency oracles are wrapped in a
// prediction cache when a TTL is configured; replayed predictions are not.
func New(cfg *config.Config, log *logrus.Logger) (Oracle, error) {
	var o Oracle
	switch cfg.Oracle.Kind {
	case "frequency", "":
		o = FrequencyOracle{Smoothing: cfg.Oracle.Smoothing}
	case "http":
		httpCfg := DefaultHTTPConfig(cfg.Oracle.URL)
		httpCfg.APIKey = cfg.Oracle.APIKey
		httpCfg.MaxRetries = cfg.Oracle.RetryAttempts
		httpCfg.RateLimit = cfg.Oracle.RequestsPerSecond
		if timeout := cfg.OracleTimeout(); timeout > 0 {
			httpCfg.Timeout = timeout
		}
		client, err := NewHTTPOracle(httpCfg, log)
		if err != nil {
			return nil, err
		}
		o = client
	case "static":
		static, err := LoadStaticOracle(cfg.Oracle.PredictionsPath)
		if err != nil {
			return nil, err
		}
		return static, nil
	default:
		return nil, fmt.Errorf("unknown oracle kind %q", cfg.Oracle.Kind)
	}

	if ttl := cfg.OracleCacheTTL(); ttl > 0 {
		return NewCachedOracle(o, ttl, log), nil
	}
	return o, nil
}

// OverridePredictions swaps in a replay oracle when a predictions file is given on the command line
func OverridePredictions(current Oracle, path string) (Oracle, error) {
	if path == "" {
		return current, nil
	}
	static, err := LoadStaticOracle(path)
	if err != nil {
		return nil, err
	}
	return static, nil
}
