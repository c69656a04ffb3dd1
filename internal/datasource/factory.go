package datasource

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/digit-edge/internal/config"
)

// NewDrawSource creates the file or HTTP source named by configuration.
// The postgres source is served by the repository package instead.
func NewDrawSource(cfg config.DataConfig, logger *logrus.Logger) (DrawSource, error) {
	switch cfg.Source {
	case "json", "":
		if cfg.Path == "" {
			return nil, fmt.Errorf("data.path is required for the json source")
		}
		return JSONFileSource{Path: cfg.Path}, nil
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("data.url is required for the http source")
		}
		return NewHTTPSource(cfg.URL, DefaultHTTPClientConfig(), logger), nil
	default:
		return nil, fmt.Errorf("unknown data source: %s", cfg.Source)
	}
}
