// Package config provides configuration management for the digit-edge backtester.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

var customTags = []struct {
	tag string
	fn  validator.Func
}{
	{"environment", validateEnvironment},
	{"loglevel", validateLogLevel},
	{"gatemode", validateGateMode},
	{"cutmode", validateCutMode},
	{"stakemode", validateStakeMode},
}

// NewValidator creates a new validator with custom validation functions.
// It panics if a tag cannot be registered.
func NewValidator() *CustomValidator {
	v := validator.New()
	for _, ct := range customTags {
		if err := v.RegisterValidation(ct.tag, ct.fn); err != nil {
			panic(fmt.Sprintf("config: register %q validation: %v", ct.tag, err))
		}
	}
	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	cv := NewValidator()
	return cv.Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	err := cv.validator.Struct(cfg)
	if err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	if err := validateCrossField(cfg); err != nil {
		return err
	}

	return nil
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateGateMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "fixed", "percentile":
		return true
	default:
		return false
	}
}

func validateCutMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "window", "expanding", "rolling":
		return true
	default:
		return false
	}
}

func validateStakeMode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "fixed", "kelly":
		return true
	default:
		return false
	}
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	if cfg.Scanner.Min > cfg.Scanner.Max {
		return fmt.Errorf("scanner min (%v) must not exceed max (%v)", cfg.Scanner.Min, cfg.Scanner.Max)
	}

	if cfg.Gate.Mode == "percentile" && cfg.Gate.Cut == "rolling" && cfg.Gate.Lookback < 1 {
		return fmt.Errorf("rolling percentile cut requires gate.lookback > 0")
	}

	if cfg.Oracle.Kind == "http" && cfg.Oracle.URL == "" {
		return fmt.Errorf("oracle.url is required for the http oracle")
	}
	if cfg.Oracle.Kind == "static" && cfg.Oracle.PredictionsPath == "" {
		return fmt.Errorf("oracle.predictions_path is required for the static oracle")
	}

	if cfg.Secrets.Enabled && (cfg.Secrets.Region == "" || cfg.Secrets.SecretName == "") {
		return fmt.Errorf("secrets overlay requires region and secret_name")
	}

	if cfg.Data.Source == "http" && cfg.Data.URL == "" {
		return fmt.Errorf("data.url is required for the http draw source")
	}

	if cfg.Data.Source == "postgres" && !cfg.HasDatabase() {
		return fmt.Errorf("postgres data source requires database.host")
	}

	if w := cfg.Sizing.HistoryWeight + cfg.Sizing.ConfidenceWeight; w > 1+1e-9 {
		return fmt.Errorf("sizing history_weight + confidence_weight must not exceed 1, got %v", w)
	}

	if cfg.IsProduction() && cfg.HasDatabase() && cfg.Database.SSLMode == "disable" {
		return fmt.Errorf("production environment requires SSL mode to be 'require' or 'verify-full'")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte", "gtefield":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "gatemode":
			fmt.Fprintf(&b, "- Field '%s' must be one of: fixed, percentile\n", field)
		case "cutmode":
			fmt.Fprintf(&b, "- Field '%s' must be one of: window, expanding, rolling\n", field)
		case "stakemode":
			fmt.Fprintf(&b, "- Field '%s' must be one of: fixed, kelly\n", field)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}
