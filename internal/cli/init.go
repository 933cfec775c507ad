// Package cli provides common initialization utilities for the server
// binary: logging setup, .env loading, and config validation.
package cli

import (
	"log/slog"

	"github.com/joho/godotenv"

	"expensetracker/internal/config"
	applog "expensetracker/internal/log"
)

// SetupLogger initializes structured logging with default settings and
// sets it as the process default.
func SetupLogger() *applog.Logger {
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development. Errors are
// ignored silently as the file is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it, returning
// the validation error for the caller to act on.
func LoadAndValidateConfig(logger *slog.Logger) (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		return nil, err
	}
	return cfg, nil
}
