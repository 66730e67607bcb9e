// Package cli provides common initialization shared by cmd/tally and
// cmd/tally-worker: logging, .env loading, config and the session store.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"tally/internal/backend"
	"tally/internal/config"
	applog "tally/internal/log"
)

// SetupLogger initializes structured logging with default settings and
// installs it as the process default.
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

// LoadAndValidateConfig loads configuration and validates it. Returns
// the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// InitStore builds the session store selected by the config. Returns
// the store result or exits the process on failure.
func InitStore(ctx context.Context, logger *applog.Logger, cfg *config.Config) *backend.Result {
	storeCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid store configuration", applog.FieldError, err)
		os.Exit(1)
	}
	if err := storeCfg.Validate(); err != nil {
		logger.Error("Invalid store configuration", applog.FieldError, err)
		os.Exit(1)
	}

	result, err := backend.NewFactory(logger).CreateStore(ctx, storeCfg)
	if err != nil {
		logger.Error("Failed to initialize session store",
			applog.FieldError, err,
			applog.FieldBackend, cfg.KVBackend)
		os.Exit(1)
	}
	return result
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext(logger *applog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, cancel
}
