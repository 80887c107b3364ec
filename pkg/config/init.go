package config

import (
	"fmt"

	"github.com/finbook-app/finbook/pkg/logger"
)

// Initialize loads configuration and sets up the global logger
func Initialize() (*Config, *logger.Logger, error) {
	cfg, err := Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Log.Level),
		Environment: cfg.Log.Environment,
		Encoding:    cfg.Log.Encoding,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create logger: %w", err)
	}

	logger.SetGlobalLogger(appLogger)

	appLogger.WithFields(map[string]interface{}{
		"environment":  cfg.Server.Environment,
		"server_port":  cfg.Server.Port,
		"log_level":    cfg.Log.Level,
		"log_encoding": cfg.Log.Encoding,
	}).Info("Configuration and logger initialized")

	return cfg, appLogger, nil
}
