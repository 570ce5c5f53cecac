package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jonathan/portal-planner/internal/config"
	"github.com/jonathan/portal-planner/internal/logging"
)

// loadRuntime reads the configuration and builds the logger shared by every command.
func loadRuntime(configPath string) (config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return cfg, logger, nil
}
