package main

import (
	"database/sql"
	"fmt"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/ngmaloney/divevis/internal/api"
	"github.com/ngmaloney/divevis/internal/config"
	"github.com/ngmaloney/divevis/internal/database"
	"github.com/ngmaloney/divevis/internal/history"
	"github.com/ngmaloney/divevis/internal/logging"
	"github.com/ngmaloney/divevis/internal/presets"
)

// env is everything a command needs, built from the config and flags
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	client  *api.HTTPClient
	db      *sql.DB
	presets *presets.Repository
	history *history.Recorder
}

// loadConfig reads the config file and applies the global flag overrides
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.LoadWithFallback(c.String("config"))
	if err != nil {
		return nil, err
	}
	if url := c.String("base-url"); url != "" {
		cfg.Backend.BaseURL = url
	}
	if level := c.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setup builds the environment. Presets from the config are provisioned on
// every start; stored presets are never overwritten.
func setup(c *cli.Context) (*env, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		File:   cfg.Logging.File,
		Format: cfg.Logging.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := database.Open(cfg.Storage.SQLitePath)
	if err != nil {
		logger.Sync()
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		logger:  logger,
		client:  newClient(cfg, logger),
		db:      db,
		presets: presets.NewRepository(db),
		history: history.NewRecorder(db),
	}

	added, err := e.presets.Provision(cfg.Presets)
	if err != nil {
		logger.Warn("Failed to provision presets", zap.Error(err))
	} else if added > 0 {
		logger.Info("Provisioned presets", zap.Int("count", added))
	}

	logger.Debug("Started",
		zap.String("backend", cfg.Backend.BaseURL),
		zap.String("database", cfg.Storage.SQLitePath))
	return e, nil
}

func newClient(cfg *config.Config, logger *zap.Logger) *api.HTTPClient {
	return api.NewHTTPClient(api.Config{
		BaseURL:   cfg.Backend.BaseURL,
		Timeout:   cfg.Backend.Timeout(),
		UserAgent: cfg.Backend.UserAgent,
	}, logger)
}

func (e *env) Close() {
	e.db.Close()
	e.logger.Sync()
}
