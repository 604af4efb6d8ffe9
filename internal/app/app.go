package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/blockgridgo/internal/config"
	"github.com/specialistvlad/blockgridgo/internal/ctxlog"
	"github.com/specialistvlad/blockgridgo/internal/metrics"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW       io.Writer
	logger     *slog.Logger
	config     *Config
	model      *config.Model
	metrics    *metrics.Sink
	httpServer *http.Server
	results    []Result
}

// NewApp is the constructor for the main application. It loads and resolves
// the script with the given loaders and applies the command-line overrides.
func NewApp(outW io.Writer, cfg *Config, loaders ...config.Loader) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	model, err := config.Load(ctx, loaders, cfg.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load script: %w", err)
	}
	if cfg.StepDelay != nil {
		if model.Rules == nil {
			r := config.DefaultRules()
			model.Rules = &r
		}
		model.Rules.StepDelay = *cfg.StepDelay
	}
	if cfg.Seed != nil {
		model.Puzzle = &config.Puzzle{Seed: cfg.Seed}
	}
	if err := model.Resolve(); err != nil {
		return nil, fmt.Errorf("invalid script: %w", err)
	}
	if cfg.Privileged {
		model.Player.Privileged = true
	}
	logger.Debug("Script loaded and resolved.", "programs", len(model.Programs), "privileged", model.Player.Privileged)

	return &App{
		outW:    outW,
		logger:  logger,
		config:  cfg,
		model:   model,
		metrics: metrics.New(nil),
	}, nil
}

// Model returns the resolved script. This is primarily for testing.
func (a *App) Model() *config.Model {
	return a.model
}

// Results returns the outcome of every program played so far.
func (a *App) Results() []Result {
	return a.results
}
