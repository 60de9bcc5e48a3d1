package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/vigilgo/internal/ctxlog"
	"github.com/vk/vigilgo/internal/registry"
	"github.com/vk/vigilgo/internal/scenario"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	registry *registry.Registry
	scenario *scenario.Scenario
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry,
// with the scenario loaded and every runner reference resolved.
func NewApp(outW io.Writer, cfg *Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All runner modules registered.", "count", len(modules))

	sc, err := scenario.Load(ctx, cfg.ScenarioPath)
	if err != nil {
		// A failure to load the scenario is a fatal startup error.
		panic(fmt.Errorf("failed to load scenario: %w", err))
	}
	logger.Debug("Scenario loaded and compiled.")

	if err := validateRunners(reg, sc); err != nil {
		// A scenario referencing an unregistered runner is a configuration
		// mismatch between code and config, caught before execution.
		panic(err)
	}
	logger.Debug("Scenario runner references validated.")

	return &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		registry: reg,
		scenario: sc,
	}
}

// Scenario returns the loaded scenario. This is primarily for testing.
func (a *App) Scenario() *scenario.Scenario {
	return a.scenario
}

// validateRunners checks every runner reference of the scenario against the
// registry so unknown names fail at startup, never mid-run.
func validateRunners(reg *registry.Registry, sc *scenario.Scenario) error {
	if _, err := reg.Task(sc.Task.Runner); err != nil {
		return fmt.Errorf("task %q: %w", sc.Task.Name, err)
	}
	for _, src := range sc.Sources {
		if _, err := reg.Source(src.Runner); err != nil {
			return fmt.Errorf("source %q: %w", src.Name, err)
		}
	}
	for _, h := range sc.Handlers {
		if _, err := reg.Handler(h.Runner); err != nil {
			return fmt.Errorf("on_violation %q: %w", h.Name, err)
		}
	}
	return nil
}
