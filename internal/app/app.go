// Package app wires the component runtime together for one job: logger,
// registry and modules, scene description, render run and archive
// save/restore.
package app

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/lumengo/internal/comp"
)

// App encapsulates the application's dependencies, configuration, and
// lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	reg    *comp.Registry
	config *Config
}

// New constructs an App with an isolated logger and a registry populated
// from the given modules (the statically linked core set when none are
// passed). Registration failures are real errors — a duplicate type key
// means two modules collide — and abort startup.
func New(outW io.Writer, cfg *Config, modules ...comp.Module) (*App, error) {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	reg := comp.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		if err := mod.Register(reg); err != nil {
			return nil, fmt.Errorf("register module: %w", err)
		}
	}
	logger.Debug("All component modules registered.", "count", len(modules))

	return &App{
		outW:   outW,
		logger: logger,
		reg:    reg,
		config: cfg,
	}, nil
}

// Registry returns the application's registry. This is primarily for
// testing and binding layers.
func (a *App) Registry() *comp.Registry {
	return a.reg
}
