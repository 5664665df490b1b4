package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/vk/taskflowgo/internal/ctxlog"
	"github.com/vk/taskflowgo/internal/execctx"
	"github.com/vk/taskflowgo/internal/settings"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	flattener *execctx.Flattener
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger. A settings
// file that cannot be loaded is a fatal startup error.
func NewApp(outW io.Writer, config *Config) *App {
	logger := newLogger(config.LogLevel, config.LogFormat, os.Stderr)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	var provider execctx.SupplementalProvider
	if config.SettingsPath != "" {
		loaded, err := settings.Load(ctx, config.SettingsPath)
		if err != nil {
			panic(fmt.Errorf("failed to load settings: %w", err))
		}
		provider = loaded
		logger.Debug("Settings loaded.", "path", config.SettingsPath)
	}

	return &App{
		outW:      outW,
		logger:    logger,
		config:    config,
		flattener: execctx.NewFlattener(provider),
	}
}

// Flattener returns the app's flattener. This is primarily for testing.
func (a *App) Flattener() *execctx.Flattener {
	return a.flattener
}
