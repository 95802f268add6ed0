// Package app wires configuration, logging and the transformation engine
// into a runnable unit. Everything stateful lives here; the engine packages
// stay pure.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/radbridge/radbridge/internal/config"
	"github.com/radbridge/radbridge/internal/ctxlog"
)

// Config holds everything an App instance needs to run one transformation.
type Config struct {
	Mode         string
	TemplatePath string
	DICOMPath    string
	HL7Path      string
	ConfigPath   string
	OutPath      string
	LogFormat    string
	LogLevel     string
}

// App encapsulates the application's dependencies and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	bridge *config.Bridge
}

// NewApp constructs the application with its own isolated logger and loaded
// bridge configuration.
func NewApp(outW io.Writer, errW io.Writer, appConfig *Config) (*App, error) {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, errW)

	bridge := config.Default()
	if appConfig.ConfigPath != "" {
		loaded, err := config.Load(appConfig.ConfigPath)
		if err != nil {
			return nil, fmt.Errorf("loading bridge configuration: %w", err)
		}
		bridge = loaded
		logger.Debug("bridge configuration loaded", "path", appConfig.ConfigPath)
	}

	return &App{
		outW:   outW,
		logger: logger,
		bridge: bridge,
	}, nil
}

// Run executes the requested transformation.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	switch appConfig.Mode {
	case "render":
		return a.runRender(ctx, appConfig)
	case "map":
		return a.runMap(ctx, appConfig)
	}
	return fmt.Errorf("unknown mode %q", appConfig.Mode)
}
