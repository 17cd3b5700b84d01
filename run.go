package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"fiber-launcher/admin"
	"fiber-launcher/config"
	"fiber-launcher/launcher"
	"fiber-launcher/logging"
	"fiber-launcher/metrics"
)

// plan is everything resolved from the environment before the child starts.
type plan struct {
	Mode     config.Mode
	Environ  map[string]string
	Config   config.Config
	Settings config.Settings
	Path     string
}

// resolve builds the plan from KEY=value entries. It never fails: problems are
// returned so they can be logged once a logger exists, and defaults are used.
func resolve(entries []string) (plan, []error) {
	var problems []error

	ambient := config.EnvironMap(entries)
	dotenv := config.DotenvPath(config.ModeFromEnviron(ambient))

	environ, err := config.OverlayDotenv(ambient, dotenv)
	if err != nil {
		problems = append(problems, fmt.Errorf("ignoring dotenv file: %w", err))
	}

	// The dotenv file may set NODE_ENV itself.
	mode := config.ModeFromEnviron(environ)

	settings, err := config.LoadSettings(environ)
	if err != nil {
		problems = append(problems, fmt.Errorf("invalid launcher settings, using defaults: %w", err))
		settings = config.DefaultSettings()
	}
	if _, err := zapcore.ParseLevel(settings.LogLevel); err != nil {
		problems = append(problems, fmt.Errorf("invalid log level %q, using %q: %w", settings.LogLevel, config.DefaultSettings().LogLevel, err))
		settings.LogLevel = config.DefaultSettings().LogLevel
	}

	return plan{
		Mode:     mode,
		Environ:  environ,
		Config:   config.LoadConfig(environ, mode),
		Settings: settings,
		Path:     launcher.SelectExecutable(mode),
	}, problems
}

// run launches the child and blocks until it exits. After a spawn failure it
// stays up until ctx is done.
func run(ctx context.Context, logger *zap.Logger, p plan, stdout, stderr zapcore.WriteSyncer) error {
	registry := prometheus.NewRegistry()
	counters := metrics.InitializeMetrics(registry, prometheus.Labels{"service": p.Settings.ServiceName})

	if p.Settings.AdminAddress != "" {
		app := admin.New(logger, registry, admin.NewOriginPolicy(p.Config.Origins()))
		go func() {
			if err := admin.Serve(ctx, logger, app, p.Settings.AdminAddress); err != nil {
				logger.Error("admin server stopped", zap.Error(err))
			}
		}()
	}

	stdoutLogger := logging.NewStreamLogger(stdout)
	stderrLogger := logging.NewStreamLogger(stderr)
	defer func() {
		_ = stdoutLogger.Sync()
		_ = stderrLogger.Sync()
	}()

	l := launcher.New(logger, stdoutLogger, stderrLogger, counters)

	child, err := l.Launch(p.Path, p.Config, p.Environ)
	if err != nil {
		logger.Warn("launcher idle after spawn failure, waiting for shutdown signal")
		<-ctx.Done()
		return nil
	}

	select {
	case <-child.Done():
	case <-ctx.Done():
		logger.Info("launcher stopping, child process is left to the operating system", zap.Int("pid", child.Pid()))
	}
	return nil
}
