// Package app provides the main application struct for centralized dependency management
// and lifecycle control of the pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"llmpipe/config"
	"llmpipe/internal/completion"
	"llmpipe/internal/observability"
	"llmpipe/internal/pipeline"
	"llmpipe/internal/telemetry"
	"llmpipe/internal/toolsource"
)

// App represents the main application with all its dependencies.
type App struct {
	config  *config.Config
	logger  *slog.Logger
	metrics *observability.PrometheusMetrics
	tools   toolsource.Store
	client  *pipeline.Client

	shutdownMu sync.Mutex
	shutdown   bool
}

// Config holds the configuration options for creating an App.
type Config struct {
	// AppConfig holds the loaded application configuration produced by
	// config.Load.
	AppConfig *config.LoadResult

	// Model is the completion host every call is sent to.
	Model completion.Model

	// Logger defaults to slog.Default.
	Logger *slog.Logger

	// Registerer receives the Prometheus collectors when metrics are enabled.
	// Defaults to prometheus.DefaultRegisterer.
	Registerer prometheus.Registerer
}

// New creates a new App with all dependencies initialized.
// The caller must call Shutdown to release resources.
func New(ctx context.Context, cfg Config) (*App, error) {
	if cfg.AppConfig == nil {
		return nil, fmt.Errorf("app config is required")
	}
	if cfg.AppConfig.Config == nil {
		return nil, fmt.Errorf("app config contains nil Config")
	}
	if cfg.Model == nil {
		return nil, fmt.Errorf("model is required")
	}

	appCfg := cfg.AppConfig.Config
	app := &App{
		config: appCfg,
		logger: cfg.Logger,
	}
	if app.logger == nil {
		app.logger = slog.Default()
	}

	var hooks observability.Hooks
	if appCfg.Metrics.Enabled {
		reg := cfg.Registerer
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		metrics, err := observability.NewPrometheusMetrics(reg, appCfg.Metrics.Namespace)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
		app.metrics = metrics
		hooks = metrics.Hooks()
	}

	tools, err := newToolSourceStore(appCfg.ToolSources)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tool sources: %w", err)
	}
	app.tools = tools

	opts := pipeline.Options{
		Tools:     tools,
		Hooks:     hooks,
		Logger:    app.logger,
		Providers: appCfg.Providers,
	}
	if appCfg.Telemetry.Enabled {
		opts.Tracer = telemetry.NewRecorder(telemetry.RecorderConfig{
			Logger:   app.logger,
			Hooks:    hooks,
			LogSpans: appCfg.Telemetry.LogSpans,
		})
		opts.Errors = telemetry.ErrorReporterFunc(func(ctx context.Context, err error) {
			app.logger.ErrorContext(ctx, "telemetry error", "error", err)
		})
	}
	app.client = pipeline.New(cfg.Model, opts)

	app.logStartupInfo(cfg.AppConfig.Path)
	return app, nil
}

func newToolSourceStore(cfg config.ToolSourcesConfig) (toolsource.Store, error) {
	switch cfg.Type {
	case "redis":
		return toolsource.NewRedisStore(toolsource.RedisConfig{
			URL: cfg.Redis.URL,
			Key: cfg.Redis.Key,
			TTL: time.Duration(cfg.Redis.TTL) * time.Second,
		})
	default:
		return toolsource.NewLocalStore(cfg.Local.Path), nil
	}
}

// Client returns the pipeline client.
func (a *App) Client() *pipeline.Client {
	return a.client
}

// ToolSources returns the resolved-tools store.
func (a *App) ToolSources() toolsource.Store {
	return a.tools
}

// Shutdown releases app resources. It is idempotent; after the first call,
// subsequent calls are no-ops.
func (a *App) Shutdown(_ context.Context) error {
	a.shutdownMu.Lock()
	if a.shutdown {
		a.shutdownMu.Unlock()
		return nil
	}
	a.shutdown = true
	a.shutdownMu.Unlock()

	var errs []error
	if a.tools != nil {
		if err := a.tools.Close(); err != nil {
			a.logger.Error("tool sources close error", "error", err)
			errs = append(errs, fmt.Errorf("tool sources close: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("shutdown errors: %w", errors.Join(errs...))
	}
	return nil
}

func (a *App) logStartupInfo(path string) {
	cfg := a.config

	if path != "" {
		a.logger.Info("config loaded", "path", path)
	} else {
		a.logger.Info("no config file found, using defaults and environment")
	}

	if cfg.Metrics.Enabled {
		a.logger.Info("prometheus metrics enabled", "namespace", cfg.Metrics.Namespace)
	} else {
		a.logger.Info("prometheus metrics disabled")
	}

	if cfg.Telemetry.Enabled {
		a.logger.Info("telemetry enabled", "log_spans", cfg.Telemetry.LogSpans)
	} else {
		a.logger.Info("telemetry disabled")
	}

	a.logger.Info("tool sources configured", "type", cfg.ToolSources.Type)
	a.logger.Debug("providers configured", "count", len(cfg.Providers))
}
