package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/discovery"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/handlers"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/storage"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/telemetry"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// serviceDefaults are the per-process defaults layered under config files.
type serviceDefaults struct {
	name        string
	port        int
	storagePath string
}

func (d serviceDefaults) values() map[string]any {
	v := map[string]any{
		"app.name":    d.name,
		"server.port": d.port,
	}
	if d.storagePath != "" {
		v["storage.path"] = d.storagePath
	}
	return v
}

// process holds what every sub-command needs: configuration, logging,
// telemetry, health checks and the service directory.
type process struct {
	cfg       *config.Config
	logger    *slog.Logger
	health    *ports.DefaultHealthRegistry
	directory discovery.Directory

	closers []func(context.Context) error
}

// bootstrap loads and validates configuration and starts the shared
// infrastructure. The caller must call shutdown.
func bootstrap(ctx context.Context, flags *globalFlags, defaults serviceDefaults) (*process, error) {
	// 1. Load and validate configuration (fail fast)
	cfg, err := config.Load(flags.profile,
		config.WithDefaults(defaults.values()),
		config.WithDir(flags.configDir),
	)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// 2. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	p := &process{
		cfg:    cfg,
		logger: logger,
		health: ports.NewHealthRegistry(),
	}

	// 3. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	p.onShutdown(telProvider.Shutdown)

	// 4. Connect the service directory
	dir, err := discovery.New(ctx, cfg.Directory, logger)
	if err != nil {
		p.shutdown()
		return nil, fmt.Errorf("creating service directory: %w", err)
	}
	p.directory = dir
	p.onShutdown(func(context.Context) error { return dir.Close() })

	if err := p.health.Register(dir); err != nil {
		p.shutdown()
		return nil, fmt.Errorf("registering directory health check: %w", err)
	}

	return p, nil
}

// openStorage opens and seeds the record store and registers its health check.
func (p *process) openStorage(ctx context.Context) (*storage.Store, error) {
	store, err := storage.Open(p.cfg.Storage, p.logger)
	if err != nil {
		return nil, fmt.Errorf("opening storage: %w", err)
	}
	p.onShutdown(func(context.Context) error { return store.Close() })

	if err := storage.Seed(ctx, store, p.cfg.Storage.Seed); err != nil {
		return nil, fmt.Errorf("seeding storage: %w", err)
	}

	if err := p.health.Register(store); err != nil {
		return nil, fmt.Errorf("registering storage health check: %w", err)
	}

	return store, nil
}

func (p *process) healthHandler() *handlers.HealthHandler {
	return handlers.NewHealthHandler(p.health, handlers.NewBuildInfo(p.cfg.App.Name, Version, Commit, BuildTime))
}

// onShutdown queues a cleanup step. Steps run in reverse order.
func (p *process) onShutdown(fn func(context.Context) error) {
	p.closers = append(p.closers, fn)
}

func (p *process) shutdown() {
	timeout := 10 * time.Second
	if p.cfg != nil && p.cfg.Server.ShutdownTimeout > 0 {
		timeout = p.cfg.Server.ShutdownTimeout
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](ctx); err != nil {
			p.logger.Error("shutdown step failed", slog.Any("error", err))
		}
	}
}

// serve runs the HTTP server and, when enabled, the directory registration
// heartbeat until ctx ends or one of them fails.
func (p *process) serve(ctx context.Context, setup func(*gin.Engine)) error {
	server := http.New(&p.cfg.Server, p.logger)
	setup(server.Engine())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		serverErr := server.Start()

		select {
		case err, ok := <-serverErr:
			if ok && err != nil {
				return err
			}
			return nil
		case <-gctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), p.cfg.Server.ShutdownTimeout)
		defer cancel()

		p.logger.Info("initiating graceful shutdown",
			slog.Duration("timeout", p.cfg.Server.ShutdownTimeout),
		)

		return server.Shutdown(shutdownCtx)
	})

	if reg := p.cfg.Directory.Registration; reg.Enabled {
		self := ports.ServiceInstance{
			ServiceName: p.cfg.App.Name,
			InstanceID:  p.cfg.App.Name + "-" + uuid.NewString(),
			Host:        reg.Host,
			Port:        p.cfg.Server.Port,
		}
		registrar := discovery.NewRegistrar(p.directory, self, reg.HeartbeatInterval, p.logger)

		g.Go(func() error {
			return registrar.Run(gctx)
		})
	}

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	p.logger.Info("shutdown complete")

	return nil
}
