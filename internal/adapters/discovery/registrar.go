package discovery

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

const deregisterTimeout = 5 * time.Second

// Registrar keeps one instance registered while a service runs.
type Registrar struct {
	directory ports.ServiceDirectory
	instance  ports.ServiceInstance
	interval  time.Duration
	logger    *slog.Logger
}

// NewRegistrar creates a registrar that refreshes inst every interval.
func NewRegistrar(directory ports.ServiceDirectory, inst ports.ServiceInstance, interval time.Duration, logger *slog.Logger) *Registrar {
	if logger == nil {
		logger = slog.Default()
	}

	return &Registrar{
		directory: directory,
		instance:  inst,
		interval:  interval,
		logger: logger.With(
			slog.String("component", "discovery.Registrar"),
			slog.String("service", inst.ServiceName),
			slog.String("instance_id", inst.InstanceID),
		),
	}
}

// Run registers the instance, refreshes it on every tick and deregisters it
// when ctx ends. A failed refresh is logged and retried on the next tick.
// Only the initial registration error is returned.
func (r *Registrar) Run(ctx context.Context) error {
	if err := r.directory.Register(ctx, r.instance); err != nil {
		return err
	}

	r.logger.Info("registered in service directory",
		slog.String("uri", r.instance.URI()),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.deregister()
			return nil
		case <-ticker.C:
			if err := r.directory.Register(ctx, r.instance); err != nil {
				r.logger.Warn("heartbeat failed", slog.Any("error", err))
			}
		}
	}
}

func (r *Registrar) deregister() {
	ctx, cancel := context.WithTimeout(context.Background(), deregisterTimeout)
	defer cancel()

	if err := r.directory.Deregister(ctx, r.instance); err != nil {
		r.logger.Warn("deregistration failed", slog.Any("error", err))
		return
	}

	r.logger.Info("deregistered from service directory")
}
