// Package discovery provides service directory adapters: a static in-memory
// directory for single-host deployments and a Redis-backed directory shared
// by every process of a deployment.
package discovery

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strconv"
	"strings"

	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// healthCheckName is the name both directories report to the health registry.
const healthCheckName = "directory"

// Directory is a service directory that can report its health and release
// its resources.
type Directory interface {
	ports.ServiceDirectory
	ports.HealthChecker
	Close() error
}

// New builds the directory selected by cfg.Backend.
func New(ctx context.Context, cfg config.DirectoryConfig, logger *slog.Logger) (Directory, error) {
	switch cfg.Backend {
	case config.DirectoryBackendRedis:
		return NewRedisDirectory(ctx, cfg.Redis, logger)
	case config.DirectoryBackendStatic, "":
		return NewStaticDirectory(StaticInstances(cfg.Instances)...), nil
	default:
		return nil, fmt.Errorf("unknown directory backend %q", cfg.Backend)
	}
}

// StaticInstances converts configured entries to service instances.
// Entries without an instance id are named after their address.
func StaticInstances(entries []config.StaticInstanceConfig) []ports.ServiceInstance {
	out := make([]ports.ServiceInstance, 0, len(entries))

	for _, e := range entries {
		id := e.InstanceID
		if id == "" {
			id = e.Service + "@" + net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
		}

		out = append(out, ports.ServiceInstance{
			ServiceName: e.Service,
			InstanceID:  id,
			Host:        e.Host,
			Port:        e.Port,
		})
	}

	return out
}

// sortInstances orders instances by id so lookups are deterministic.
func sortInstances(instances []ports.ServiceInstance) {
	slices.SortFunc(instances, func(a, b ports.ServiceInstance) int {
		return strings.Compare(a.InstanceID, b.InstanceID)
	})
}
