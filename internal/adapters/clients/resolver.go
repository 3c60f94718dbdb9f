package clients

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// Resolver picks the base URL of a downstream service for a single request.
type Resolver interface {
	Resolve(ctx context.Context) (string, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context) (string, error)

// Resolve calls f(ctx).
func (f ResolverFunc) Resolve(ctx context.Context) (string, error) {
	return f(ctx)
}

// DirectoryResolver resolves a logical service name through the service
// directory on every call, rotating over the returned instances.
// Addresses are never cached between calls.
type DirectoryResolver struct {
	directory ports.ServiceDirectory
	service   string
	next      atomic.Uint64
}

// NewDirectoryResolver creates a resolver for the named service.
func NewDirectoryResolver(directory ports.ServiceDirectory, service string) *DirectoryResolver {
	return &DirectoryResolver{directory: directory, service: service}
}

// Resolve returns the URI of the next instance of the service.
// Returns a domain.NoInstancesError when the directory has none.
func (r *DirectoryResolver) Resolve(ctx context.Context) (string, error) {
	instances, err := r.directory.Lookup(ctx, r.service)
	if err != nil {
		return "", fmt.Errorf("looking up %s: %w", r.service, err)
	}

	if len(instances) == 0 {
		return "", domain.NewNoInstancesError(r.service)
	}

	i := (r.next.Add(1) - 1) % uint64(len(instances))

	return instances[i].URI(), nil
}
