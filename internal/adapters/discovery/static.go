package discovery

import (
	"context"
	"slices"
	"sync"

	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// StaticDirectory is an in-memory directory. It is seeded from configuration
// and accepts registrations from the processes sharing it.
type StaticDirectory struct {
	mu       sync.RWMutex
	services map[string]map[string]ports.ServiceInstance
}

// NewStaticDirectory creates a directory holding the given instances.
func NewStaticDirectory(instances ...ports.ServiceInstance) *StaticDirectory {
	d := &StaticDirectory{services: make(map[string]map[string]ports.ServiceInstance)}

	for _, inst := range instances {
		d.put(inst)
	}

	return d
}

func (d *StaticDirectory) put(inst ports.ServiceInstance) {
	byID, ok := d.services[inst.ServiceName]
	if !ok {
		byID = make(map[string]ports.ServiceInstance)
		d.services[inst.ServiceName] = byID
	}
	byID[inst.InstanceID] = inst
}

// Register adds or replaces an instance.
func (d *StaticDirectory) Register(_ context.Context, inst ports.ServiceInstance) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.put(inst)

	return nil
}

// Deregister removes an instance. Unknown instances are ignored.
func (d *StaticDirectory) Deregister(_ context.Context, inst ports.ServiceInstance) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if byID, ok := d.services[inst.ServiceName]; ok {
		delete(byID, inst.InstanceID)
		if len(byID) == 0 {
			delete(d.services, inst.ServiceName)
		}
	}

	return nil
}

// Lookup returns a copy of the instances of a service ordered by instance id.
func (d *StaticDirectory) Lookup(_ context.Context, serviceName string) ([]ports.ServiceInstance, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	byID := d.services[serviceName]
	out := make([]ports.ServiceInstance, 0, len(byID))
	for _, inst := range byID {
		out = append(out, inst)
	}

	sortInstances(out)

	return out, nil
}

// Services returns the names of all services with at least one instance.
func (d *StaticDirectory) Services() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.services))
	for name := range d.services {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// Name implements ports.HealthChecker.
func (d *StaticDirectory) Name() string { return healthCheckName }

// Check implements ports.HealthChecker. An in-memory directory is always healthy.
func (d *StaticDirectory) Check(context.Context) error { return nil }

// Close implements Directory.
func (d *StaticDirectory) Close() error { return nil }
