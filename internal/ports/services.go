// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
package ports

import (
	"context"
	"fmt"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

// LicenseRepository is the key-value store of licenses.
type LicenseRepository interface {
	// GetByID retrieves a license by its identifier.
	// Returns domain.ErrNotFound if the license does not exist.
	GetByID(ctx context.Context, licenseID string) (*domain.License, error)

	// ListAll returns every stored license.
	ListAll(ctx context.Context) ([]domain.License, error)

	// ListByOrganization returns the licenses owned by an organization.
	// An organization without licenses yields an empty slice, not an error.
	ListByOrganization(ctx context.Context, organizationID string) ([]domain.License, error)

	// Save creates or replaces a license.
	Save(ctx context.Context, license *domain.License) error
}

// OrganizationRepository is the key-value store of organizations.
type OrganizationRepository interface {
	// GetByID retrieves an organization by its identifier.
	// Returns domain.ErrNotFound if the organization does not exist.
	GetByID(ctx context.Context, organizationID string) (*domain.Organization, error)

	// ListAll returns every stored organization.
	ListAll(ctx context.Context) ([]domain.Organization, error)

	// Save creates or replaces an organization.
	Save(ctx context.Context, org *domain.Organization) error
}

// OrganizationDispatcher fetches organizations from the organization service
// through a caller-selected transport strategy.
//
// Key considerations:
//   - The correlation id held by ctx is propagated on every strategy
//   - Returns domain.ErrNoInstancesAvailable when discovery finds no instance
//   - Returns domain.ErrNotFound when the organization does not exist
//   - Returns domain.ErrUnavailable for any other downstream failure
type OrganizationDispatcher interface {
	Fetch(ctx context.Context, serviceName, organizationID string, strategy domain.DispatchStrategy) (*domain.Organization, error)
}

// ServiceInstance is one live network address of a logical service.
type ServiceInstance struct {
	ServiceName string `json:"serviceName"`
	InstanceID  string `json:"instanceId"`
	Host        string `json:"host"`
	Port        int    `json:"port"`
}

// URI returns the base URI of the instance, e.g. "http://10.0.0.5:8080".
func (i ServiceInstance) URI() string {
	return fmt.Sprintf("http://%s:%d", i.Host, i.Port)
}

// ServiceDirectory maps logical service names to live instances.
// Membership can change between calls; callers must not cache lookups.
type ServiceDirectory interface {
	// Register adds or refreshes an instance of a service.
	Register(ctx context.Context, instance ServiceInstance) error

	// Deregister removes an instance of a service.
	Deregister(ctx context.Context, instance ServiceInstance) error

	// Lookup returns the ordered list of live instances of a service.
	// An empty list means no healthy instance; it is not an error.
	Lookup(ctx context.Context, serviceName string) ([]ServiceInstance, error)
}
