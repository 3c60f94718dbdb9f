package acl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

const (
	entityOrganization = "organization"

	// organizationPathTemplate is the organization service lookup route.
	organizationPathTemplate = "/v1/organizations/{organizationId}"
)

// organizationResponse is the organization service's JSON representation.
// This is an internal type - never exposed outside the ACL.
type organizationResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactName  string `json:"contactName"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
}

// translateOrganization validates the external DTO and converts it to the
// domain type.
func translateOrganization(ext *organizationResponse) (*domain.Organization, error) {
	if err := requireField(ext.ID, "id"); err != nil {
		return nil, err
	}

	return &domain.Organization{
		ID:           ext.ID,
		Name:         ext.Name,
		ContactName:  ext.ContactName,
		ContactEmail: ext.ContactEmail,
		ContactPhone: ext.ContactPhone,
	}, nil
}

func organizationPath(organizationID string) string {
	return "/v1/organizations/" + url.PathEscape(organizationID)
}

// RestOrganizationClient calls the organization service at a statically
// configured base URL.
type RestOrganizationClient struct {
	remote remote
}

// NewRestOrganizationClient creates a direct client. The client's BaseURL
// must point at an organization service instance.
func NewRestOrganizationClient(client *clients.Client) *RestOrganizationClient {
	return &RestOrganizationClient{remote: newRemote(client)}
}

// GetOrganization fetches one organization.
func (c *RestOrganizationClient) GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	body, err := c.remote.get(ctx, organizationPath(organizationID), entityOrganization, organizationID)
	if err != nil {
		return nil, err
	}

	ext, err := decode[organizationResponse](body, c.remote.service)
	if err != nil {
		return nil, err
	}

	return translateOrganization(ext)
}

// organizationAPI declares the organization service operations once.
type organizationAPI struct {
	getOrganization Endpoint[organizationResponse]
}

// DeclarativeOrganizationClient calls the organization service through
// typed endpoint declarations. The underlying client resolves an instance
// per call, so the caller never handles addresses.
type DeclarativeOrganizationClient struct {
	api organizationAPI
}

// NewDeclarativeOrganizationClient binds the organization endpoints to
// client, which should carry a clients.DirectoryResolver.
func NewDeclarativeOrganizationClient(client *clients.Client) *DeclarativeOrganizationClient {
	return &DeclarativeOrganizationClient{
		api: organizationAPI{
			getOrganization: NewEndpoint[organizationResponse](client, http.MethodGet,
				organizationPathTemplate, entityOrganization, "organizationId"),
		},
	}
}

// GetOrganization fetches one organization.
func (c *DeclarativeOrganizationClient) GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	ext, err := c.api.getOrganization.Call(ctx, Params{"organizationId": organizationID}, nil)
	if err != nil {
		return nil, err
	}

	return translateOrganization(ext)
}

// DiscoveryOrganizationClient looks the service up in the directory on
// every call and targets the first instance returned.
type DiscoveryOrganizationClient struct {
	remote    remote
	directory ports.ServiceDirectory
}

// NewDiscoveryOrganizationClient creates a discovery client. client needs
// no base URL; requests are sent to absolute instance URLs.
func NewDiscoveryOrganizationClient(client *clients.Client, directory ports.ServiceDirectory) *DiscoveryOrganizationClient {
	return &DiscoveryOrganizationClient{
		remote:    newRemote(client),
		directory: directory,
	}
}

// GetOrganization fetches one organization from the first live instance of
// serviceName. Returns domain.ErrNoInstancesAvailable if there is none.
func (c *DiscoveryOrganizationClient) GetOrganization(ctx context.Context, serviceName, organizationID string) (*domain.Organization, error) {
	instances, err := c.directory.Lookup(ctx, serviceName)
	if err != nil {
		return nil, domain.NewUnavailableError(serviceName, fmt.Sprintf("directory lookup failed: %v", err))
	}

	if len(instances) == 0 {
		return nil, domain.NewNoInstancesError(serviceName)
	}

	target := fmt.Sprintf("%s/v1/organizations/%s", instances[0].URI(), url.PathEscape(organizationID))

	body, err := c.remote.get(ctx, target, entityOrganization, organizationID)
	if err != nil {
		return nil, err
	}

	ext, err := decode[organizationResponse](body, serviceName)
	if err != nil {
		return nil, err
	}

	return translateOrganization(ext)
}

// Name returns the health check name.
// Implements ports.HealthChecker.
func (c *DiscoveryOrganizationClient) Name() string {
	return c.remote.service
}

// Check reports whether the directory lists at least one instance of the
// organization service.
// Implements ports.HealthChecker.
func (c *DiscoveryOrganizationClient) Check(ctx context.Context) error {
	instances, err := c.directory.Lookup(ctx, c.remote.service)
	if err != nil {
		return err
	}

	if len(instances) == 0 {
		return domain.NewNoInstancesError(c.remote.service)
	}

	return nil
}

// OrganizationDispatcherConfig wires the three strategies.
type OrganizationDispatcherConfig struct {
	Rest        *RestOrganizationClient
	Declarative *DeclarativeOrganizationClient
	Discovery   *DiscoveryOrganizationClient
	Logger      *slog.Logger
}

// OrganizationDispatcher routes an organization lookup to the strategy the
// caller selects. Implements ports.OrganizationDispatcher.
type OrganizationDispatcher struct {
	rest        *RestOrganizationClient
	declarative *DeclarativeOrganizationClient
	discovery   *DiscoveryOrganizationClient
	logger      *slog.Logger
}

// NewOrganizationDispatcher creates a dispatcher.
// Panics if any strategy is missing. Defaults logger to slog.Default() if nil.
func NewOrganizationDispatcher(cfg OrganizationDispatcherConfig) *OrganizationDispatcher {
	if cfg.Rest == nil || cfg.Declarative == nil || cfg.Discovery == nil {
		panic("OrganizationDispatcher: all strategies are required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OrganizationDispatcher{
		rest:        cfg.Rest,
		declarative: cfg.Declarative,
		discovery:   cfg.Discovery,
		logger:      logger.With(slog.String("component", "acl.OrganizationDispatcher")),
	}
}

// Fetch retrieves an organization with the chosen strategy. Unknown
// strategies use discovery.
func (d *OrganizationDispatcher) Fetch(ctx context.Context, serviceName, organizationID string, strategy domain.DispatchStrategy) (*domain.Organization, error) {
	d.logger.Log(ctx, logging.LevelTrace, "dispatching organization lookup",
		slog.String("strategy", strategy.String()),
		slog.String("service", serviceName),
		slog.String("organization_id", organizationID),
	)

	switch strategy {
	case domain.DirectClient:
		return d.rest.GetOrganization(ctx, organizationID)
	case domain.DeclarativeClient:
		return d.declarative.GetOrganization(ctx, organizationID)
	default:
		return d.discovery.GetOrganization(ctx, serviceName, organizationID)
	}
}
