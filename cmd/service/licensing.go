package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients/acl"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients/resilience"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/handlers"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/storage"
	"github.com/jsamuelsen/licensing-mesh/internal/app"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

const licensingPort = 8080

func licensingCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "licensing",
		Short: "Run the licensing service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLicensing(cmd, flags)
		},
	}
}

func runLicensing(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()

	p, err := bootstrap(ctx, flags, serviceDefaults{
		name:        "licensingservice",
		port:        licensingPort,
		storagePath: "./data/licensingservice",
	})
	if err != nil {
		return err
	}
	defer p.shutdown()

	store, err := p.openStorage(ctx)
	if err != nil {
		return err
	}

	dispatcher, err := p.organizationDispatcher()
	if err != nil {
		return err
	}

	metrics, err := resilience.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering resilience metrics: %w", err)
	}

	enrich := resilience.NewCommand[domain.License](
		resilience.ConfigFrom(app.EnrichmentCommandName, p.cfg.Resilience.Enrichment),
		resilience.WithLogger(p.logger),
		resilience.WithMetrics(metrics),
	)

	service := app.NewLicenseService(app.LicenseServiceConfig{
		Licenses:            storage.NewLicenseRepository(store),
		Dispatcher:          dispatcher,
		OrganizationService: p.cfg.Services.Organization.ServiceID,
		Enrichment:          enrich,
		Logger:              p.logger,
	})

	return p.serve(ctx, func(engine *gin.Engine) {
		http.SetupRouter(engine, http.RouterConfig{
			Logger:         p.logger,
			AppConfig:      &p.cfg.App,
			HealthHandler:  p.healthHandler(),
			LicenseHandler: handlers.NewLicenseHandler(service),
			Timeout:        http.DefaultRequestTimeout,
		})
	})
}

// organizationDispatcher builds one client per strategy: a static base URL,
// a directory-resolved declarative client and an explicit discovery client.
func (p *process) organizationDispatcher() (*acl.OrganizationDispatcher, error) {
	org := p.cfg.Services.Organization

	newClient := func(baseURL string, resolver clients.Resolver) (*clients.Client, error) {
		c, err := clients.New(&clients.Config{
			BaseURL:     baseURL,
			Resolver:    resolver,
			ServiceName: org.ServiceID,
			Timeout:     p.cfg.Client.Timeout,
			Retry:       p.cfg.Client.Retry,
			Transport:   p.cfg.Client.Transport,
			Logger:      p.logger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating %s client: %w", org.Name, err)
		}
		return c, nil
	}

	restClient, err := newClient(org.BaseURL, nil)
	if err != nil {
		return nil, err
	}

	declarativeClient, err := newClient("", clients.NewDirectoryResolver(p.directory, org.ServiceID))
	if err != nil {
		return nil, err
	}

	discoveryClient, err := newClient("", nil)
	if err != nil {
		return nil, err
	}

	discoveryOrgs := acl.NewDiscoveryOrganizationClient(discoveryClient, p.directory)

	// Readiness reports whether the organization service is discoverable
	if err := p.health.RegisterNonCritical(discoveryOrgs); err != nil {
		return nil, fmt.Errorf("registering organization health check: %w", err)
	}

	return acl.NewOrganizationDispatcher(acl.OrganizationDispatcherConfig{
		Rest:        acl.NewRestOrganizationClient(restClient),
		Declarative: acl.NewDeclarativeOrganizationClient(declarativeClient),
		Discovery:   discoveryOrgs,
		Logger:      p.logger,
	}), nil
}
