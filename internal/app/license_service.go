// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
//
// What does NOT belong here:
//   - HTTP specifics (that's adapters)
//   - Key-value access (that's repository adapters)
//   - Core domain logic (that's the domain layer)
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients/resilience"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/logging"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// EnrichmentCommandName names the resilience command guarding organization
// enrichment in logs and metrics.
const EnrichmentCommandName = "license-enrichment"

// LicenseService serves license records and enriches them with the owning
// organization's details fetched from the organization service.
type LicenseService struct {
	licenses      ports.LicenseRepository
	dispatcher    ports.OrganizationDispatcher
	organizations string
	enrich        *resilience.Command[domain.License]
	logger        *slog.Logger
}

// LicenseServiceConfig contains the dependencies of the license service.
type LicenseServiceConfig struct {
	Licenses   ports.LicenseRepository
	Dispatcher ports.OrganizationDispatcher

	// OrganizationService is the logical name of the organization service
	// in the service directory.
	OrganizationService string

	// Enrichment guards the downstream fetch. Defaults to a command with
	// default settings and the enrichment timeout.
	Enrichment *resilience.Command[domain.License]

	Logger *slog.Logger
}

// NewLicenseService creates a license service with the provided dependencies.
func NewLicenseService(cfg LicenseServiceConfig) *LicenseService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enrich := cfg.Enrichment
	if enrich == nil {
		enrich = resilience.NewCommand[domain.License](resilience.Config{
			Name:    EnrichmentCommandName,
			Timeout: config.DefaultEnrichmentTimeout,
		}, resilience.WithLogger(logger))
	}

	return &LicenseService{
		licenses:      cfg.Licenses,
		dispatcher:    cfg.Dispatcher,
		organizations: cfg.OrganizationService,
		enrich:        enrich,
		logger:        logger.With(slog.String("component", "app.LicenseService")),
	}
}

// ListLicenses returns every stored license.
func (s *LicenseService) ListLicenses(ctx context.Context) ([]domain.License, error) {
	licenses, err := s.licenses.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing licenses: %w", err)
	}

	return licenses, nil
}

// ListLicensesByOrganization returns the licenses owned by an organization.
// An unknown organization yields an empty list.
func (s *LicenseService) ListLicensesByOrganization(ctx context.Context, organizationID string) ([]domain.License, error) {
	licenses, err := s.licenses.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("listing licenses of organization %s: %w", organizationID, err)
	}

	return licenses, nil
}

// GetLicense returns the stored license or a domain.NotFoundError.
func (s *LicenseService) GetLicense(ctx context.Context, licenseID string) (*domain.License, error) {
	license, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("getting license: %w", err)
	}

	return license, nil
}

// GetLicenseWithOrganization returns the license enriched with its
// organization, fetched through strategy. A missing license is an error; any
// failure of the enrichment itself degrades to the fallback license instead.
func (s *LicenseService) GetLicenseWithOrganization(
	ctx context.Context,
	licenseID string,
	strategy domain.DispatchStrategy,
) (*domain.License, error) {
	logger := logging.FromContext(ctx).With(
		slog.String("license_id", licenseID),
		slog.String("strategy", strategy.String()),
	)

	license, err := s.licenses.GetByID(ctx, licenseID)
	if err != nil {
		return nil, fmt.Errorf("getting license: %w", err)
	}

	base := *license

	enriched, err := s.enrich.Execute(ctx,
		func(ctx context.Context) (domain.License, error) {
			org, err := s.dispatcher.Fetch(ctx, s.organizations, base.OrganizationID, strategy)
			if err != nil {
				return domain.License{}, err
			}
			return base.WithOrganization(org), nil
		},
		func(ctx context.Context, cause error) (domain.License, error) {
			logger.WarnContext(ctx, "license enrichment degraded",
				slog.String("organization_id", base.OrganizationID),
				slog.Any("error", cause),
			)
			return base.Fallback(), nil
		},
	)
	if err != nil {
		return nil, fmt.Errorf("enriching license: %w", err)
	}

	logger.DebugContext(ctx, "license enriched", slog.String("organization_id", base.OrganizationID))

	return &enriched, nil
}
