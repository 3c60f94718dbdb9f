package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

// OrganizationService serves organization records.
type OrganizationService struct {
	organizations ports.OrganizationRepository
	logger        *slog.Logger
}

// OrganizationServiceConfig contains the dependencies of the organization service.
type OrganizationServiceConfig struct {
	Organizations ports.OrganizationRepository
	Logger        *slog.Logger
}

// NewOrganizationService creates an organization service.
func NewOrganizationService(cfg OrganizationServiceConfig) *OrganizationService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &OrganizationService{
		organizations: cfg.Organizations,
		logger:        logger.With(slog.String("component", "app.OrganizationService")),
	}
}

// GetOrganization returns the organization or a domain.NotFoundError.
func (s *OrganizationService) GetOrganization(ctx context.Context, organizationID string) (*domain.Organization, error) {
	s.logger.DebugContext(ctx, "fetching organization", slog.String("organization_id", organizationID))

	org, err := s.organizations.GetByID(ctx, organizationID)
	if err != nil {
		return nil, fmt.Errorf("getting organization: %w", err)
	}

	return org, nil
}

func (s *OrganizationService) ListOrganizations(ctx context.Context) ([]domain.Organization, error) {
	orgs, err := s.organizations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing organizations: %w", err)
	}

	return orgs, nil
}
