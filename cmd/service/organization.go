package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/handlers"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/storage"
	"github.com/jsamuelsen/licensing-mesh/internal/app"
)

const organizationPort = 8081

func organizationCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "organization",
		Short: "Run the organization service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runOrganization(cmd, flags)
		},
	}
}

func runOrganization(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()

	p, err := bootstrap(ctx, flags, serviceDefaults{
		name:        "organizationservice",
		port:        organizationPort,
		storagePath: "./data/organizationservice",
	})
	if err != nil {
		return err
	}
	defer p.shutdown()

	store, err := p.openStorage(ctx)
	if err != nil {
		return err
	}

	service := app.NewOrganizationService(app.OrganizationServiceConfig{
		Organizations: storage.NewOrganizationRepository(store),
		Logger:        p.logger,
	})

	return p.serve(ctx, func(engine *gin.Engine) {
		http.SetupRouter(engine, http.RouterConfig{
			Logger:              p.logger,
			AppConfig:           &p.cfg.App,
			HealthHandler:       p.healthHandler(),
			OrganizationHandler: handlers.NewOrganizationHandler(service),
			Timeout:             http.DefaultRequestTimeout,
		})
	})
}
