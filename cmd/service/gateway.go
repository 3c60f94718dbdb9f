package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/http/gateway"
)

const gatewayPort = 5555

func gatewayCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "gateway",
		Short: "Run the edge gateway that stamps correlation ids and routes to services",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGateway(cmd, flags)
		},
	}
}

func runGateway(cmd *cobra.Command, flags *globalFlags) error {
	ctx := cmd.Context()

	p, err := bootstrap(ctx, flags, serviceDefaults{name: "gateway", port: gatewayPort})
	if err != nil {
		return err
	}
	defer p.shutdown()

	routes := gateway.RoutesFromConfig(p.cfg.Gateway.Routes)
	gw := gateway.New(gateway.Config{
		Routes:    routes,
		Directory: p.directory,
		Chain:     gateway.NewChain(gateway.FiltersFromConfig(p.cfg.Gateway.Filters)...),
		Logger:    p.logger,
	})

	return p.serve(ctx, func(engine *gin.Engine) {
		http.SetupGatewayRouter(engine, http.GatewayRouterConfig{
			Logger:        p.logger,
			AppConfig:     &p.cfg.App,
			HealthHandler: p.healthHandler(),
			Gateway:       gw,
			Routes:        routes,
		})
	})
}
