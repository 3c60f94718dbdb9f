// Package main is the entry point for the licensing mesh. One binary runs
// the gateway, the licensing service or the organization service, selected
// by sub-command.
package main

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Set with -ldflags "-X main.Version=... -X main.Commit=... -X main.BuildTime=...".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// globalFlags are shared by every sub-command.
type globalFlags struct {
	profile   string
	configDir string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "licensing-mesh",
		Short:         "Licensing and organization services behind a tracing gateway",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(fmt.Sprintf("licensing-mesh %s (commit %s, built %s)\n", Version, Commit, BuildTime))

	root.PersistentFlags().StringVar(&flags.profile, "profile", cmp.Or(os.Getenv("APP_ENVIRONMENT"), "local"), "configuration profile (configs/{profile}.yaml)")
	root.PersistentFlags().StringVar(&flags.configDir, "config-dir", "configs", "directory holding base.yaml and profile files")

	root.AddCommand(
		gatewayCmd(flags),
		licensingCmd(flags),
		organizationCmd(flags),
	)

	return root
}
