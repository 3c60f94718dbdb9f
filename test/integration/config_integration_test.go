//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/storage"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
)

// configDir is the repository's configuration directory.
const configDir = "../../configs"

// TestConfig_ProfilesValidate loads every shipped profile the way the
// sub-commands do and validates it.
func TestConfig_ProfilesValidate(t *testing.T) {
	tests := []struct {
		profile string
		backend string
		inMem   bool
	}{
		{profile: "local", backend: config.DirectoryBackendStatic, inMem: true},
		{profile: "dev", backend: config.DirectoryBackendRedis, inMem: false},
		{profile: "prod", backend: config.DirectoryBackendRedis, inMem: false},
		{profile: "test", backend: config.DirectoryBackendStatic, inMem: true},
	}

	for _, tt := range tests {
		t.Run(tt.profile, func(t *testing.T) {
			cfg, err := config.Load(tt.profile,
				config.WithDir(configDir),
				config.WithDefaults(map[string]any{"app.name": "licensingservice", "server.port": 8080}),
			)
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			assert.Equal(t, tt.profile, cfg.App.Environment)
			assert.Equal(t, tt.backend, cfg.Directory.Backend)
			assert.Equal(t, tt.inMem, cfg.Storage.InMemory)
			assert.Equal(t, "organizationservice", cfg.Services.Organization.ServiceID)
		})
	}
}

// TestConfig_BaseCarriesResilienceDefaults checks base.yaml keeps the
// enrichment command settings every profile relies on.
func TestConfig_BaseCarriesResilienceDefaults(t *testing.T) {
	cfg, err := config.Load("local", config.WithDir(configDir))
	require.NoError(t, err)

	e := cfg.Resilience.Enrichment
	assert.Equal(t, 15*time.Second, e.Timeout)
	assert.Equal(t, 30, e.Bulkhead.MaxConcurrent)
	assert.Equal(t, 10, e.Bulkhead.MaxQueue)
	assert.Equal(t, 15*time.Second, e.CircuitBreaker.Window)
	assert.Equal(t, 5, e.CircuitBreaker.Buckets)
	assert.Equal(t, 10, e.CircuitBreaker.RequestVolumeThreshold)
	assert.Equal(t, 75, e.CircuitBreaker.ErrorThresholdPercent)
	assert.Equal(t, 7*time.Second, e.CircuitBreaker.SleepWindow)
	assert.Zero(t, e.FaultInjection.Probability)
}

// TestConfig_GatewayRoutes checks the gateway routes both services and
// enables both filters.
func TestConfig_GatewayRoutes(t *testing.T) {
	cfg, err := config.Load("local",
		config.WithDir(configDir),
		config.WithDefaults(map[string]any{"app.name": "gateway", "server.port": 5555}),
	)
	require.NoError(t, err)

	assert.Equal(t, "gateway", cfg.App.Name)
	assert.Equal(t, 5555, cfg.Server.Port)

	require.Len(t, cfg.Gateway.Routes, 2)
	assert.Equal(t, "/licensingservice", cfg.Gateway.Routes[0].Prefix)
	assert.Equal(t, "organizationservice", cfg.Gateway.Routes[1].ServiceID)
	assert.True(t, cfg.Gateway.Filters.Tracking.Enabled)
	assert.True(t, cfg.Gateway.Filters.Response.Enabled)
}

// TestConfig_EnvironmentOverride checks APP_ variables win over files.
func TestConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv("APP_SERVER_PORT", "9191")
	t.Setenv("APP_LOG_LEVEL", "error")

	cfg, err := config.Load("local", config.WithDir(configDir))
	require.NoError(t, err)

	assert.Equal(t, 9191, cfg.Server.Port)
	assert.Equal(t, "error", cfg.Log.Level)
}

// TestConfig_SeededStoreOnDisk opens the persistent store the dev profile
// selects, seeds it, and reopens it to check the records survived.
func TestConfig_SeededStoreOnDisk(t *testing.T) {
	cfg, err := config.Load("dev", config.WithDir(configDir))
	require.NoError(t, err)

	cfg.Storage.Path = t.TempDir()
	ctx := context.Background()

	store, err := storage.Open(cfg.Storage, nil)
	require.NoError(t, err)
	require.NoError(t, storage.Seed(ctx, store, cfg.Storage.Seed))
	require.NoError(t, store.Close())

	store, err = storage.Open(cfg.Storage, nil)
	require.NoError(t, err)
	defer store.Close()

	licenses, err := storage.NewLicenseRepository(store).ListByOrganization(ctx, crmOrganizationID)
	require.NoError(t, err)
	assert.Len(t, licenses, 2)

	org, err := storage.NewOrganizationRepository(store).GetByID(ctx, crmOrganizationID)
	require.NoError(t, err)
	assert.Equal(t, "customer-crm-co", org.Name)
}
