//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients/acl"
	"github.com/jsamuelsen/licensing-mesh/internal/adapters/discovery"
	"github.com/jsamuelsen/licensing-mesh/internal/app/correlation"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
	"github.com/jsamuelsen/licensing-mesh/internal/platform/config"
	"github.com/jsamuelsen/licensing-mesh/internal/ports"
)

const (
	organizationService = "organizationservice"
	crmOrganizationID   = "e254f8c-c442-4ebe-a82a-e2fc1d1ff78a"
)

// organizationServer fakes the organization service. It counts calls and
// records the last correlation id seen.
type organizationServer struct {
	*httptest.Server
	calls         atomic.Int32
	correlationID atomic.Value
	status        atomic.Int32
}

func newOrganizationServer(t *testing.T) *organizationServer {
	t.Helper()

	s := &organizationServer{}
	s.status.Store(http.StatusOK)

	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		s.correlationID.Store(r.Header.Get(correlation.HeaderCorrelationID))

		if status := int(s.status.Load()); status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		if r.URL.Path != "/v1/organizations/"+crmOrganizationID {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"id":           crmOrganizationID,
			"name":         "customer-crm-co",
			"contactName":  "Mark Balster",
			"contactEmail": "mark.balster@custcrmco.com",
			"contactPhone": "823-555-1212",
		})
	}))
	t.Cleanup(s.Close)

	return s
}

func (s *organizationServer) instance(t *testing.T) ports.ServiceInstance {
	t.Helper()

	u, err := url.Parse(s.URL)
	require.NoError(t, err)

	host, portStr, err := net.SplitHostPort(u.Host)
	require.NoError(t, err)

	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)

	return ports.ServiceInstance{ServiceName: organizationService, InstanceID: "org-1", Host: host, Port: port}
}

func newDispatcher(t *testing.T, baseURL string, dir ports.ServiceDirectory) *acl.OrganizationDispatcher {
	t.Helper()

	newClient := func(base string, resolver clients.Resolver) *clients.Client {
		c, err := clients.New(&clients.Config{
			BaseURL:     base,
			Resolver:    resolver,
			ServiceName: organizationService,
			Timeout:     2 * time.Second,
			Retry:       config.RetryConfig{MaxAttempts: 1},
		})
		require.NoError(t, err)
		return c
	}

	return acl.NewOrganizationDispatcher(acl.OrganizationDispatcherConfig{
		Rest:        acl.NewRestOrganizationClient(newClient(baseURL, nil)),
		Declarative: acl.NewDeclarativeOrganizationClient(newClient("", clients.NewDirectoryResolver(dir, organizationService))),
		Discovery:   acl.NewDiscoveryOrganizationClient(newClient("", nil), dir),
	})
}

var strategies = []domain.DispatchStrategy{
	domain.DirectClient,
	domain.DeclarativeClient,
	domain.DiscoveryClient,
}

func TestOrganizationDispatcher_AllStrategies_Integration(t *testing.T) {
	server := newOrganizationServer(t)
	dir := discovery.NewStaticDirectory(server.instance(t))
	dispatcher := newDispatcher(t, server.URL, dir)

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			cc := correlation.New()
			cc.SetCorrelationID("corr-" + strategy.String())
			ctx := correlation.WithContext(context.Background(), cc)

			org, err := dispatcher.Fetch(ctx, organizationService, crmOrganizationID, strategy)
			require.NoError(t, err)

			assert.Equal(t, "customer-crm-co", org.Name)
			assert.Equal(t, "Mark Balster", org.ContactName)
			assert.Equal(t, "corr-"+strategy.String(), server.correlationID.Load())
		})
	}

	assert.Equal(t, int32(len(strategies)), server.calls.Load())
}

func TestOrganizationDispatcher_NotFound_Integration(t *testing.T) {
	server := newOrganizationServer(t)
	dir := discovery.NewStaticDirectory(server.instance(t))
	dispatcher := newDispatcher(t, server.URL, dir)

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			_, err := dispatcher.Fetch(context.Background(), organizationService, "missing", strategy)
			require.Error(t, err)
			assert.True(t, domain.IsNotFound(err), "got %v", err)
		})
	}
}

func TestOrganizationDispatcher_ServerError_Integration(t *testing.T) {
	server := newOrganizationServer(t)
	server.status.Store(http.StatusInternalServerError)

	dir := discovery.NewStaticDirectory(server.instance(t))
	dispatcher := newDispatcher(t, server.URL, dir)

	for _, strategy := range strategies {
		t.Run(strategy.String(), func(t *testing.T) {
			_, err := dispatcher.Fetch(context.Background(), organizationService, crmOrganizationID, strategy)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrUnavailable)
		})
	}
}

func TestOrganizationDispatcher_NoInstances_Integration(t *testing.T) {
	server := newOrganizationServer(t)
	dir := discovery.NewStaticDirectory()
	dispatcher := newDispatcher(t, server.URL, dir)

	_, err := dispatcher.Fetch(context.Background(), organizationService, crmOrganizationID, domain.DiscoveryClient)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoInstancesAvailable)

	_, err = dispatcher.Fetch(context.Background(), organizationService, crmOrganizationID, domain.DeclarativeClient)
	require.Error(t, err)

	// The rest client does not consult the directory
	org, err := dispatcher.Fetch(context.Background(), organizationService, crmOrganizationID, domain.DirectClient)
	require.NoError(t, err)
	assert.Equal(t, crmOrganizationID, org.ID)

	assert.Equal(t, int32(1), server.calls.Load(), "only the rest client reached the server")
}

func TestOrganizationDispatcher_InstanceRegisteredLater_Integration(t *testing.T) {
	server := newOrganizationServer(t)
	dir := discovery.NewStaticDirectory()
	dispatcher := newDispatcher(t, server.URL, dir)

	_, err := dispatcher.Fetch(context.Background(), organizationService, crmOrganizationID, domain.DiscoveryClient)
	require.ErrorIs(t, err, domain.ErrNoInstancesAvailable)

	require.NoError(t, dir.Register(context.Background(), server.instance(t)))

	org, err := dispatcher.Fetch(context.Background(), organizationService, crmOrganizationID, domain.DiscoveryClient)
	require.NoError(t, err)
	assert.Equal(t, "customer-crm-co", org.Name)
}
