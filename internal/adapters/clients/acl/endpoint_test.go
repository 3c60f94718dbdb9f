package acl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

func TestEndpoint_Path(t *testing.T) {
	client, err := clients.New(testConfig("http://example.com"))
	require.NoError(t, err)

	ep := NewEndpoint[organizationResponse](client, http.MethodGet,
		"/v1/organizations/{organizationId}/licenses/{licenseId}", "license", "licenseId")

	tests := []struct {
		name   string
		params Params
		want   string
	}{
		{"both params", Params{"organizationId": "org-1", "licenseId": "lic-9"}, "/v1/organizations/org-1/licenses/lic-9"},
		{"escapes values", Params{"organizationId": "a/b c", "licenseId": "x"}, "/v1/organizations/a%2Fb%20c/licenses/x"},
		{"missing param", Params{"organizationId": "org-1"}, "/v1/organizations/org-1/licenses/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ep.Path(tt.params))
		})
	}
}

func TestEndpoint_Call(t *testing.T) {
	var gotMethod, gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if r.URL.Path == "/v1/organizations/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":"org-1","name":"HR-PR"}`))
	}))
	defer server.Close()

	client, err := clients.New(testConfig(server.URL))
	require.NoError(t, err)

	ep := NewEndpoint[organizationResponse](client, http.MethodGet, organizationPathTemplate, "organization", "organizationId")

	got, err := ep.Call(context.Background(), Params{"organizationId": "org-1"}, nil)
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, gotMethod)
	assert.Equal(t, "/v1/organizations/org-1", gotPath)
	assert.Equal(t, "HR-PR", got.Name)

	_, err = ep.Call(context.Background(), Params{"organizationId": "missing"}, nil)
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.ID)
}
