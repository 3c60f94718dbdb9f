package acl

import (
	"context"
	"io"
	"net/url"
	"regexp"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
)

var pathParam = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

// Endpoint is a typed description of one remote operation: method, path
// template and response type. It is declared once and called many times;
// the client it is bound to decides where the request goes.
//
//	getOrg := acl.NewEndpoint[organizationResponse](client, http.MethodGet,
//	    "/v1/organizations/{organizationId}", "organization", "organizationId")
//	org, err := getOrg.Call(ctx, acl.Params{"organizationId": id}, nil)
type Endpoint[T any] struct {
	remote  remote
	method  string
	path    string
	entity  string
	idParam string
}

// Params holds the values substituted into an endpoint's path template.
type Params map[string]string

// NewEndpoint declares an endpoint on client. entity and idParam name the
// record and the path parameter reported in not-found errors.
func NewEndpoint[T any](client *clients.Client, method, path, entity, idParam string) Endpoint[T] {
	return Endpoint[T]{
		remote:  newRemote(client),
		method:  method,
		path:    path,
		entity:  entity,
		idParam: idParam,
	}
}

// Path expands the template with escaped parameter values. Unknown
// placeholders are left empty.
func (e Endpoint[T]) Path(params Params) string {
	return pathParam.ReplaceAllStringFunc(e.path, func(m string) string {
		name := m[1 : len(m)-1]
		return url.PathEscape(params[name])
	})
}

// Call performs the request and decodes the JSON response into T.
func (e Endpoint[T]) Call(ctx context.Context, params Params, body io.Reader) (*T, error) {
	respBody, err := e.remote.call(ctx, e.method, e.Path(params), body, e.entity, params[e.idParam])
	if err != nil {
		return nil, err
	}

	return decode[T](respBody, e.remote.service)
}
