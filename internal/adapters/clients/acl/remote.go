package acl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"net/http"
	"slices"

	"github.com/jsamuelsen/licensing-mesh/internal/adapters/clients"
	"github.com/jsamuelsen/licensing-mesh/internal/domain"
)

// remote is the call path shared by every organization client: send the
// request, turn failures into domain errors, hand back the body.
type remote struct {
	client  *clients.Client
	service string
}

func newRemote(client *clients.Client) remote {
	return remote{client: client, service: client.ServiceName()}
}

func (r remote) get(ctx context.Context, path, entity, entityID string) (io.ReadCloser, error) {
	return r.call(ctx, http.MethodGet, path, nil, entity, entityID)
}

// call sends the request. A non-2xx response is consumed and returned as a
// domain error; on success the caller owns the body.
func (r remote) call(ctx context.Context, method, path string, body io.Reader, entity, entityID string) (io.ReadCloser, error) {
	resp, err := r.client.Request(ctx, method, path, body)
	if err != nil {
		return nil, translateTransport(err, r.service, entity)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()
		return nil, translateStatus(resp.StatusCode, readErrorEnvelope(resp.Body), r.service, entity, entityID)
	}

	return resp.Body, nil
}

// decode reads a JSON body into T and closes it. A body the service cannot
// have meant counts as the service being unavailable.
func decode[T any](body io.ReadCloser, service string) (*T, error) {
	if body == nil {
		return nil, domain.NewUnavailableError(service, "empty response body")
	}
	defer func() { _ = body.Close() }()

	var out T
	if err := json.NewDecoder(body).Decode(&out); err != nil {
		return nil, domain.NewUnavailableError(service, fmt.Sprintf("decoding response: %v", err))
	}

	return &out, nil
}

func requireField(value, field string) error {
	if value == "" {
		return domain.NewValidationError(field, "is required")
	}
	return nil
}

// errorEnvelope is the error body every service in the mesh writes.
type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

// readErrorEnvelope returns nil unless body holds an envelope with a code or
// a message.
func readErrorEnvelope(body io.Reader) *errorEnvelope {
	if body == nil {
		return nil
	}

	var env errorEnvelope
	if err := json.NewDecoder(body).Decode(&env); err != nil {
		return nil
	}

	if env.Error.Code == "" && env.Error.Message == "" {
		return nil
	}

	return &env
}

// translateTransport maps failures where no response arrived. Errors that
// already carry domain meaning, such as an empty directory, pass through.
func translateTransport(err error, service, entity string) error {
	switch {
	case domain.IsNoInstances(err), domain.IsUnavailable(err), domain.IsNotFound(err):
		return err
	case errors.Is(err, clients.ErrCircuitOpen):
		return domain.NewUnavailableError(service, "circuit breaker open while fetching "+entity)
	case errors.Is(err, clients.ErrMaxRetriesExceeded):
		return domain.NewUnavailableError(service, "max retries exceeded while fetching "+entity)
	default:
		return domain.NewUnavailableError(service, fmt.Sprintf("fetching %s failed: %v", entity, err))
	}
}

// translateStatus maps an error response. 404 is a missing record, 400 and
// 422 are validation failures, and everything else means the service could
// not answer.
func translateStatus(status int, env *errorEnvelope, service, entity, entityID string) error {
	message := statusMessage(status)
	if env != nil && env.Error.Message != "" {
		message = env.Error.Message
	}

	switch status {
	case http.StatusNotFound:
		return domain.NewNotFoundError(entity, entityID)

	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		if env != nil && len(env.Error.Details) > 0 {
			field := slices.Sorted(maps.Keys(env.Error.Details))[0]
			return domain.NewValidationError(field, env.Error.Details[field])
		}
		return domain.NewValidationError("", message)

	default:
		return domain.NewUnavailableError(service, message)
	}
}

func statusMessage(status int) string {
	switch status {
	case http.StatusNotFound:
		return "resource not found"
	case http.StatusBadRequest:
		return "invalid request"
	case http.StatusTooManyRequests:
		return "rate limit exceeded"
	case http.StatusServiceUnavailable:
		return "service temporarily unavailable"
	default:
		return fmt.Sprintf("unexpected status %d", status)
	}
}
