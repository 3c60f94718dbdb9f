// Package clients provides the outbound HTTP client used to reach other
// services in the mesh.
package clients

import "errors"

// Transport-level failures. Callers in the acl package translate them into
// domain errors before they leave the adapter layer.
var (
	// ErrCircuitOpen means the breaker rejected the call without sending it.
	ErrCircuitOpen = errors.New("circuit breaker open")

	// ErrMaxRetriesExceeded wraps the last failure once every attempt is spent.
	ErrMaxRetriesExceeded = errors.New("max retries exceeded")

	// ErrNoBaseURL is returned for a relative path on a client that has
	// neither a base URL nor a resolver. Discovery clients only send
	// absolute URLs and hit this when handed a bare path.
	ErrNoBaseURL = errors.New("no base url configured")
)
