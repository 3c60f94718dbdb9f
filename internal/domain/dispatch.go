package domain

import "strings"

// DispatchStrategy selects how a downstream organization lookup is made.
// It is chosen per call by the caller and never persisted.
type DispatchStrategy int

const (
	// DiscoveryClient queries the service directory explicitly and calls the
	// first returned instance. It is the zero value and the fallback for
	// unrecognized names.
	DiscoveryClient DispatchStrategy = iota

	// DirectClient calls a statically configured base URL.
	DirectClient

	// DeclarativeClient calls through a typed client bound to a logical
	// service name that resolves its address under the hood.
	DeclarativeClient
)

// Client type names accepted on the licensing API.
const (
	ClientTypeDiscovery = "discovery"
	ClientTypeRest      = "rest"
	ClientTypeFeign     = "feign"
)

// String returns the client type name of the strategy.
func (s DispatchStrategy) String() string {
	switch s {
	case DirectClient:
		return ClientTypeRest
	case DeclarativeClient:
		return ClientTypeFeign
	default:
		return ClientTypeDiscovery
	}
}

// ParseDispatchStrategy maps a client type name to a strategy.
// Unrecognized names fall back to DiscoveryClient.
func ParseDispatchStrategy(name string) DispatchStrategy {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case ClientTypeRest:
		return DirectClient
	case ClientTypeFeign:
		return DeclarativeClient
	default:
		return DiscoveryClient
	}
}
