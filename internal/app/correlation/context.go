package correlation

import (
	"context"
	"maps"
	"sync"
)

// Keys of the user context. They double as the HTTP header names used to
// carry the values between services.
const (
	KeyCorrelationID = "correlation-id"
	KeyAuthToken     = "auth-token"
	KeyUserID        = "user-id"
	KeyOrgID         = "org-id"
)

// HeaderCorrelationID is the header carrying the correlation id on inbound
// requests, outbound responses and downstream calls.
const HeaderCorrelationID = KeyCorrelationID

// PropagatedKeys lists the keys copied from inbound headers and onto
// downstream requests.
var PropagatedKeys = []string{KeyCorrelationID, KeyAuthToken, KeyUserID, KeyOrgID}

type ctxKey struct{}

// Context is a mutable key/value store scoped to a single request.
// It is safe for use by the goroutines serving that request.
type Context struct {
	mu     sync.RWMutex
	values map[string]string
}

// New creates an empty Context.
func New() *Context {
	return &Context{values: make(map[string]string, len(PropagatedKeys))}
}

// FromContext extracts the Context, returns nil if not present.
func FromContext(ctx context.Context) *Context {
	if ctx == nil {
		return nil
	}
	if cc, ok := ctx.Value(ctxKey{}).(*Context); ok {
		return cc
	}
	return nil
}

// WithContext stores the Context in ctx.
func WithContext(ctx context.Context, cc *Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, cc)
}

// IDFromContext returns the correlation id carried by ctx, or "" when ctx
// holds no Context.
func IDFromContext(ctx context.Context) string {
	return FromContext(ctx).CorrelationID()
}

// Get returns the value stored under key, or "" if unset.
// A nil Context behaves as an empty one.
func (c *Context) Get(key string) string {
	if c == nil {
		return ""
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.values[key]
}

// Set stores value under key.
func (c *Context) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value
}

// Snapshot returns a copy of all non-empty values.
func (c *Context) Snapshot() map[string]string {
	if c == nil {
		return map[string]string{}
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]string, len(c.values))
	maps.Copy(out, c.values)

	for k, v := range out {
		if v == "" {
			delete(out, k)
		}
	}

	return out
}

// CorrelationID returns the correlation id.
func (c *Context) CorrelationID() string { return c.Get(KeyCorrelationID) }

// SetCorrelationID sets the correlation id.
func (c *Context) SetCorrelationID(id string) { c.Set(KeyCorrelationID, id) }

// AuthToken returns the auth token.
func (c *Context) AuthToken() string { return c.Get(KeyAuthToken) }

// UserID returns the user id.
func (c *Context) UserID() string { return c.Get(KeyUserID) }

// OrgID returns the organization id.
func (c *Context) OrgID() string { return c.Get(KeyOrgID) }
