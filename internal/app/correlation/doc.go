// Package correlation provides the request-scoped user context that carries
// the correlation id (and the optional auth token, user id and org id) along
// a request's call graph.
//
// A Context is created once per inbound request, stored in the request's
// context.Context and read by every component on the request path without
// being passed as an explicit parameter:
//
//	cc := correlation.New()
//	ctx = correlation.WithContext(ctx, cc)
//	cc.SetCorrelationID(uuid.NewString())
//
//	// deep in an outbound client
//	if id := correlation.IDFromContext(ctx); id != "" {
//	    req.Header.Set(correlation.HeaderCorrelationID, id)
//	}
//
// A Context is never shared between requests. It is dropped with the request's
// context.Context when the request completes.
package correlation
