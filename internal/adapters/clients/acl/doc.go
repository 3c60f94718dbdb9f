// Package acl keeps the organization service's wire format out of the
// licensing domain. Responses are decoded into private DTOs, checked, and
// converted to domain.Organization; HTTP and transport failures come back as
// domain errors.
//
// [OrganizationDispatcher] implements ports.OrganizationDispatcher and sends
// each lookup through the strategy the caller picked:
//
//   - "rest": [RestOrganizationClient], a fixed base URL
//   - "feign": [DeclarativeOrganizationClient], typed [Endpoint] declarations
//     over a client that resolves an instance per call
//   - "discovery" and anything else: [DiscoveryOrganizationClient], an
//     explicit directory lookup where the first instance wins
//
// All three share clients.Client, so the correlation id and auth token in the
// request's correlation.Context reach the organization service either way.
//
// Error mapping:
//
//	404                      -> domain.ErrNotFound
//	400, 422                 -> domain.ErrValidation (first detail field)
//	empty directory          -> domain.ErrNoInstancesAvailable
//	breaker open, retries    -> domain.ErrUnavailable
//	other statuses, network  -> domain.ErrUnavailable
package acl
