// Package services is the boundary between the client and the remote catalog REST API.
//
// # Request Gateway
//
// [Gateway] wraps an [http.Client]. Its transport reads the current bearer token on every round trip
// and hands header injection to [oauth2.Transport]; with no token the request goes out unauthenticated.
// [Gateway.SetToken] is process-wide, so a token change applies to every request issued after it returns.
//
// There is no queuing, no retry and no timeout beyond the configured client timeout.
// An optional [rate.Limiter] throttles outbound calls.
//
// # Tagged Results
//
// Every typed client method returns a [Result]: either OK with a value, or a [RequestError] carrying
// a [ErrorKind], a human-readable message and an [ErrorContext]. A non-2xx response never leaks its body;
// the message is the endpoint's description, e.g. "Failed to fetch watchlist".
//
// RequestError unwraps to the shared sentinels:
//   - [shared.ErrAPIRequest] : transport failure
//   - [shared.ErrAPIStatus] : non-2xx response
//   - [shared.ErrDecodeResponse] : unreadable 2xx body
//   - [shared.ErrRequestCanceled] : context ended
//   - [shared.ErrNotAuthorized] : rejected client-side by an admin guard
//
// # Clients
//
//   - [AuthClient] : login, register, profile for the current token
//   - [CatalogClient] : movies, tv, trending, popular/top-rated/genres by type, details and sub-resources, search
//   - [WatchlistClient] : list, add, remove, clear, status
//   - [UserClient] : extended profile, preferences, settings
//   - [AdminClient] : user list, update, delete, dashboard stats
package services
