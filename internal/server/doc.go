// Package server provides HTTP routing, middleware, and an in-memory stub of the catalog REST API.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation registers "METHOD /path" patterns on [http.ServeMux], so wildcards such as
// {id} are available through [http.Request.PathValue]. Route-specific middleware (auth, admin) runs inside the
// router-wide stack.
//
// # Stub API
//
// [StubAPI] implements every endpoint the client consumes against in-memory state seeded from an embedded
// catalog fixture. Logins issue HS256 JWTs through [TokenIssuer]; passwords are stored as bcrypt hashes.
// Protected routes sit behind [RequireAuth] and, for /api/admin, [RequireAdmin].
//
// The stub backs `marquee stub-api` for local development and the integration tests of the client packages.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
