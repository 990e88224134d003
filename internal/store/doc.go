// Package store is the client-side state layer: one [State] tree composed of independently owned slices.
//
// # Slices
//
// Each slice owns one field of [State] and exposes two kinds of operations:
//   - synchronous reducers (SetQuery, ClearError, AddFavorite, ...) that always succeed
//   - requests (Login, GetPopular, FetchWatchlist, ...) that move a [Lifecycle] through
//     pending, then fulfilled or rejected
//
// A pending transition sets Loading and clears Error. A rejected one stores the
// [services.RequestError] message in Error; nothing is retried automatically.
// Catalog facets that exist per media type keep one lifecycle each in a [ByType].
//
// Slices never touch each other's fields. Cross-slice effects are explicit composites such as [Store.LogoutUser].
//
// # Errors
//
//   - [ValidationError] : form checks, returned before any state changes
//   - [services.RequestError] : a failed call, also recorded on the slice
//   - authorization : a RequestError of kind [services.KindAuthorization] raised by the admin guard without a call
//
// # Watchlist
//
// [WatchlistSlice] applies changes once the server confirms them. [OptimisticWatchlist] applies them
// first and confirms afterwards; what happens on failure is the store's [WatchlistPolicy].
//
// # Concurrency
//
// A [Store] is safe for concurrent use. Transitions are serialized by one mutex, network calls are not,
// and listeners registered with [Store.Subscribe] get a deep-copied snapshot after every transition.
package store
