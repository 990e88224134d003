// Package models defines the domain types shared by the API gateway, the state store and the view layer.
//
// Catalog records ([MediaItem], [MediaDetails] and its sub-resources) are server-defined.
// The client only interprets the numeric id, the [MediaType] discriminator, display fields and dates,
// so unknown JSON fields are dropped on decode.
//
// Account types:
//   - [UserProfile] : the signed-in user, as returned by the auth endpoints
//   - [UserRecord] : a user as listed by the admin endpoints, keyed by a persistent record id
//   - [Preferences], [Settings], [Activity] : per-user extras kept on the client
//
// [WatchlistEntry] is the only catalog-derived record the client synthesizes itself (see [EntryFromMedia]).
package models
