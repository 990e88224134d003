// Package repositories implements SQLite persistence for client-side state that must survive a restart.
//
// The only durable state is the session's bearer token. It lives in a single-row-per-key kv table
// under the key [TokenKey]; absence of the row means signed out.
//
// Key Implementations:
//   - [KVRepository] : string key/value rows with upsert semantics, also satisfying the store's TokenStore
package repositories
