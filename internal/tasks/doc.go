// Package tasks runs multi-request operations against the store with real-time progress reporting.
//
// # Core Operations
//
//  1. [Engine.Prefetch] : warm the catalog
//     - Expands the requested facets into one load per (facet, media type)
//     - Runs the loads on a bounded worker pool, optionally rate limited
//     - Each load goes through the store's catalog slice, so every facet keeps its own lifecycle
//     - Reports per-facet item counts and failures without stopping on the first error
//
//  2. [Engine.ExportWatchlist] : write the watchlist to disk
//     - Optionally refreshes the watchlist first
//     - Sorts entries and writes each requested format concurrently
//     - Writes export_manifest.json listing every file and failure
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default so a slow or absent reader never stalls the work.
package tasks
