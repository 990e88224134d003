// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI is a view over a [store.Store]:
//  1. [TrendingView] : Trending titles, warmed by the catalog prefetch engine
//  2. [SearchView] : Query the catalog and browse results and history
//  3. [WatchlistView] : The signed-in user's saved titles
//  4. [DetailsView] : Details, cast and recommendations for the selected title
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// It subscribes to the store and re-renders from snapshots; space toggles watchlist membership through the
// optimistic controller, so the list updates before the server confirms.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, enter, esc, space, /, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
