package store

import (
	"context"
	"slices"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// WatchlistState is the user's watchlist.
//
// TotalItems always equals len(Items), and Items never holds two entries with the same (id, media_type).
// WatchlistStatus reflects the most recent known membership per id, optimistic or confirmed.
type WatchlistState struct {
	Items           []models.WatchlistEntry `json:"items"`
	WatchlistStatus map[int]bool            `json:"watchlistStatus"`
	TotalItems      int                     `json:"totalItems"`
	LastUpdated     *time.Time              `json:"lastUpdated"`
	Lifecycle
}

func initialWatchlist() WatchlistState {
	return WatchlistState{
		Items:           []models.WatchlistEntry{},
		WatchlistStatus: map[int]bool{},
		Lifecycle:       Lifecycle{Status: StatusIdle},
	}
}

func (w WatchlistState) clone() WatchlistState {
	w.Items = slices.Clone(w.Items)
	w.WatchlistStatus = cloneMap(w.WatchlistStatus)
	w.LastUpdated = clonePtr(w.LastUpdated)
	return w
}

// Contains reports whether (id, media_type) is in Items.
func (w WatchlistState) Contains(id int, t models.MediaType) bool {
	return w.indexOf(id, t) >= 0
}

// InWatchlist reports the known status for id.
func (w WatchlistState) InWatchlist(id int) bool {
	return w.WatchlistStatus[id]
}

func (w WatchlistState) indexOf(id int, t models.MediaType) int {
	return slices.IndexFunc(w.Items, func(e models.WatchlistEntry) bool { return e.Matches(id, t) })
}

// withItems is the only way Items changes, so TotalItems cannot drift.
func withItems(w WatchlistState, items []models.WatchlistEntry) WatchlistState {
	w.Items = items
	w.TotalItems = len(items)
	return w
}

func withStatus(w WatchlistState, id int, inList bool) WatchlistState {
	status := cloneMap(w.WatchlistStatus)
	status[id] = inList
	w.WatchlistStatus = status
	return w
}

// dedupeEntries keeps the first entry per (id, media_type), preserving order.
func dedupeEntries(entries []models.WatchlistEntry) []models.WatchlistEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]models.WatchlistEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.Key()] {
			continue
		}
		seen[e.Key()] = true
		out = append(out, e)
	}
	return out
}

// replaceAll is the authoritative refresh. Ids missing from entries keep their status.
func replaceAll(w WatchlistState, entries []models.WatchlistEntry, now time.Time) WatchlistState {
	w = withItems(w, dedupeEntries(entries))
	status := cloneMap(w.WatchlistStatus)
	for _, e := range w.Items {
		status[e.ID] = true
	}
	w.WatchlistStatus = status
	w.LastUpdated = &now
	return w
}

// insertEntry appends e when absent and reports whether it did.
func insertEntry(w WatchlistState, e models.WatchlistEntry) (WatchlistState, bool) {
	if w.Contains(e.ID, e.MediaType) {
		return w, false
	}
	return withItems(w, append(slices.Clone(w.Items), e)), true
}

// removeEntry filters out (id, media_type) and returns the removed entry and its index, or -1.
func removeEntry(w WatchlistState, id int, t models.MediaType) (WatchlistState, models.WatchlistEntry, int) {
	i := w.indexOf(id, t)
	if i < 0 {
		return w, models.WatchlistEntry{}, -1
	}
	removed := w.Items[i]
	return withItems(w, slices.Delete(slices.Clone(w.Items), i, i+1)), removed, i
}

// WatchlistSlice owns [WatchlistState]. Its requests are confirmed: state changes only after the server answers.
// See [OptimisticWatchlist] for the immediate variants.
type WatchlistSlice struct {
	store *Store
}

func watchlistLifecycle(st *State) *Lifecycle { return &st.Watchlist.Lifecycle }

// FetchWatchlist replaces Items with the server's deduplicated list.
func (w *WatchlistSlice) FetchWatchlist(ctx context.Context) error {
	_, err := run(ctx, w.store, request[services.WatchlistPayload]{
		slice:     "watchlist",
		op:        "fetch",
		lifecycle: watchlistLifecycle,
		call:      w.store.clients.Watchlist.List,
		fulfilled: func(st *State, p services.WatchlistPayload) {
			st.Watchlist = replaceAll(st.Watchlist, p.Watchlist, w.store.clock())
		},
	})
	return err
}

// AddToWatchlist saves entry and appends the server's copy once confirmed.
func (w *WatchlistSlice) AddToWatchlist(ctx context.Context, entry models.WatchlistEntry) error {
	if !entry.MediaType.Valid() {
		return invalidMediaType(entry.MediaType)
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = w.store.clock()
	}

	_, err := run(ctx, w.store, request[models.WatchlistEntry]{
		slice:     "watchlist",
		op:        "add",
		lifecycle: watchlistLifecycle,
		call: func(ctx context.Context) services.Result[models.WatchlistEntry] {
			return w.store.clients.Watchlist.Add(ctx, entry)
		},
		fulfilled: func(st *State, saved models.WatchlistEntry) {
			if saved.ID == 0 {
				saved = entry
			}
			st.Watchlist, _ = insertEntry(st.Watchlist, saved)
			st.Watchlist = withStatus(st.Watchlist, saved.ID, true)
		},
	})
	return err
}

// RemoveFromWatchlist deletes (id, media_type) and drops it locally once confirmed.
func (w *WatchlistSlice) RemoveFromWatchlist(ctx context.Context, id int, t models.MediaType) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}

	_, err := run(ctx, w.store, request[struct{}]{
		slice:     "watchlist",
		op:        "remove",
		lifecycle: watchlistLifecycle,
		call: func(ctx context.Context) services.Result[struct{}] {
			return w.store.clients.Watchlist.Remove(ctx, id, t)
		},
		fulfilled: func(st *State, _ struct{}) {
			st.Watchlist, _, _ = removeEntry(st.Watchlist, id, t)
			st.Watchlist = withStatus(st.Watchlist, id, false)
		},
	})
	return err
}

// ClearWatchlist deletes every entry.
func (w *WatchlistSlice) ClearWatchlist(ctx context.Context) error {
	_, err := run(ctx, w.store, request[struct{}]{
		slice:     "watchlist",
		op:        "clear",
		lifecycle: watchlistLifecycle,
		call:      w.store.clients.Watchlist.Clear,
		fulfilled: func(st *State, _ struct{}) {
			st.Watchlist = withItems(st.Watchlist, []models.WatchlistEntry{})
			st.Watchlist.WatchlistStatus = map[int]bool{}
		},
	})
	return err
}

// CheckWatchlistStatus asks the server whether (id, media_type) is saved and records the answer.
func (w *WatchlistSlice) CheckWatchlistStatus(ctx context.Context, id int, t models.MediaType) (bool, error) {
	if !t.Valid() {
		return false, invalidMediaType(t)
	}

	return run(ctx, w.store, request[bool]{
		slice:     "watchlist",
		op:        "status",
		lifecycle: watchlistLifecycle,
		call: func(ctx context.Context) services.Result[bool] {
			return w.store.clients.Watchlist.Status(ctx, id, t)
		},
		fulfilled: func(st *State, in bool) { st.Watchlist = withStatus(st.Watchlist, id, in) },
	})
}

// SetStatus records membership for id without touching Items.
func (w *WatchlistSlice) SetStatus(id int, inList bool) {
	w.store.commit(func(st *State) { st.Watchlist = withStatus(st.Watchlist, id, inList) })
}

func (w *WatchlistSlice) ClearError() {
	w.store.commit(func(st *State) { st.Watchlist.Error = "" })
}

// Reset returns the watchlist to empty defaults.
func (w *WatchlistSlice) Reset() {
	w.store.commit(func(st *State) { st.Watchlist = initialWatchlist() })
}
