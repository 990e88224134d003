package store

import (
	"context"
	"slices"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// OptimisticWatchlist applies watchlist changes immediately and confirms them with the server afterwards.
//
// A successful call is not reconciled; only [OptimisticWatchlist.Fetch] replaces local state with the server's.
// A failed call records the error and, under [RollbackOnFailure], undoes exactly what the call changed.
type OptimisticWatchlist struct {
	store *Store
}

// priorStatus captures a status entry so it can be restored, including its absence.
type priorStatus struct {
	value, known bool
}

func statusOf(w WatchlistState, id int) priorStatus {
	v, ok := w.WatchlistStatus[id]
	return priorStatus{value: v, known: ok}
}

func restoreStatus(w WatchlistState, id int, p priorStatus) WatchlistState {
	status := cloneMap(w.WatchlistStatus)
	if p.known {
		status[id] = p.value
	} else {
		delete(status, id)
	}
	w.WatchlistStatus = status
	return w
}

// Add inserts a synthesized entry for item (when absent), marks it saved, then confirms with the server.
func (o *OptimisticWatchlist) Add(ctx context.Context, item models.MediaItem) error {
	if !item.MediaType.Valid() {
		return invalidMediaType(item.MediaType)
	}

	entry := models.EntryFromMedia(item, o.store.clock())
	var (
		inserted bool
		prior    priorStatus
	)

	_, err := run(ctx, o.store, request[models.WatchlistEntry]{
		slice:     "watchlist",
		op:        "optimistic_add",
		lifecycle: watchlistLifecycle,
		pending: func(st *State) {
			prior = statusOf(st.Watchlist, entry.ID)
			st.Watchlist, inserted = insertEntry(st.Watchlist, entry)
			st.Watchlist = withStatus(st.Watchlist, entry.ID, true)
		},
		call: func(ctx context.Context) services.Result[models.WatchlistEntry] {
			return o.store.clients.Watchlist.Add(ctx, entry)
		},
		rejected: func(st *State, _ *services.RequestError) {
			if o.store.policy != RollbackOnFailure {
				return
			}
			if inserted {
				st.Watchlist, _, _ = removeEntry(st.Watchlist, entry.ID, entry.MediaType)
			}
			st.Watchlist = restoreStatus(st.Watchlist, entry.ID, prior)
		},
	})
	return err
}

// Remove drops (id, media_type) and marks it unsaved, then confirms with the server.
func (o *OptimisticWatchlist) Remove(ctx context.Context, id int, t models.MediaType) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}

	var (
		removed models.WatchlistEntry
		index   = -1
		prior   priorStatus
	)

	_, err := run(ctx, o.store, request[struct{}]{
		slice:     "watchlist",
		op:        "optimistic_remove",
		lifecycle: watchlistLifecycle,
		pending: func(st *State) {
			prior = statusOf(st.Watchlist, id)
			st.Watchlist, removed, index = removeEntry(st.Watchlist, id, t)
			st.Watchlist = withStatus(st.Watchlist, id, false)
		},
		call: func(ctx context.Context) services.Result[struct{}] {
			return o.store.clients.Watchlist.Remove(ctx, id, t)
		},
		rejected: func(st *State, _ *services.RequestError) {
			if o.store.policy != RollbackOnFailure {
				return
			}
			if index >= 0 && !st.Watchlist.Contains(id, t) {
				at := min(index, len(st.Watchlist.Items))
				st.Watchlist = withItems(st.Watchlist, slices.Insert(slices.Clone(st.Watchlist.Items), at, removed))
			}
			st.Watchlist = restoreStatus(st.Watchlist, id, prior)
		},
	})
	return err
}

// Fetch is the authoritative refresh; see [WatchlistSlice.FetchWatchlist].
func (o *OptimisticWatchlist) Fetch(ctx context.Context) error {
	return o.store.Watchlist.FetchWatchlist(ctx)
}

// Toggle removes item when its status says it is saved and adds it otherwise, including when the id is unknown.
// It reports whether the item was added.
func (o *OptimisticWatchlist) Toggle(ctx context.Context, item models.MediaItem) (added bool, err error) {
	saved := read(o.store, func(st *State) bool { return st.Watchlist.WatchlistStatus[item.ID] })
	if saved {
		return false, o.Remove(ctx, item.ID, item.MediaType)
	}
	return true, o.Add(ctx, item)
}
