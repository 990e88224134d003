package store

import (
	"maps"
	"slices"
)

// State is the whole client-side tree. Each slice owns its field exclusively.
type State struct {
	Version   uint64         `json:"version"`
	Auth      AuthState      `json:"auth"`
	Catalog   CatalogState   `json:"catalog"`
	Details   DetailsState   `json:"details"`
	Search    SearchState    `json:"search"`
	User      UserState      `json:"user"`
	Admin     AdminState     `json:"admin"`
	Watchlist WatchlistState `json:"watchlist"`
	UI        UIState        `json:"ui"`
}

func initialState() State {
	return State{
		Auth:      initialAuth(),
		Catalog:   initialCatalog(),
		Details:   initialDetails(),
		Search:    initialSearch(),
		User:      initialUser(),
		Admin:     initialAdmin(),
		Watchlist: initialWatchlist(),
		UI:        initialUI(),
	}
}

// Clone returns a deep copy. Items inside slices are copied by value; their own
// nested slices (e.g. genre ids) are never mutated in place and stay shared.
func (s State) Clone() State {
	return State{
		Version:   s.Version,
		Auth:      s.Auth.clone(),
		Catalog:   s.Catalog.clone(),
		Details:   s.Details.clone(),
		Search:    s.Search.clone(),
		User:      s.User.clone(),
		Admin:     s.Admin.clone(),
		Watchlist: s.Watchlist.clone(),
		UI:        s.UI.clone(),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneResource[E any](r Resource[[]E]) Resource[[]E] {
	r.Data = slices.Clone(r.Data)
	return r
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return maps.Clone(m)
}
