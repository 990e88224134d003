package store

import (
	"context"
	"slices"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// MaxSearchHistory caps the remembered queries.
const MaxSearchHistory = 10

// SearchState holds the current query, its results and the query history.
//
// SearchHistory is most-recent-first, unique and at most [MaxSearchHistory] long.
type SearchState struct {
	CurrentQuery  string             `json:"currentQuery"`
	SearchResults []models.MediaItem `json:"searchResults"`
	SearchHistory []string           `json:"searchHistory"`
	HasSearched   bool               `json:"hasSearched"`
	Lifecycle
}

func initialSearch() SearchState {
	return SearchState{SearchResults: []models.MediaItem{}, SearchHistory: []string{}, Lifecycle: Lifecycle{Status: StatusIdle}}
}

func (s SearchState) clone() SearchState {
	s.SearchResults = slices.Clone(s.SearchResults)
	s.SearchHistory = slices.Clone(s.SearchHistory)
	return s
}

// addToHistory pushes query to the front. A query already present leaves the history unchanged.
func addToHistory(s SearchState, query string) SearchState {
	query = strings.TrimSpace(query)
	if query == "" || slices.Contains(s.SearchHistory, query) {
		return s
	}
	history := append([]string{query}, s.SearchHistory...)
	s.SearchHistory = history[:min(len(history), MaxSearchHistory)]
	return s
}

func removeFromHistory(s SearchState, query string) SearchState {
	s.SearchHistory = slices.DeleteFunc(slices.Clone(s.SearchHistory), func(q string) bool { return q == query })
	return s
}

func clearResults(s SearchState) SearchState {
	s.CurrentQuery = ""
	s.SearchResults = []models.MediaItem{}
	s.HasSearched = false
	return s
}

// SearchSlice owns [SearchState].
type SearchSlice struct {
	store *Store
}

// Search runs query against the catalog. On success the query joins the history.
func (s *SearchSlice) Search(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return &ValidationError{Form: "search", Fields: map[string]string{"query": "is required"}}
	}

	_, err := run(ctx, s.store, request[[]models.MediaItem]{
		slice:     "search",
		op:        "search",
		lifecycle: func(st *State) *Lifecycle { return &st.Search.Lifecycle },
		call: func(ctx context.Context) services.Result[[]models.MediaItem] {
			return s.store.clients.Catalog.Search(ctx, query)
		},
		pending: func(st *State) { st.Search.CurrentQuery = query },
		fulfilled: func(st *State, items []models.MediaItem) {
			st.Search.SearchResults = items
			st.Search.HasSearched = true
			st.Search = addToHistory(st.Search, query)
		},
	})
	return err
}

func (s *SearchSlice) SetQuery(query string) {
	s.store.commit(func(st *State) { st.Search.CurrentQuery = query })
}

// AddToHistory records query without searching. Duplicates are skipped.
func (s *SearchSlice) AddToHistory(query string) {
	s.store.commit(func(st *State) { st.Search = addToHistory(st.Search, query) })
}

func (s *SearchSlice) RemoveFromHistory(query string) {
	s.store.commit(func(st *State) { st.Search = removeFromHistory(st.Search, query) })
}

func (s *SearchSlice) ClearHistory() {
	s.store.commit(func(st *State) { st.Search.SearchHistory = []string{} })
}

// ClearResults drops the current query and results; history is kept.
func (s *SearchSlice) ClearResults() {
	s.store.commit(func(st *State) { st.Search = clearResults(st.Search) })
}

func (s *SearchSlice) ClearError() {
	s.store.commit(func(st *State) { st.Search.Error = "" })
}
