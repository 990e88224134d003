package store

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
)

// Facet names one catalog collection.
type Facet string

const (
	FacetMovies      Facet = "movies"
	FacetTVShows     Facet = "tvShows"
	FacetTrending    Facet = "trending"
	FacetAiringToday Facet = "airingToday"
	FacetOnTheAir    Facet = "onTheAir"
	FacetPopular     Facet = "popular"
	FacetTopRated    Facet = "topRated"
	FacetGenres      Facet = "genres"
)

// Sort orders understood by [ApplyFilter].
const (
	SortPopularity = "popularity"
	SortRating     = "rating"
	SortDate       = "date"
	SortTitle      = "title"
)

// CatalogFilter narrows and orders a collection for display. The zero value keeps server order.
type CatalogFilter struct {
	MediaType models.MediaType `json:"mediaType,omitempty"`
	GenreID   int              `json:"genreId,omitempty"`
	SortBy    string           `json:"sortBy,omitempty"`
}

// CatalogState holds every browsable collection.
//
// Popular, TopRated and Genres keep one independent lifecycle per media type.
type CatalogState struct {
	Movies      MediaCollection         `json:"movies"`
	TVShows     MediaCollection         `json:"tvShows"`
	Trending    MediaCollection         `json:"trending"`
	AiringToday MediaCollection         `json:"airingToday"`
	OnTheAir    MediaCollection         `json:"onTheAir"`
	Popular     ByType[MediaCollection] `json:"popular"`
	TopRated    ByType[MediaCollection] `json:"topRated"`
	Genres      ByType[GenreCollection] `json:"genres"`
	Filter      CatalogFilter           `json:"filter"`
}

func emptyCollection() MediaCollection {
	return MediaCollection{Data: []models.MediaItem{}, Lifecycle: Lifecycle{Status: StatusIdle}}
}

func initialCatalog() CatalogState {
	byType := ByType[MediaCollection]{Movie: emptyCollection(), TV: emptyCollection()}
	genres := GenreCollection{Data: []models.Genre{}, Lifecycle: Lifecycle{Status: StatusIdle}}
	return CatalogState{
		Movies:      emptyCollection(),
		TVShows:     emptyCollection(),
		Trending:    emptyCollection(),
		AiringToday: emptyCollection(),
		OnTheAir:    emptyCollection(),
		Popular:     byType,
		TopRated:    byType,
		Genres:      ByType[GenreCollection]{Movie: genres, TV: genres},
	}
}

func (c CatalogState) clone() CatalogState {
	c.Movies = cloneResource(c.Movies)
	c.TVShows = cloneResource(c.TVShows)
	c.Trending = cloneResource(c.Trending)
	c.AiringToday = cloneResource(c.AiringToday)
	c.OnTheAir = cloneResource(c.OnTheAir)
	c.Popular = c.Popular.mapValues(cloneResource[models.MediaItem])
	c.TopRated = c.TopRated.mapValues(cloneResource[models.MediaItem])
	c.Genres = c.Genres.mapValues(cloneResource[models.Genre])
	return c
}

// mergeUnique combines lists, sorts by id and drops duplicates.
func mergeUnique(lists ...[]models.MediaItem) []models.MediaItem {
	merged := slices.Concat(lists...)
	if len(merged) == 0 {
		return []models.MediaItem{}
	}
	return models.DedupeByID(merged)
}

// clearFacetError is the reducer for [CatalogSlice.ClearError].
func clearFacetError(c CatalogState, f Facet) CatalogState {
	switch f {
	case FacetMovies:
		c.Movies.Error = ""
	case FacetTVShows:
		c.TVShows.Error = ""
	case FacetTrending:
		c.Trending.Error = ""
	case FacetAiringToday:
		c.AiringToday.Error = ""
	case FacetOnTheAir:
		c.OnTheAir.Error = ""
	case FacetPopular:
		c.Popular.Movie.Error, c.Popular.TV.Error = "", ""
	case FacetTopRated:
		c.TopRated.Movie.Error, c.TopRated.TV.Error = "", ""
	case FacetGenres:
		c.Genres.Movie.Error, c.Genres.TV.Error = "", ""
	}
	return c
}

// ApplyFilter returns the items of list matching f, ordered by f.SortBy. list is not modified.
func ApplyFilter(list []models.MediaItem, f CatalogFilter) []models.MediaItem {
	out := slices.Clone(list)
	out = slices.DeleteFunc(out, func(m models.MediaItem) bool {
		if f.MediaType != "" && m.MediaType != "" && m.MediaType != f.MediaType {
			return true
		}
		return f.GenreID != 0 && !slices.Contains(m.GenreIDs, f.GenreID)
	})

	switch f.SortBy {
	case SortPopularity:
		slices.SortStableFunc(out, func(a, b models.MediaItem) int { return cmp.Compare(b.Popularity, a.Popularity) })
	case SortRating:
		slices.SortStableFunc(out, func(a, b models.MediaItem) int { return cmp.Compare(b.VoteAverage, a.VoteAverage) })
	case SortDate:
		slices.SortStableFunc(out, func(a, b models.MediaItem) int { return strings.Compare(b.Date(), a.Date()) })
	case SortTitle:
		slices.SortStableFunc(out, func(a, b models.MediaItem) int {
			return strings.Compare(strings.ToLower(a.DisplayTitle()), strings.ToLower(b.DisplayTitle()))
		})
	}
	return out
}

// CatalogSlice owns [CatalogState].
type CatalogSlice struct {
	store *Store
}

// fetchList runs a single-list catalog request into the collection chosen by pick.
func (c *CatalogSlice) fetchList(ctx context.Context, op string, pick func(*State) *MediaCollection, call func(context.Context) services.Result[[]models.MediaItem]) error {
	_, err := run(ctx, c.store, request[[]models.MediaItem]{
		slice:     "catalog",
		op:        op,
		lifecycle: func(st *State) *Lifecycle { return &pick(st).Lifecycle },
		call:      call,
		fulfilled: func(st *State, items []models.MediaItem) { pick(st).Data = items },
	})
	return err
}

// GetAllMovies loads popular and top-rated movies into one deduplicated, id-sorted list.
func (c *CatalogSlice) GetAllMovies(ctx context.Context) error {
	_, err := run(ctx, c.store, request[services.AllMoviesPayload]{
		slice:     "catalog",
		op:        "all_movies",
		lifecycle: func(st *State) *Lifecycle { return &st.Catalog.Movies.Lifecycle },
		call:      c.store.clients.Catalog.AllMovies,
		fulfilled: func(st *State, p services.AllMoviesPayload) {
			st.Catalog.Movies.Data = mergeUnique(p.Data.PopularMovies, p.Data.TopRatedMovies)
		},
	})
	return err
}

// GetAllTVShows loads popular and top-rated tv shows into one deduplicated, id-sorted list.
func (c *CatalogSlice) GetAllTVShows(ctx context.Context) error {
	_, err := run(ctx, c.store, request[services.AllTVShowsPayload]{
		slice:     "catalog",
		op:        "all_tv_shows",
		lifecycle: func(st *State) *Lifecycle { return &st.Catalog.TVShows.Lifecycle },
		call:      c.store.clients.Catalog.AllTVShows,
		fulfilled: func(st *State, p services.AllTVShowsPayload) {
			st.Catalog.TVShows.Data = mergeUnique(p.Data.PopularTVShows, p.Data.TopRatedTVShows)
		},
	})
	return err
}

func (c *CatalogSlice) GetTrending(ctx context.Context) error {
	return c.fetchList(ctx, "trending", func(st *State) *MediaCollection { return &st.Catalog.Trending }, c.store.clients.Catalog.Trending)
}

func (c *CatalogSlice) GetAiringToday(ctx context.Context) error {
	return c.fetchList(ctx, "airing_today", func(st *State) *MediaCollection { return &st.Catalog.AiringToday }, c.store.clients.Catalog.AiringToday)
}

func (c *CatalogSlice) GetOnTheAir(ctx context.Context) error {
	return c.fetchList(ctx, "on_the_air", func(st *State) *MediaCollection { return &st.Catalog.OnTheAir }, c.store.clients.Catalog.OnTheAir)
}

// GetPopular loads popular titles of type t into its own lifecycle.
func (c *CatalogSlice) GetPopular(ctx context.Context, t models.MediaType) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}
	return c.fetchList(ctx, "popular_"+t.String(),
		func(st *State) *MediaCollection { return st.Catalog.Popular.at(t) },
		func(ctx context.Context) services.Result[[]models.MediaItem] { return c.store.clients.Catalog.Popular(ctx, t) },
	)
}

// GetTopRated loads top-rated titles of type t into its own lifecycle.
func (c *CatalogSlice) GetTopRated(ctx context.Context, t models.MediaType) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}
	return c.fetchList(ctx, "top_rated_"+t.String(),
		func(st *State) *MediaCollection { return st.Catalog.TopRated.at(t) },
		func(ctx context.Context) services.Result[[]models.MediaItem] { return c.store.clients.Catalog.TopRated(ctx, t) },
	)
}

func (c *CatalogSlice) GetGenres(ctx context.Context, t models.MediaType) error {
	if !t.Valid() {
		return invalidMediaType(t)
	}
	_, err := run(ctx, c.store, request[[]models.Genre]{
		slice:     "catalog",
		op:        "genres_" + t.String(),
		lifecycle: func(st *State) *Lifecycle { return &st.Catalog.Genres.at(t).Lifecycle },
		call: func(ctx context.Context) services.Result[[]models.Genre] {
			return c.store.clients.Catalog.Genres(ctx, t)
		},
		fulfilled: func(st *State, genres []models.Genre) { st.Catalog.Genres.at(t).Data = genres },
	})
	return err
}

// SetFilter replaces the display filter.
func (c *CatalogSlice) SetFilter(f CatalogFilter) {
	c.store.commit(func(st *State) { st.Catalog.Filter = f })
}

// ClearError clears the error of one facet. For per-type facets both types are cleared.
func (c *CatalogSlice) ClearError(f Facet) {
	c.store.commit(func(st *State) { st.Catalog = clearFacetError(st.Catalog, f) })
}
