package services

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/desertthunder/marquee/internal/models"
)

// AllMoviesPayload is the aggregate "all movies" response.
type AllMoviesPayload struct {
	Data struct {
		PopularMovies  []models.MediaItem `json:"popularMovies"`
		TopRatedMovies []models.MediaItem `json:"topRatedMovies"`
	} `json:"data"`
}

// AllTVShowsPayload is the aggregate "all tv shows" response.
type AllTVShowsPayload struct {
	Data struct {
		PopularTVShows  []models.MediaItem `json:"popularTVShows"`
		TopRatedTVShows []models.MediaItem `json:"topRatedTVShows"`
	} `json:"data"`
}

type resultsEnvelope struct {
	Results []models.MediaItem `json:"results"`
}

type genresEnvelope struct {
	Genres []models.Genre `json:"genres"`
}

type videosEnvelope struct {
	Results []models.Video `json:"results"`
}

// CatalogClient calls the media catalog endpoints.
type CatalogClient struct {
	gateway *Gateway
}

// NewCatalogClient creates a [CatalogClient].
func NewCatalogClient(g *Gateway) *CatalogClient {
	return &CatalogClient{gateway: g}
}

// results fetches a {results: [...]} list and stamps mediaType on items that omit it.
func (c *CatalogClient) results(ctx context.Context, ep Endpoint, mediaType models.MediaType) Result[[]models.MediaItem] {
	return Map(Call[resultsEnvelope](ctx, c.gateway, ep, nil), func(e resultsEnvelope) []models.MediaItem {
		return stampMediaType(e.Results, mediaType)
	})
}

func stampMediaType(items []models.MediaItem, mediaType models.MediaType) []models.MediaItem {
	if items == nil {
		return []models.MediaItem{}
	}
	if mediaType == "" {
		return items
	}
	for i := range items {
		if items[i].MediaType == "" {
			items[i].MediaType = mediaType
		}
	}
	return items
}

// AllMovies fetches popular and top-rated movies in one call.
func (c *CatalogClient) AllMovies(ctx context.Context) Result[AllMoviesPayload] {
	ep := endpoint("catalog.movies", http.MethodGet, "/api/movies", "Failed to fetch movies")
	return Map(Call[AllMoviesPayload](ctx, c.gateway, ep, nil), func(p AllMoviesPayload) AllMoviesPayload {
		p.Data.PopularMovies = stampMediaType(p.Data.PopularMovies, models.MediaTypeMovie)
		p.Data.TopRatedMovies = stampMediaType(p.Data.TopRatedMovies, models.MediaTypeMovie)
		return p
	})
}

// AllTVShows fetches popular and top-rated tv shows in one call.
func (c *CatalogClient) AllTVShows(ctx context.Context) Result[AllTVShowsPayload] {
	ep := endpoint("catalog.tv", http.MethodGet, "/api/tv", "Failed to fetch TV shows")
	return Map(Call[AllTVShowsPayload](ctx, c.gateway, ep, nil), func(p AllTVShowsPayload) AllTVShowsPayload {
		p.Data.PopularTVShows = stampMediaType(p.Data.PopularTVShows, models.MediaTypeTV)
		p.Data.TopRatedTVShows = stampMediaType(p.Data.TopRatedTVShows, models.MediaTypeTV)
		return p
	})
}

// Trending fetches trending titles of both types.
func (c *CatalogClient) Trending(ctx context.Context) Result[[]models.MediaItem] {
	return c.results(ctx, endpoint("catalog.trending", http.MethodGet, "/api/trending", "Failed to fetch trending"), "")
}

// Popular fetches popular titles of one type.
func (c *CatalogClient) Popular(ctx context.Context, t models.MediaType) Result[[]models.MediaItem] {
	ep := endpoint("catalog.popular", http.MethodGet, fmt.Sprintf("/api/%s/popular", t), fmt.Sprintf("Failed to fetch popular %s", noun(t)))
	return c.results(ctx, ep, t)
}

// TopRated fetches top-rated titles of one type.
func (c *CatalogClient) TopRated(ctx context.Context, t models.MediaType) Result[[]models.MediaItem] {
	ep := endpoint("catalog.top_rated", http.MethodGet, fmt.Sprintf("/api/%s/top-rated", t), fmt.Sprintf("Failed to fetch top rated %s", noun(t)))
	return c.results(ctx, ep, t)
}

// Genres fetches the genre list for one type.
func (c *CatalogClient) Genres(ctx context.Context, t models.MediaType) Result[[]models.Genre] {
	ep := endpoint("catalog.genres", http.MethodGet, fmt.Sprintf("/api/genres/%s", t), fmt.Sprintf("Failed to fetch %s genres", t))
	return Map(Call[genresEnvelope](ctx, c.gateway, ep, nil), func(e genresEnvelope) []models.Genre { return e.Genres })
}

// AiringToday fetches tv episodes airing today.
func (c *CatalogClient) AiringToday(ctx context.Context) Result[[]models.MediaItem] {
	ep := endpoint("catalog.airing_today", http.MethodGet, "/api/tv/airing-today", "Failed to fetch airing today")
	return c.results(ctx, ep, models.MediaTypeTV)
}

// OnTheAir fetches tv shows currently on the air.
func (c *CatalogClient) OnTheAir(ctx context.Context) Result[[]models.MediaItem] {
	ep := endpoint("catalog.on_the_air", http.MethodGet, "/api/tv/on-the-air", "Failed to fetch on the air")
	return c.results(ctx, ep, models.MediaTypeTV)
}

// Details fetches the full record for one title.
func (c *CatalogClient) Details(ctx context.Context, t models.MediaType, id int) Result[models.MediaDetails] {
	ep := endpoint("catalog.details", http.MethodGet, fmt.Sprintf("/api/%s/%d", t, id), "Failed to fetch details")
	return Map(Call[models.MediaDetails](ctx, c.gateway, ep, nil), func(d models.MediaDetails) models.MediaDetails {
		if d.MediaType == "" {
			d.MediaType = t
		}
		return d
	})
}

// Credits fetches cast and crew for one title.
func (c *CatalogClient) Credits(ctx context.Context, t models.MediaType, id int) Result[models.Credits] {
	ep := endpoint("catalog.credits", http.MethodGet, fmt.Sprintf("/api/%s/%d/credits", t, id), "Failed to fetch credits")
	return Call[models.Credits](ctx, c.gateway, ep, nil)
}

// Videos fetches trailers and clips for one title.
func (c *CatalogClient) Videos(ctx context.Context, t models.MediaType, id int) Result[[]models.Video] {
	ep := endpoint("catalog.videos", http.MethodGet, fmt.Sprintf("/api/%s/%d/videos", t, id), "Failed to fetch videos")
	return Map(Call[videosEnvelope](ctx, c.gateway, ep, nil), func(e videosEnvelope) []models.Video { return e.Results })
}

// Images fetches artwork for one title.
func (c *CatalogClient) Images(ctx context.Context, t models.MediaType, id int) Result[models.Images] {
	ep := endpoint("catalog.images", http.MethodGet, fmt.Sprintf("/api/%s/%d/images", t, id), "Failed to fetch images")
	return Call[models.Images](ctx, c.gateway, ep, nil)
}

// Recommendations fetches titles similar to one title.
func (c *CatalogClient) Recommendations(ctx context.Context, t models.MediaType, id int) Result[[]models.MediaItem] {
	ep := endpoint("catalog.recommendations", http.MethodGet, fmt.Sprintf("/api/%s/%d/recommendations", t, id), "Failed to fetch recommendations")
	return c.results(ctx, ep, t)
}

// Search runs a multi-type catalog search.
func (c *CatalogClient) Search(ctx context.Context, query string) Result[[]models.MediaItem] {
	ep := endpoint("catalog.search", http.MethodGet, "/api/search", "Search failed").WithQuery(url.Values{"query": {query}})
	return c.results(ctx, ep, "")
}

func noun(t models.MediaType) string {
	if t == models.MediaTypeTV {
		return "TV shows"
	}
	return "movies"
}
