package tasks

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/store"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

const (
	resultsBody = `{"results":[{"id":1,"title":"One"},{"id":2,"title":"Two"}]}`
	genresBody  = `{"genres":[{"id":28,"name":"Action"},{"id":18,"name":"Drama"},{"id":35,"name":"Comedy"}]}`
)

// catalogRoutes answers every catalog facet with a small fixture.
func catalogRoutes() map[string]string {
	return map[string]string{
		"GET /api/trending":        resultsBody,
		"GET /api/movie/popular":   resultsBody,
		"GET /api/tv/popular":      resultsBody,
		"GET /api/movie/top-rated": resultsBody,
		"GET /api/tv/top-rated":    resultsBody,
		"GET /api/genres/movie":    genresBody,
		"GET /api/genres/tv":       genresBody,
		"GET /api/tv/airing-today": `{"results":[{"id":7,"name":"Daily"}]}`,
		"GET /api/tv/on-the-air":   `{"results":[]}`,
		"GET /api/movies":          `{"data":{"popularMovies":[{"id":1}],"topRatedMovies":[{"id":2}]}}`,
		"GET /api/tv":              `{"data":{"popularTVShows":[{"id":3}],"topRatedTVShows":[]}}`,
	}
}

// newTestEngine serves routes (pattern -> JSON body) and fails every pattern in failing with a 500.
func newTestEngine(t *testing.T, routes map[string]string, failing ...string) (*Engine, *store.Store) {
	t.Helper()

	mux := http.NewServeMux()
	for pattern, body := range routes {
		if slices.Contains(failing, pattern) {
			continue
		}
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(body))
		})
	}
	for _, pattern := range failing {
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"boom"}`, http.StatusInternalServerError)
		})
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	g := services.NewGateway(services.GatewayOpts{BaseURL: srv.URL})
	s := store.New(store.Options{
		Clients: services.NewClients(g),
		Clock:   func() time.Time { return fixedNow },
	})

	e := NewEngine(s, nil)
	e.now = func() time.Time { return fixedNow }
	return e, s
}

func drain(ch chan ProgressUpdate) []ProgressUpdate {
	var updates []ProgressUpdate
	for {
		select {
		case u := <-ch:
			updates = append(updates, u)
		default:
			return updates
		}
	}
}
