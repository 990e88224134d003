package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
)

func TestPhase(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{LoadFacet, "load_facet"},
		{FetchWatchlist, "fetch_watchlist"},
		{ExportWatchlist, "export_watchlist"},
		{WriteManifest, "write_manifest"},
		{Phase(99), ""},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestFacetKey(t *testing.T) {
	if got := (FacetKey{Facet: store.FacetTrending}).String(); got != "trending" {
		t.Errorf("expected trending, got %q", got)
	}
	if got := (FacetKey{Facet: store.FacetPopular, MediaType: models.MediaTypeTV}).String(); got != "popular/tv" {
		t.Errorf("expected popular/tv, got %q", got)
	}
}

func TestSendProgress(t *testing.T) {
	e := NewEngine(nil, nil)

	t.Run("Nil Channel", func(t *testing.T) {
		e.sendProgress(nil, ProgressUpdate{})
	})

	t.Run("Full Channel Does Not Block", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		e.sendProgress(ch, ProgressUpdate{Step: 1})
		e.sendProgress(ch, ProgressUpdate{Step: 2})

		if u := <-ch; u.Step != 1 {
			t.Errorf("expected first update to be kept, got step %d", u.Step)
		}
	})
}

func TestPrefetch(t *testing.T) {
	ctx := context.Background()

	t.Run("Loads Every Default Facet", func(t *testing.T) {
		e, s := newTestEngine(t, catalogRoutes())

		result, err := e.Prefetch(ctx, nil, PrefetchOpts{})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(result.Results) != 9 {
			t.Fatalf("expected 9 facet loads, got %d", len(result.Results))
		}
		if result.Succeeded != 9 || result.Failed != 0 {
			t.Errorf("expected 9/0, got %d/%d", result.Succeeded, result.Failed)
		}
		if got := result.Results[0].Key.String(); got != "trending" {
			t.Errorf("expected results in request order, first was %q", got)
		}

		snap := s.Snapshot()
		if len(snap.Catalog.Popular.Movie.Data) != 2 || len(snap.Catalog.Popular.TV.Data) != 2 {
			t.Errorf("expected popular lists for both types, got %+v", snap.Catalog.Popular)
		}
		if len(snap.Catalog.Genres.TV.Data) != 3 {
			t.Errorf("expected tv genres, got %d", len(snap.Catalog.Genres.TV.Data))
		}
		if snap.Catalog.OnTheAir.Status != store.StatusFulfilled {
			t.Errorf("expected on the air to be fulfilled, got %s", snap.Catalog.OnTheAir.Status)
		}
	})

	t.Run("Counts Items Per Facet", func(t *testing.T) {
		e, _ := newTestEngine(t, catalogRoutes())

		result, err := e.Prefetch(ctx, nil, PrefetchOpts{
			Facets:     []store.Facet{store.FacetGenres, store.FacetAiringToday, store.FacetOnTheAir},
			MediaTypes: []models.MediaType{models.MediaTypeMovie},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := map[string]int{"genres/movie": 3, "airingToday": 1, "onTheAir": 0}
		if len(result.Results) != len(want) {
			t.Fatalf("expected %d results, got %d", len(want), len(result.Results))
		}
		for _, res := range result.Results {
			if res.Items != want[res.Key.String()] {
				t.Errorf("%s: expected %d items, got %d", res.Key, want[res.Key.String()], res.Items)
			}
		}
	})

	t.Run("Records Partial Failures", func(t *testing.T) {
		e, s := newTestEngine(t, catalogRoutes(), "GET /api/tv/top-rated")

		result, err := e.Prefetch(ctx, nil, PrefetchOpts{Workers: 2})
		if err != nil {
			t.Fatalf("partial failure should not be an error: %v", err)
		}

		if result.Failed != 1 || result.Succeeded != 8 {
			t.Errorf("expected 8/1, got %d/%d", result.Succeeded, result.Failed)
		}
		failed := result.Errors()
		if len(failed) != 1 || failed[0].Key.String() != "topRated/tv" {
			t.Fatalf("unexpected failures: %+v", failed)
		}

		snap := s.Snapshot()
		if snap.Catalog.TopRated.TV.Status != store.StatusRejected {
			t.Errorf("expected tv top rated to be rejected, got %s", snap.Catalog.TopRated.TV.Status)
		}
		if snap.Catalog.TopRated.Movie.Status != store.StatusFulfilled {
			t.Errorf("expected movie top rated to be unaffected, got %s", snap.Catalog.TopRated.Movie.Status)
		}
	})

	t.Run("Loads The Combined Movie And TV Lists", func(t *testing.T) {
		e, s := newTestEngine(t, catalogRoutes())

		result, err := e.Prefetch(ctx, nil, PrefetchOpts{Facets: []store.Facet{store.FacetMovies, store.FacetTVShows}})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Succeeded != 2 {
			t.Fatalf("expected 2 loads, got %+v", result.Results)
		}

		snap := s.Snapshot()
		if len(snap.Catalog.Movies.Data) != 2 || len(snap.Catalog.TVShows.Data) != 1 {
			t.Errorf("unexpected lists: movies=%d tv=%d", len(snap.Catalog.Movies.Data), len(snap.Catalog.TVShows.Data))
		}
	})

	t.Run("Sends Progress Updates", func(t *testing.T) {
		e, _ := newTestEngine(t, catalogRoutes())
		progress := make(chan ProgressUpdate, 32)

		if _, err := e.Prefetch(ctx, progress, PrefetchOpts{RateLimit: 1000}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		updates := drain(progress)
		if len(updates) != 10 {
			t.Fatalf("expected 10 updates, got %d", len(updates))
		}
		if updates[0].Step != 0 || updates[0].Total != 9 {
			t.Errorf("expected start update first, got %+v", updates[0])
		}

		seen := map[int]bool{}
		for _, u := range updates[1:] {
			if u.Phase != LoadFacet {
				t.Errorf("unexpected phase %s", u.Phase)
			}
			if _, ok := u.Data.(FacetResult); !ok {
				t.Errorf("expected FacetResult data, got %T", u.Data)
			}
			seen[u.Step] = true
		}
		for step := 1; step <= 9; step++ {
			if !seen[step] {
				t.Errorf("missing step %d", step)
			}
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		e, _ := newTestEngine(t, catalogRoutes())
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := e.Prefetch(canceled, nil, PrefetchOpts{RateLimit: 5})
		if !errors.Is(err, shared.ErrRequestCanceled) {
			t.Fatalf("expected ErrRequestCanceled, got %v", err)
		}
		if result == nil || result.Succeeded != 0 {
			t.Errorf("expected no successful loads, got %+v", result)
		}
	})

	t.Run("Unknown Facet", func(t *testing.T) {
		e, _ := newTestEngine(t, catalogRoutes())

		_, err := e.Prefetch(ctx, nil, PrefetchOpts{Facets: []store.Facet{"upcoming"}})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Unknown Media Type", func(t *testing.T) {
		e, _ := newTestEngine(t, catalogRoutes())

		_, err := e.Prefetch(ctx, nil, PrefetchOpts{MediaTypes: []models.MediaType{"podcast"}})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Without Store", func(t *testing.T) {
		_, err := NewEngine(nil, nil).Prefetch(ctx, nil, PrefetchOpts{})
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
