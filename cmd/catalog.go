package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

// mediaArgs reads the id argument and --type flag shared by the single-title commands.
func mediaArgs(cmd *cli.Command) (int, models.MediaType, error) {
	raw := cmd.StringArg("id")
	if raw == "" {
		return 0, "", fmt.Errorf("%w: title id", shared.ErrMissingArgument)
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("%w: id must be a positive integer, got %q", shared.ErrInvalidArgument, raw)
	}
	t, err := models.ParseMediaType(cmd.String("type"))
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}
	return id, t, nil
}

func (r *Runner) writeMedia(items []models.MediaItem, limit int) {
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	for i, m := range items {
		r.writePlain("%3d. %s\n", i+1, formatter.DescribeMedia(m))
	}
}

// CatalogList loads one catalog collection, named by the subcommand, and prints it.
func (r *Runner) CatalogList(ctx context.Context, cmd *cli.Command) error {
	s, err := r.session(ctx, false)
	if err != nil {
		return err
	}

	var t models.MediaType
	if cmd.IsSet("type") || cmd.Name == "popular" || cmd.Name == "top-rated" {
		if t, err = models.ParseMediaType(cmd.String("type")); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
	}

	var load func(context.Context) error
	var pick func(store.State) []models.MediaItem
	switch cmd.Name {
	case "trending":
		load, pick = s.Catalog.GetTrending, func(st store.State) []models.MediaItem { return st.Catalog.Trending.Data }
	case "popular":
		load = func(ctx context.Context) error { return s.Catalog.GetPopular(ctx, t) }
		pick = func(st store.State) []models.MediaItem { return st.Catalog.Popular.Get(t).Data }
	case "top-rated":
		load = func(ctx context.Context) error { return s.Catalog.GetTopRated(ctx, t) }
		pick = func(st store.State) []models.MediaItem { return st.Catalog.TopRated.Get(t).Data }
	case "airing-today":
		load, pick = s.Catalog.GetAiringToday, func(st store.State) []models.MediaItem { return st.Catalog.AiringToday.Data }
	case "on-the-air":
		load, pick = s.Catalog.GetOnTheAir, func(st store.State) []models.MediaItem { return st.Catalog.OnTheAir.Data }
	case "movies":
		load, pick = s.Catalog.GetAllMovies, func(st store.State) []models.MediaItem { return st.Catalog.Movies.Data }
	case "tv":
		load, pick = s.Catalog.GetAllTVShows, func(st store.State) []models.MediaItem { return st.Catalog.TVShows.Data }
	default:
		return fmt.Errorf("%w: unknown collection %q", shared.ErrInvalidArgument, cmd.Name)
	}

	r.logger.Info("loading collection", "collection", cmd.Name, "type", t)
	if err := load(ctx); err != nil {
		return err
	}

	filter := store.CatalogFilter{MediaType: t, GenreID: cmd.Int("genre"), SortBy: cmd.String("sort")}
	items := store.ApplyFilter(pick(s.Snapshot()), filter)

	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}

	r.writePlainHeader(fmt.Sprintf("%s (%d)", strings.ReplaceAll(cmd.Name, "-", " "), len(items)))
	r.writeMedia(items, cmd.Int("limit"))
	return nil
}

// CatalogGenres lists the genres for one media type.
func (r *Runner) CatalogGenres(ctx context.Context, cmd *cli.Command) error {
	t, err := models.ParseMediaType(cmd.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
	}

	s, err := r.session(ctx, false)
	if err != nil {
		return err
	}
	if err := s.Catalog.GetGenres(ctx, t); err != nil {
		return err
	}

	genres := s.Snapshot().Catalog.Genres.Get(t).Data
	if cmd.Bool("json") {
		return r.writeJSON(genres, true)
	}
	for _, g := range genres {
		r.writePlain("%6d  %s\n", g.ID, g.Name)
	}
	return nil
}

// CatalogDetails loads every detail resource for a title and prints a summary.
//
// Individual resource failures are reported inline; only a failed details call is an error.
func (r *Runner) CatalogDetails(ctx context.Context, cmd *cli.Command) error {
	id, t, err := mediaArgs(cmd)
	if err != nil {
		return err
	}

	s, err := r.session(ctx, false)
	if err != nil {
		return err
	}

	r.logger.Info("fetching details", "id", id, "type", t)
	if err := s.Details.FetchAll(ctx, t, id); err != nil {
		r.logger.Warn("some detail requests failed", "error", err)
	}

	d := s.Snapshot().Details
	if d.Details.Error != "" || d.Details.Data == nil {
		return fmt.Errorf("%w: %s", shared.ErrMediaNotFound, d.Details.Error)
	}
	s.User.AddRecentlyViewed(d.Details.Data.MediaItem)

	if cmd.Bool("json") {
		return r.writeJSON(d, true)
	}

	m := d.Details.Data
	r.writePlainHeader(fmt.Sprintf("%s (%s)", m.DisplayTitle(), formatter.FormatDate(m.Date())))
	if m.Tagline != "" {
		r.writePlain("%s\n\n", m.Tagline)
	}
	r.writePlain("Rating:  %s\n", formatter.FormatRating(m.VoteAverage))
	if m.Runtime > 0 {
		r.writePlain("Runtime: %d min\n", m.Runtime)
	}
	if m.NumberOfSeasons > 0 {
		r.writePlain("Seasons: %d (%d episodes)\n", m.NumberOfSeasons, m.NumberOfEpisodes)
	}
	if len(m.Genres) > 0 {
		names := make([]string, len(m.Genres))
		for i, g := range m.Genres {
			names[i] = g.Name
		}
		r.writePlain("Genres:  %s\n", strings.Join(names, ", "))
	}
	if m.Overview != "" {
		r.writePlainln("%s", m.Overview)
	}

	switch {
	case d.Credits.Error != "":
		r.writePlainln("Cast unavailable: %s", d.Credits.Error)
	case d.Credits.Data != nil && len(d.Credits.Data.Cast) > 0:
		r.writePlainln("Starring:")
		for _, c := range d.Credits.Data.Cast {
			r.writePlain("  %s as %s\n", c.Name, c.Character)
		}
	}

	if len(d.Videos.Data) > 0 {
		r.writePlainln("Videos:")
		for _, v := range d.Videos.Data {
			r.writePlain("  %s (%s on %s)\n", v.Name, v.Type, v.Site)
		}
	}

	if len(d.Recommendations.Data) > 0 {
		r.writePlainln("More like this:")
		r.writeMedia(d.Recommendations.Data, 5)
	}
	return nil
}

// CatalogPrefetch loads catalog collections concurrently and prints progress as each one lands.
func (r *Runner) CatalogPrefetch(ctx context.Context, cmd *cli.Command) error {
	facets := make([]store.Facet, 0, len(cmd.StringSlice("facet")))
	for _, f := range cmd.StringSlice("facet") {
		facets = append(facets, store.Facet(f))
	}
	types := make([]models.MediaType, 0, len(cmd.StringSlice("type")))
	for _, raw := range cmd.StringSlice("type") {
		t, err := models.ParseMediaType(raw)
		if err != nil {
			return fmt.Errorf("%w: %v", shared.ErrInvalidFlag, err)
		}
		types = append(types, t)
	}

	if _, err := r.session(ctx, false); err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()

	result, err := r.engine.Prefetch(ctx, progress, tasks.PrefetchOpts{
		Facets:     facets,
		MediaTypes: types,
		Workers:    cmd.Int("workers"),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Loaded %d collections in %s, %d failed", result.Succeeded, result.Elapsed.Round(time.Millisecond), result.Failed)
	for _, f := range result.Errors() {
		r.writePlain("  ✗ %s: %v\n", f.Key, f.Err)
	}
	return nil
}

// Search runs a multi-search and prints the results.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(cmd.StringArg("query"))
	if query == "" {
		return fmt.Errorf("%w: search query", shared.ErrMissingArgument)
	}

	s, err := r.session(ctx, false)
	if err != nil {
		return err
	}
	if err := s.Search.Search(ctx, query); err != nil {
		return err
	}

	results := s.Snapshot().Search.SearchResults
	if cmd.Bool("json") {
		return r.writeJSON(results, true)
	}
	if len(results) == 0 {
		return r.writePlain("No results for %q\n", query)
	}
	r.writePlainHeader(fmt.Sprintf("Results for %q (%d)", query, len(results)))
	r.writeMedia(results, cmd.Int("limit"))
	return nil
}
