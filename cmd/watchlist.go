package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

// watchlist restores the session and loads the authoritative list.
func (r *Runner) watchlist(ctx context.Context) (*store.Store, error) {
	s, err := r.session(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.Optimistic.Fetch(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// lookupMedia resolves a title to its catalog record, preferring the saved copy.
func (r *Runner) lookupMedia(ctx context.Context, s *store.Store, id int, t models.MediaType) (models.MediaItem, error) {
	for _, e := range s.Snapshot().Watchlist.Items {
		if e.Matches(id, t) {
			return e.Media(), nil
		}
	}

	if err := s.Details.FetchDetails(ctx, t, id); err != nil {
		return models.MediaItem{}, fmt.Errorf("%w: %s %d: %w", shared.ErrMediaNotFound, t, id, err)
	}
	item := s.Snapshot().Details.Details.Data.MediaItem
	item.MediaType = t
	return item, nil
}

// WatchlistList prints the saved titles.
func (r *Runner) WatchlistList(ctx context.Context, cmd *cli.Command) error {
	by, err := formatter.ParseSortField(cmd.String("sort"))
	if err != nil {
		return err
	}

	s, err := r.watchlist(ctx)
	if err != nil {
		return err
	}

	entries := formatter.SortEntries(s.Snapshot().Watchlist.Items, by)
	if cmd.Bool("json") {
		return r.writeJSON(entries, true)
	}
	if len(entries) == 0 {
		return r.writePlain("Your watchlist is empty\n")
	}

	r.writePlainHeader(fmt.Sprintf("Watchlist (%d)", len(entries)))
	for i, e := range entries {
		r.writePlain("%3d. %s\n", i+1, formatter.DescribeEntry(e))
	}
	return nil
}

// WatchlistAdd saves a title.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	id, t, err := mediaArgs(cmd)
	if err != nil {
		return err
	}

	s, err := r.watchlist(ctx)
	if err != nil {
		return err
	}
	if s.Snapshot().Watchlist.Contains(id, t) {
		return r.writePlain("Already on your watchlist\n")
	}

	item, err := r.lookupMedia(ctx, s, id, t)
	if err != nil {
		return err
	}
	if err := s.Optimistic.Add(ctx, item); err != nil {
		return err
	}
	return r.writePlain("✓ Added %s to your watchlist\n", item.DisplayTitle())
}

// WatchlistRemove drops a saved title.
func (r *Runner) WatchlistRemove(ctx context.Context, cmd *cli.Command) error {
	id, t, err := mediaArgs(cmd)
	if err != nil {
		return err
	}

	s, err := r.watchlist(ctx)
	if err != nil {
		return err
	}
	if !s.Snapshot().Watchlist.Contains(id, t) {
		return fmt.Errorf("%w: %s %d is not on your watchlist", shared.ErrMediaNotFound, t, id)
	}

	if err := s.Optimistic.Remove(ctx, id, t); err != nil {
		return err
	}
	return r.writePlain("✓ Removed %s %d from your watchlist\n", t, id)
}

// WatchlistToggle saves a title or removes it when it is already saved.
func (r *Runner) WatchlistToggle(ctx context.Context, cmd *cli.Command) error {
	id, t, err := mediaArgs(cmd)
	if err != nil {
		return err
	}

	s, err := r.watchlist(ctx)
	if err != nil {
		return err
	}

	item, err := r.lookupMedia(ctx, s, id, t)
	if err != nil {
		return err
	}
	added, err := s.Optimistic.Toggle(ctx, item)
	if err != nil {
		return err
	}
	if added {
		return r.writePlain("✓ Added %s to your watchlist\n", item.DisplayTitle())
	}
	return r.writePlain("✓ Removed %s from your watchlist\n", item.DisplayTitle())
}

// WatchlistStatus asks the server whether a title is saved.
func (r *Runner) WatchlistStatus(ctx context.Context, cmd *cli.Command) error {
	id, t, err := mediaArgs(cmd)
	if err != nil {
		return err
	}

	s, err := r.session(ctx, true)
	if err != nil {
		return err
	}
	in, err := s.Watchlist.CheckWatchlistStatus(ctx, id, t)
	if err != nil {
		return err
	}
	if in {
		return r.writePlain("✓ %s %d is on your watchlist\n", t, id)
	}
	return r.writePlain("✗ %s %d is not on your watchlist\n", t, id)
}

// WatchlistClear removes every saved title.
func (r *Runner) WatchlistClear(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		return fmt.Errorf("%w: pass --yes to clear the watchlist", shared.ErrMissingArgument)
	}

	s, err := r.session(ctx, true)
	if err != nil {
		return err
	}
	if err := s.Watchlist.ClearWatchlist(ctx); err != nil {
		return err
	}
	return r.writePlain("✓ Watchlist cleared\n")
}

// WatchlistExport writes the watchlist in every requested format plus a manifest.
func (r *Runner) WatchlistExport(ctx context.Context, cmd *cli.Command) error {
	by, err := formatter.ParseSortField(cmd.String("sort"))
	if err != nil {
		return err
	}
	var formats []formatter.Format
	for _, raw := range cmd.StringSlice("format") {
		f, err := formatter.ParseFormat(raw)
		if err != nil {
			return err
		}
		formats = append(formats, f)
	}

	if _, err := r.session(ctx, true); err != nil {
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

	result, err := r.engine.ExportWatchlist(ctx, progress, tasks.ExportOpts{
		Formats:   formats,
		OutputDir: cmd.String("output"),
		SortBy:    by,
		Refresh:   true,
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d titles to %s", result.Entries, result.OutputDirectory)
	for _, f := range result.Files {
		if f.Error != "" {
			r.writePlain("  ✗ %s: %s\n", f.Format, f.Error)
			continue
		}
		r.writePlain("  ✓ %s\n", filepath.Base(f.Path))
	}
	r.writePlain("Manifest: %s\n", result.ManifestPath)

	if result.Failed > 0 {
		return fmt.Errorf("%d of %d formats failed", result.Failed, result.Failed+result.Succeeded)
	}
	return nil
}
