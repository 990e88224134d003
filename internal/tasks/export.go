package tasks

import (
	"cmp"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync/atomic"

	"github.com/sourcegraph/conc/pool"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// ExportOpts configures [Engine.ExportWatchlist].
type ExportOpts struct {
	Formats   []formatter.Format  // empty writes every format
	OutputDir string              // default: watchlist_export_{epoch}
	SortBy    formatter.SortField // default: added date
	Refresh   bool                // fetch the watchlist before exporting
}

// ExportResult summarizes an export run.
type ExportResult struct {
	OutputDirectory string
	Entries         int
	Files           []formatter.ManifestFile // in format order
	Succeeded       int
	Failed          int
	ManifestPath    string
}

// ExportWatchlist writes the watchlist held by the store in each requested format, concurrently,
// followed by a manifest describing the run.
//
// A failed format is recorded in the result and the manifest; it does not stop the others.
func (e *Engine) ExportWatchlist(ctx context.Context, progress chan<- ProgressUpdate, opts ExportOpts) (*ExportResult, error) {
	if e.store == nil {
		return nil, fmt.Errorf("%w: store not initialized", shared.ErrServiceUnavailable)
	}

	if len(opts.Formats) == 0 {
		opts.Formats = formatter.Formats
	}
	if opts.SortBy == "" {
		opts.SortBy = formatter.SortByAdded
	}
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("watchlist_export_%d", e.now().Unix())
	}

	if opts.Refresh {
		e.sendProgress(progress, fetchWatchlistUpdate())
		if err := e.store.Watchlist.FetchWatchlist(ctx); err != nil {
			return nil, fmt.Errorf("failed to fetch watchlist: %w", err)
		}
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	entries := formatter.SortEntries(e.store.Snapshot().Watchlist.Items, opts.SortBy)
	result := &ExportResult{
		OutputDirectory: opts.OutputDir,
		Entries:         len(entries),
	}

	type written struct {
		index int
		file  formatter.ManifestFile
	}

	total := len(opts.Formats)
	var done atomic.Int64
	p := pool.NewWithResults[written]().WithMaxGoroutines(total)
	for i, f := range opts.Formats {
		p.Go(func() written {
			file := e.exportFormat(ctx, f, entries, opts.OutputDir)
			e.sendProgress(progress, exportedUpdate(int(done.Add(1)), total, file))
			return written{index: i, file: file}
		})
	}

	files := p.Wait()
	slices.SortFunc(files, func(a, b written) int { return cmp.Compare(a.index, b.index) })
	for _, w := range files {
		result.Files = append(result.Files, w.file)
		if w.file.Error != "" {
			result.Failed++
		} else {
			result.Succeeded++
		}
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	manifest := formatter.Manifest{
		GeneratedAt: e.now().UTC(),
		Entries:     len(entries),
		SortBy:      opts.SortBy,
		Files:       result.Files,
	}
	if err := formatter.WriteManifest(manifest, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	e.sendProgress(progress, manifestUpdate(manifestPath))
	return result, nil
}

func (e *Engine) exportFormat(ctx context.Context, f formatter.Format, entries []models.WatchlistEntry, dir string) formatter.ManifestFile {
	file := formatter.ManifestFile{Format: f}
	if err := ctx.Err(); err != nil {
		file.Error = err.Error()
		return file
	}

	path, err := formatter.WriteExport(f, entries, filepath.Join(dir, "watchlist"+f.Ext()))
	if err != nil {
		e.logger.Warn("export failed", "format", f, "err", err)
		file.Error = err.Error()
		return file
	}
	file.Path = path
	return file
}
