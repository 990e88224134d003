package tasks

import (
	"fmt"

	"github.com/desertthunder/marquee/internal/formatter"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	LoadFacet Phase = iota
	FetchWatchlist
	ExportWatchlist
	WriteManifest
)

func (p Phase) String() string {
	switch p {
	case LoadFacet:
		return "load_facet"
	case FetchWatchlist:
		return "fetch_watchlist"
	case ExportWatchlist:
		return "export_watchlist"
	case WriteManifest:
		return "write_manifest"
	default:
		return ""
	}
}

func prefetchStartUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadFacet,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Loading %d catalog collections...", total),
	}
}

func facetLoadedUpdate(step, total int, res FacetResult) ProgressUpdate {
	if res.Err != nil {
		return ProgressUpdate{
			Phase:   LoadFacet,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, res.Key, res.Err),
			Data:    res,
		}
	}
	return ProgressUpdate{
		Phase:   LoadFacet,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, res.Key),
		Data:    res,
	}
}

func fetchWatchlistUpdate() ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchWatchlist,
		Step:    1,
		Total:   1,
		Message: "Fetching watchlist...",
	}
}

func exportedUpdate(step, total int, file formatter.ManifestFile) ProgressUpdate {
	if file.Error != "" {
		return ProgressUpdate{
			Phase:   ExportWatchlist,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %s", step, total, file.Format, file.Error),
			Data:    file,
		}
	}
	return ProgressUpdate{
		Phase:   ExportWatchlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s", step, total, file.Path),
		Data:    file,
	}
}

func manifestUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteManifest,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Manifest written to %s", path),
	}
}
