// package formatter renders watchlist and catalog data as CSV, Markdown, JSON and plain text
package formatter

import (
	"bytes"
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// Format is an export file format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists every supported [Format].
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or a common alias ("md", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
	}
}

// Ext returns the file extension for f, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	case FormatCSV:
		return ".csv"
	default:
		return ".json"
	}
}

// SortField orders watchlist entries.
type SortField string

const (
	SortByAdded  SortField = "added"  // newest first
	SortByTitle  SortField = "title"  // A-Z, case-insensitive
	SortByRating SortField = "rating" // highest first
)

// ParseSortField parses a sort flag value; empty means [SortByAdded].
func ParseSortField(s string) (SortField, error) {
	switch SortField(strings.ToLower(strings.TrimSpace(s))) {
	case "", SortByAdded:
		return SortByAdded, nil
	case SortByTitle:
		return SortByTitle, nil
	case SortByRating:
		return SortByRating, nil
	default:
		return "", fmt.Errorf("%w: unknown sort field %q", shared.ErrInvalidFlag, s)
	}
}

// SortEntries returns a sorted copy of entries. Ties keep their original order.
func SortEntries(entries []models.WatchlistEntry, by SortField) []models.WatchlistEntry {
	sorted := slices.Clone(entries)
	slices.SortStableFunc(sorted, func(a, b models.WatchlistEntry) int {
		switch by {
		case SortByTitle:
			return cmp.Compare(strings.ToLower(a.Title), strings.ToLower(b.Title))
		case SortByRating:
			return cmp.Compare(b.VoteAverage, a.VoteAverage)
		default:
			return b.AddedAt.Compare(a.AddedAt)
		}
	})
	return sorted
}

// FormatDate renders a catalog date ("2006-01-02") as "Jan 2, 2006".
//
// Missing dates render as "Unknown"; malformed ones are returned unchanged.
func FormatDate(s string) string {
	if s == "" {
		return "Unknown"
	}
	t, ok := models.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format("Jan 2, 2006")
}

// FormatRating renders a vote average with one decimal, or "-" when unrated.
func FormatRating(v float64) string {
	if v <= 0 {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func formatAdded(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// DescribeMedia renders a one-line summary of a catalog item.
func DescribeMedia(item models.MediaItem) string {
	year := "----"
	if y := item.Year(); y > 0 {
		year = strconv.Itoa(y)
	}
	return fmt.Sprintf("%-5s %8d  %s (%s)  %s", item.MediaType, item.ID, item.DisplayTitle(), year, FormatRating(item.VoteAverage))
}

// DescribeEntry renders a one-line summary of a watchlist entry.
func DescribeEntry(e models.WatchlistEntry) string {
	return fmt.Sprintf("%-5s %8d  %s  %s  %s", e.MediaType, e.ID, e.Title, FormatDate(e.ReleaseDate), FormatRating(e.VoteAverage))
}

// ExportToCSV converts watchlist entries to CSV with columns: ID, Media Type, Title, Release Date, Rating, Added At
func ExportToCSV(entries []models.WatchlistEntry) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Media Type", "Title", "Release Date", "Rating", "Added At"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.ID),
			e.MediaType.String(),
			e.Title,
			e.ReleaseDate,
			strconv.FormatFloat(e.VoteAverage, 'f', -1, 64),
			formatAdded(e.AddedAt),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts watchlist entries to a Markdown document grouped into movies and TV shows.
func ExportToMarkdown(title string, entries []models.WatchlistEntry) ([]byte, error) {
	var buf bytes.Buffer

	if title == "" {
		title = "Watchlist"
	}
	fmt.Fprintf(&buf, "# %s\n\n", title)
	fmt.Fprintf(&buf, "**Titles**: %d\n\n", len(entries))

	for _, group := range []struct {
		heading string
		t       models.MediaType
	}{{"Movies", models.MediaTypeMovie}, {"TV Shows", models.MediaTypeTV}} {
		n := 0
		for _, e := range entries {
			if e.MediaType != group.t {
				continue
			}
			if n == 0 {
				fmt.Fprintf(&buf, "## %s\n\n", group.heading)
			}
			n++
			fmt.Fprintf(&buf, "%d. **%s** (%s) ★ %s\n", n, e.Title, FormatDate(e.ReleaseDate), FormatRating(e.VoteAverage))
			if e.Overview != "" {
				fmt.Fprintf(&buf, "   > %s\n", e.Overview)
			}
		}
		if n > 0 {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts watchlist entries to plain text, one per line.
func ExportToText(entries []models.WatchlistEntry) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Watchlist: %d titles\n\n", len(entries))
	for i, e := range entries {
		fmt.Fprintf(&buf, "%d. [%s] %s - %s\n", i+1, e.MediaType, e.Title, FormatDate(e.ReleaseDate))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts watchlist entries to indented JSON. A nil list encodes as [].
func ExportToJSON(entries []models.WatchlistEntry) ([]byte, error) {
	if entries == nil {
		entries = []models.WatchlistEntry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Render converts entries to the given format.
func Render(f Format, entries []models.WatchlistEntry) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(entries)
	case FormatMarkdown:
		return ExportToMarkdown("", entries)
	case FormatText:
		return ExportToText(entries)
	case FormatJSON:
		return ExportToJSON(entries)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, f)
	}
}

// WriteExport renders entries in format f and writes them to path.
func WriteExport(f Format, entries []models.WatchlistEntry, path string) (string, error) {
	if path == "" {
		path = "watchlist" + f.Ext()
	}

	data, err := Render(f, entries)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}

	return path, nil
}

// ManifestFile is one entry of a [Manifest].
type ManifestFile struct {
	Format Format `json:"format"`
	Path   string `json:"path,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Manifest summarizes an export run.
type Manifest struct {
	GeneratedAt time.Time      `json:"generatedAt"`
	Entries     int            `json:"entries"`
	SortBy      SortField      `json:"sortBy"`
	Files       []ManifestFile `json:"files"`
}

// WriteManifest writes m as indented JSON to path.
func WriteManifest(m Manifest, path string) error {
	if m.Files == nil {
		m.Files = []ManifestFile{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
