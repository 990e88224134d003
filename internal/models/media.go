package models

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// MediaType discriminates movies from tv shows.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// MediaTypes lists every [MediaType] in a stable order.
var MediaTypes = []MediaType{MediaTypeMovie, MediaTypeTV}

func (t MediaType) String() string { return string(t) }

// Valid reports whether t is a known media type.
func (t MediaType) Valid() bool {
	return t == MediaTypeMovie || t == MediaTypeTV
}

// ParseMediaType parses user input such as "movie", "movies", "tv" or "show".
func ParseMediaType(s string) (MediaType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie", "movies", "film":
		return MediaTypeMovie, nil
	case "tv", "show", "shows", "series":
		return MediaTypeTV, nil
	default:
		return "", fmt.Errorf("unknown media type %q", s)
	}
}

// dateLayout is the date format used by the catalog API.
const dateLayout = "2006-01-02"

// MediaItem is a catalog record keyed by an integer id.
type MediaItem struct {
	ID           int       `json:"id"`
	MediaType    MediaType `json:"media_type,omitempty"`
	Title        string    `json:"title,omitempty"`
	Name         string    `json:"name,omitempty"` // tv shows use name instead of title
	Overview     string    `json:"overview,omitempty"`
	PosterPath   string    `json:"poster_path,omitempty"`
	BackdropPath string    `json:"backdrop_path,omitempty"`
	ReleaseDate  string    `json:"release_date,omitempty"`
	FirstAirDate string    `json:"first_air_date,omitempty"`
	VoteAverage  float64   `json:"vote_average,omitempty"`
	Popularity   float64   `json:"popularity,omitempty"`
	GenreIDs     []int     `json:"genre_ids,omitempty"`
}

// DisplayTitle returns the title for movies and the name for tv shows.
func (m MediaItem) DisplayTitle() string {
	if m.Title != "" {
		return m.Title
	}
	return m.Name
}

// Date returns the release date for movies and the first air date for tv shows.
func (m MediaItem) Date() string {
	if m.ReleaseDate != "" {
		return m.ReleaseDate
	}
	return m.FirstAirDate
}

// Released parses [MediaItem.Date]; ok is false when the date is missing or malformed.
func (m MediaItem) Released() (t time.Time, ok bool) {
	return ParseDate(m.Date())
}

// Year returns the release year or 0.
func (m MediaItem) Year() int {
	if t, ok := m.Released(); ok {
		return t.Year()
	}
	return 0
}

// ParseDate parses a catalog date ("2006-01-02").
func ParseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DedupeByID sorts items ascending by id and drops adjacent duplicates, keeping the first occurrence.
//
// The input slice is not modified.
func DedupeByID(items []MediaItem) []MediaItem {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b MediaItem) int { return cmp.Compare(a.ID, b.ID) })
	return slices.CompactFunc(sorted, func(a, b MediaItem) bool { return a.ID == b.ID })
}

// Genre is a catalog genre.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
