package models

import (
	"fmt"
	"time"
)

// WatchlistEntry is a media item saved to the user's watchlist.
type WatchlistEntry struct {
	ID          int       `json:"id"`
	MediaType   MediaType `json:"media_type"`
	Title       string    `json:"title"`
	PosterPath  string    `json:"poster_path,omitempty"`
	Overview    string    `json:"overview,omitempty"`
	ReleaseDate string    `json:"release_date,omitempty"`
	VoteAverage float64   `json:"vote_average,omitempty"`
	AddedAt     time.Time `json:"addedAt"`
}

// Key identifies an entry by (id, media_type).
func (w WatchlistEntry) Key() string {
	return WatchlistKey(w.ID, w.MediaType)
}

// Matches reports whether the entry is the (id, media_type) pair.
func (w WatchlistEntry) Matches(id int, mediaType MediaType) bool {
	return w.ID == id && w.MediaType == mediaType
}

// WatchlistKey formats the (id, media_type) identity of a watchlist entry.
func WatchlistKey(id int, mediaType MediaType) string {
	return fmt.Sprintf("%s:%d", mediaType, id)
}

// EntryFromMedia synthesizes a watchlist entry from a catalog item, stamped with addedAt.
func EntryFromMedia(item MediaItem, addedAt time.Time) WatchlistEntry {
	return WatchlistEntry{
		ID:          item.ID,
		MediaType:   item.MediaType,
		Title:       item.DisplayTitle(),
		PosterPath:  item.PosterPath,
		Overview:    item.Overview,
		ReleaseDate: item.Date(),
		VoteAverage: item.VoteAverage,
		AddedAt:     addedAt,
	}
}

// Media rebuilds the catalog record of a saved entry. TV entries carry their title as Name.
func (w WatchlistEntry) Media() MediaItem {
	m := MediaItem{
		ID:          w.ID,
		MediaType:   w.MediaType,
		Overview:    w.Overview,
		PosterPath:  w.PosterPath,
		VoteAverage: w.VoteAverage,
	}
	if w.MediaType == MediaTypeTV {
		m.Name, m.FirstAirDate = w.Title, w.ReleaseDate
	} else {
		m.Title, m.ReleaseDate = w.Title, w.ReleaseDate
	}
	return m
}
