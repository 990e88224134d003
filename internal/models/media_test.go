package models

import (
	"testing"
	"time"
)

func TestDedupeByID(t *testing.T) {
	items := []MediaItem{{ID: 2, Title: "popular"}, {ID: 1}, {ID: 3}, {ID: 2, Title: "top rated"}}

	got := DedupeByID(items)

	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("index %d: expected id %d, got %d", i, id, got[i].ID)
		}
	}
	if got[1].Title != "popular" {
		t.Errorf("expected first occurrence to win, got %q", got[1].Title)
	}
	if items[0].ID != 2 {
		t.Error("expected input slice to be left untouched")
	}
}

func TestParseMediaType(t *testing.T) {
	tc := []struct {
		in      string
		want    MediaType
		wantErr bool
	}{
		{in: "movie", want: MediaTypeMovie},
		{in: " Movies ", want: MediaTypeMovie},
		{in: "tv", want: MediaTypeTV},
		{in: "series", want: MediaTypeTV},
		{in: "podcast", wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMediaType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseMediaType(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestMediaItem(t *testing.T) {
	t.Run("Movie Fields", func(t *testing.T) {
		m := MediaItem{Title: "Heat", ReleaseDate: "1995-12-15"}
		if m.DisplayTitle() != "Heat" || m.Year() != 1995 {
			t.Errorf("unexpected display fields: %q %d", m.DisplayTitle(), m.Year())
		}
	})

	t.Run("TV Fields", func(t *testing.T) {
		m := MediaItem{Name: "The Wire", FirstAirDate: "2002-06-02"}
		if m.DisplayTitle() != "The Wire" || m.Date() != "2002-06-02" {
			t.Errorf("unexpected display fields: %q %q", m.DisplayTitle(), m.Date())
		}
	})

	t.Run("Malformed Date", func(t *testing.T) {
		if _, ok := (MediaItem{ReleaseDate: "soon"}).Released(); ok {
			t.Error("expected malformed date to be rejected")
		}
	})
}

func TestEntryFromMedia(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	entry := EntryFromMedia(MediaItem{ID: 42, MediaType: MediaTypeTV, Name: "X", FirstAirDate: "2020-01-01"}, now)

	if entry.Title != "X" || entry.ReleaseDate != "2020-01-01" || !entry.AddedAt.Equal(now) {
		t.Errorf("unexpected entry %+v", entry)
	}
	if entry.Key() != "tv:42" {
		t.Errorf("expected key tv:42, got %s", entry.Key())
	}
}

func TestWatchlistEntryMedia(t *testing.T) {
	t.Run("tv entries use name and air date", func(t *testing.T) {
		m := WatchlistEntry{ID: 1396, MediaType: MediaTypeTV, Title: "Breaking Bad", ReleaseDate: "2008-01-20"}.Media()
		if m.Name != "Breaking Bad" || m.FirstAirDate != "2008-01-20" || m.Title != "" {
			t.Errorf("unexpected media: %+v", m)
		}
		if m.DisplayTitle() != "Breaking Bad" || m.Date() != "2008-01-20" {
			t.Errorf("unexpected display values: %q %q", m.DisplayTitle(), m.Date())
		}
	})

	t.Run("round trips a movie", func(t *testing.T) {
		item := MediaItem{ID: 603, MediaType: MediaTypeMovie, Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2}
		m := EntryFromMedia(item, time.Now()).Media()
		if m.Title != item.Title || m.ReleaseDate != item.ReleaseDate || m.VoteAverage != item.VoteAverage {
			t.Errorf("expected %+v, got %+v", item, m)
		}
	})
}

func TestUserPatchApply(t *testing.T) {
	role := RoleAdmin
	active := false
	got := UserPatch{Role: &role, Active: &active}.Apply(UserRecord{RecordID: "r1", Username: "kim", Role: RoleUser, Active: true})

	if got.Role != RoleAdmin || got.Active || got.Username != "kim" {
		t.Errorf("unexpected patched record %+v", got)
	}
}
