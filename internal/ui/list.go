package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/marquee/internal/formatter"
	"github.com/desertthunder/marquee/internal/models"
)

var _ list.Item = mediaItem{}

// mediaItem wraps [models.MediaItem] to implement [list.Item], marking titles already on the watchlist.
type mediaItem struct {
	media models.MediaItem
	saved bool
}

func (i mediaItem) FilterValue() string { return i.media.DisplayTitle() }
func (i mediaItem) Title() string {
	if i.saved {
		return "★ " + i.media.DisplayTitle()
	}
	return i.media.DisplayTitle()
}
func (i mediaItem) Description() string {
	desc := fmt.Sprintf("%s • %s • %s", i.media.MediaType, formatter.FormatDate(i.media.Date()), formatter.FormatRating(i.media.VoteAverage))
	if i.media.Overview != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.media.Overview)
	}
	return desc
}

// listItems converts media into list items; saved reports watchlist membership by id.
func listItems(media []models.MediaItem, saved func(int) bool) []list.Item {
	items := make([]list.Item, len(media))
	for i, m := range media {
		items[i] = mediaItem{media: m, saved: saved(m.ID)}
	}
	return items
}
