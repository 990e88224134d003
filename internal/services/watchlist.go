package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
)

// WatchlistPayload is the authoritative watchlist response.
type WatchlistPayload struct {
	Watchlist []models.WatchlistEntry `json:"watchlist"`
}

type watchlistItemEnvelope struct {
	Item models.WatchlistEntry `json:"item"`
}

type watchlistStatusEnvelope struct {
	InWatchlist bool `json:"inWatchlist"`
}

// WatchlistClient calls the watchlist CRUD endpoints.
type WatchlistClient struct {
	gateway *Gateway
}

// NewWatchlistClient creates a [WatchlistClient].
func NewWatchlistClient(g *Gateway) *WatchlistClient {
	return &WatchlistClient{gateway: g}
}

// List fetches the signed-in user's watchlist.
func (c *WatchlistClient) List(ctx context.Context) Result[WatchlistPayload] {
	ep := endpoint("watchlist.list", http.MethodGet, "/api/watchlist", "Failed to fetch watchlist")
	return Map(Call[WatchlistPayload](ctx, c.gateway, ep, nil), func(p WatchlistPayload) WatchlistPayload {
		if p.Watchlist == nil {
			p.Watchlist = []models.WatchlistEntry{}
		}
		return p
	})
}

// Add saves an entry and returns the server's copy.
func (c *WatchlistClient) Add(ctx context.Context, entry models.WatchlistEntry) Result[models.WatchlistEntry] {
	ep := endpoint("watchlist.add", http.MethodPost, "/api/watchlist", "Failed to add to watchlist")
	return Map(Call[watchlistItemEnvelope](ctx, c.gateway, ep, entry), func(e watchlistItemEnvelope) models.WatchlistEntry { return e.Item })
}

// Remove deletes the (id, media_type) entry.
func (c *WatchlistClient) Remove(ctx context.Context, id int, t models.MediaType) Result[struct{}] {
	ep := endpoint("watchlist.remove", http.MethodDelete, fmt.Sprintf("/api/watchlist/%s/%d", t, id), "Failed to remove from watchlist")
	return Call[struct{}](ctx, c.gateway, ep, nil)
}

// Clear deletes every entry.
func (c *WatchlistClient) Clear(ctx context.Context) Result[struct{}] {
	ep := endpoint("watchlist.clear", http.MethodDelete, "/api/watchlist", "Failed to clear watchlist")
	return Call[struct{}](ctx, c.gateway, ep, nil)
}

// Status reports whether (id, media_type) is on the watchlist.
func (c *WatchlistClient) Status(ctx context.Context, id int, t models.MediaType) Result[bool] {
	ep := endpoint("watchlist.status", http.MethodGet, fmt.Sprintf("/api/watchlist/status/%s/%d", t, id), "Failed to check watchlist status")
	return Map(Call[watchlistStatusEnvelope](ctx, c.gateway, ep, nil), func(e watchlistStatusEnvelope) bool { return e.InWatchlist })
}
