package services

// Clients groups one client per API area, all sharing a [Gateway].
type Clients struct {
	Gateway   *Gateway
	Auth      *AuthClient
	Catalog   *CatalogClient
	Watchlist *WatchlistClient
	User      *UserClient
	Admin     *AdminClient
}

// NewClients builds every client on top of g.
func NewClients(g *Gateway) *Clients {
	return &Clients{
		Gateway:   g,
		Auth:      NewAuthClient(g),
		Catalog:   NewCatalogClient(g),
		Watchlist: NewWatchlistClient(g),
		User:      NewUserClient(g),
		Admin:     NewAdminClient(g),
	}
}
