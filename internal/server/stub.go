package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
)

// SeedUser is an account created when the stub starts.
type SeedUser struct {
	Username string
	Email    string
	Password string
	Role     string
}

// DefaultSeedUsers are created when [StubOpts.Users] is nil.
var DefaultSeedUsers = []SeedUser{
	{Username: "admin", Email: "admin@marquee.local", Password: "admin123", Role: models.RoleAdmin},
	{Username: "demo", Email: "demo@marquee.local", Password: "demo123", Role: models.RoleUser},
}

// StubOpts configures [NewStubAPI].
type StubOpts struct {
	Secret   []byte           // HS256 signing key, required
	TokenTTL time.Duration    // default: 24h
	Users    []SeedUser       // nil seeds [DefaultSeedUsers]
	HashCost int              // bcrypt cost, default: bcrypt.DefaultCost
	Logger   *log.Logger      // nil discards
	Clock    func() time.Time // nil uses time.Now
}

type account struct {
	record      models.UserRecord
	avatar      string
	password    string
	preferences models.Preferences
	settings    models.Settings
	watchlist   []models.WatchlistEntry
}

func (a *account) profile() models.UserProfile {
	return models.UserProfile{
		ID:        a.record.RecordID,
		Username:  a.record.Username,
		Email:     a.record.Email,
		Role:      a.record.Role,
		Avatar:    a.avatar,
		CreatedAt: a.record.CreatedAt,
	}
}

// StubAPI is an in-memory implementation of the catalog REST API.
//
// It serves every endpoint the client consumes: auth, catalog, search, watchlist, user and admin.
// State lives for the lifetime of the value.
type StubAPI struct {
	mu       sync.Mutex
	accounts map[string]*account // by record id
	emails   map[string]string   // lowercased email -> record id

	catalog  *catalog
	issuer   *TokenIssuer
	validate *validator.Validate
	hashCost int
	logger   *log.Logger
	now      func() time.Time
	router   *BasicRouter
}

// NewStubAPI builds the stub and registers its routes.
func NewStubAPI(opts StubOpts) (*StubAPI, error) {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.HashCost == 0 {
		opts.HashCost = bcrypt.DefaultCost
	}
	if opts.Users == nil {
		opts.Users = DefaultSeedUsers
	}

	issuer, err := NewTokenIssuer(opts.Secret, opts.TokenTTL, opts.Clock)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog()
	if err != nil {
		return nil, err
	}

	a := &StubAPI{
		accounts: make(map[string]*account),
		emails:   make(map[string]string),
		catalog:  cat,
		issuer:   issuer,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		hashCost: opts.HashCost,
		logger:   shared.WithLogger(opts.Logger, "component", "stub-api"),
		now:      opts.Clock,
	}

	for _, u := range opts.Users {
		if _, err := a.createAccount(u.Username, u.Email, u.Password, u.Role); err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
	}

	a.routes()
	return a, nil
}

// ServeHTTP implements [http.Handler].
func (a *StubAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Issuer returns the token issuer, for tests that need to mint tokens.
func (a *StubAPI) Issuer() *TokenIssuer {
	return a.issuer
}

func (a *StubAPI) routes() {
	r := NewBasicRouter()
	r.Use(Recoverer(a.logger), RequestLogger(a.logger))

	auth := RequireAuth(a.issuer)

	r.HandleFunc(http.MethodGet, "/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.HandleFunc(http.MethodPost, "/api/auth/login", a.login)
	r.HandleFunc(http.MethodPost, "/api/auth/register", a.register)
	r.HandleFunc(http.MethodGet, "/api/auth/profile", a.authProfile, auth)

	r.HandleFunc(http.MethodGet, "/api/movies", a.allMovies)
	r.HandleFunc(http.MethodGet, "/api/tv", a.allTVShows)
	r.HandleFunc(http.MethodGet, "/api/trending", a.trending)
	r.HandleFunc(http.MethodGet, "/api/search", a.search)
	r.HandleFunc(http.MethodGet, "/api/tv/airing-today", a.airingToday)
	r.HandleFunc(http.MethodGet, "/api/tv/on-the-air", a.onTheAir)
	for _, t := range models.MediaTypes {
		prefix := "/api/" + t.String()
		r.HandleFunc(http.MethodGet, prefix+"/popular", a.popular(t))
		r.HandleFunc(http.MethodGet, prefix+"/top-rated", a.topRated(t))
		r.HandleFunc(http.MethodGet, "/api/genres/"+t.String(), a.genres(t))
		r.HandleFunc(http.MethodGet, prefix+"/{id}", a.details(t))
		r.HandleFunc(http.MethodGet, prefix+"/{id}/credits", a.credits(t))
		r.HandleFunc(http.MethodGet, prefix+"/{id}/videos", a.videos(t))
		r.HandleFunc(http.MethodGet, prefix+"/{id}/images", a.images(t))
		r.HandleFunc(http.MethodGet, prefix+"/{id}/recommendations", a.recommendations(t))
	}

	r.HandleFunc(http.MethodGet, "/api/watchlist", a.listWatchlist, auth)
	r.HandleFunc(http.MethodPost, "/api/watchlist", a.addToWatchlist, auth)
	r.HandleFunc(http.MethodDelete, "/api/watchlist", a.clearWatchlist, auth)
	r.HandleFunc(http.MethodDelete, "/api/watchlist/{type}/{id}", a.removeFromWatchlist, auth)
	r.HandleFunc(http.MethodGet, "/api/watchlist/status/{type}/{id}", a.watchlistStatus, auth)

	r.HandleFunc(http.MethodGet, "/api/users/profile", a.userProfile, auth)
	r.HandleFunc(http.MethodPut, "/api/users/profile", a.updateProfile, auth)
	r.HandleFunc(http.MethodPut, "/api/users/preferences", a.updatePreferences, auth)
	r.HandleFunc(http.MethodPut, "/api/users/settings", a.updateSettings, auth)

	r.HandleFunc(http.MethodGet, "/api/admin/users", a.adminUsers, auth, RequireAdmin)
	r.HandleFunc(http.MethodPut, "/api/admin/users/{id}", a.adminUpdateUser, auth, RequireAdmin)
	r.HandleFunc(http.MethodDelete, "/api/admin/users/{id}", a.adminDeleteUser, auth, RequireAdmin)
	r.HandleFunc(http.MethodGet, "/api/admin/stats", a.adminStats, auth, RequireAdmin)

	a.router = r
}

// createAccount registers a user. The caller must not hold a.mu.
func (a *StubAPI) createAccount(username, email, password, role string) (*account, error) {
	hash, err := HashPassword(password, a.hashCost)
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	key := strings.ToLower(email)
	if _, taken := a.emails[key]; taken {
		return nil, errEmailTaken
	}

	acc := &account{
		record: models.UserRecord{
			RecordID:  shared.GenerateID(),
			Username:  username,
			Email:     email,
			Role:      role,
			Active:    true,
			CreatedAt: a.now().UTC(),
		},
		password:    hash,
		preferences: models.Preferences{Language: "en-US", Region: "US"},
		settings:    models.Settings{EmailNotifications: true},
		watchlist:   []models.WatchlistEntry{},
	}
	a.accounts[acc.record.RecordID] = acc
	a.emails[key] = acc.record.RecordID
	return acc, nil
}

// current returns the account named by the request's claims. The caller must hold a.mu.
func (a *StubAPI) current(r *http.Request) (*account, bool) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		return nil, false
	}
	acc, ok := a.accounts[claims.UserID]
	return acc, ok
}
