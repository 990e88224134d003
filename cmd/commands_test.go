package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
	tu "github.com/desertthunder/marquee/internal/testing"
)

const (
	demoEmail     = "demo@marquee.local"
	demoPassword  = "demo123"
	adminEmail    = "admin@marquee.local"
	adminPassword = "admin123"
)

// newStubServer serves a fresh stub API for one test.
func newStubServer(t *testing.T) *httptest.Server {
	t.Helper()
	stub, err := server.NewStubAPI(server.StubOpts{
		Secret:   []byte("cmd-test-secret"),
		HashCost: bcrypt.MinCost,
	})
	if err != nil {
		t.Fatalf("failed to build stub: %v", err)
	}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)
	return srv
}

// newStubRunner returns a runner whose store talks to a fresh stub API and keeps its token in memory.
func newStubRunner(t *testing.T) (*Runner, *bytes.Buffer, *tu.MemoryTokenStore) {
	t.Helper()
	srv := newStubServer(t)
	tokens := tu.NewMemoryTokenStore("")
	s := store.New(store.Options{
		Clients: services.NewClients(services.NewGateway(services.GatewayOpts{BaseURL: srv.URL})),
		Tokens:  tokens,
	})
	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Store:  s,
		Output: output,
		Logger: shared.NewLogger(io.Discard),
	})
	return runner, output, tokens
}

// execute runs args through a fresh command tree, as main does.
func execute(r *Runner, args ...string) error {
	app := &cli.Command{
		Name:      "marquee",
		Writer:    io.Discard,
		ErrWriter: io.Discard,
		Commands:  r.register(),
	}
	return app.Run(context.Background(), append([]string{"marquee"}, args...))
}

func mustExecute(t *testing.T, r *Runner, args ...string) {
	t.Helper()
	if err := execute(r, args...); err != nil {
		t.Fatalf("%s: expected no error, got %v", strings.Join(args, " "), err)
	}
}

func login(t *testing.T, r *Runner, email, password string) {
	t.Helper()
	mustExecute(t, r, "auth", "login", "--email", email, "--password", password)
}

func TestAuthCommands(t *testing.T) {
	t.Run("login saves the token", func(t *testing.T) {
		r, out, tokens := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)

		if !strings.Contains(out.String(), "Signed in as demo") {
			t.Errorf("expected greeting, got %q", out.String())
		}
		if tokens.Token() == "" {
			t.Error("expected token to be persisted")
		}
	})

	t.Run("login with a wrong password fails", func(t *testing.T) {
		r, _, tokens := newStubRunner(t)
		err := execute(r, "auth", "login", "--email", demoEmail, "--password", "nope")

		if !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
		if tokens.Token() != "" {
			t.Error("expected no token after failed login")
		}
	})

	t.Run("register signs in the new account", func(t *testing.T) {
		r, out, tokens := newStubRunner(t)
		mustExecute(t, r, "auth", "register", "--username", "newbie", "--email", "newbie@example.com", "--password", "secret1")

		if !strings.Contains(out.String(), "signed in as newbie") {
			t.Errorf("expected confirmation, got %q", out.String())
		}
		if tokens.Token() == "" {
			t.Error("expected token to be persisted")
		}
	})

	t.Run("register rejects an invalid email before calling the API", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "auth", "register", "--username", "newbie", "--email", "not-an-email", "--password", "secret1")

		var verr *store.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("whoami reports the signed-in user", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, adminEmail, adminPassword)
		out.Reset()

		mustExecute(t, r, "auth", "whoami")
		if !strings.Contains(out.String(), "Role:     admin") {
			t.Errorf("expected admin role, got %q", out.String())
		}
	})

	t.Run("whoami without a session", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "auth", "whoami")

		if !strings.Contains(out.String(), "Not signed in") {
			t.Errorf("expected signed-out message, got %q", out.String())
		}
	})

	t.Run("logout clears the token", func(t *testing.T) {
		r, _, tokens := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		mustExecute(t, r, "auth", "logout")

		if tokens.Token() != "" {
			t.Error("expected token to be cleared")
		}
		if r.store.Snapshot().Auth.IsAuthenticated {
			t.Error("expected session to be reset")
		}
	})

	t.Run("session survives a restart through the database", func(t *testing.T) {
		srv := newStubServer(t)
		config := shared.DefaultConfig()
		config.API.BaseURL = srv.URL
		config.Database.Path = filepath.Join(t.TempDir(), "marquee.db")

		first := NewRunner(RunnerOpts{Config: config, Output: io.Discard, Logger: shared.NewLogger(io.Discard)})
		login(t, first, demoEmail, demoPassword)
		first.Close()

		out := &bytes.Buffer{}
		second := NewRunner(RunnerOpts{Config: config, Output: out, Logger: shared.NewLogger(io.Discard)})
		t.Cleanup(func() { second.Close() })

		mustExecute(t, second, "auth", "whoami")
		if !strings.Contains(out.String(), demoEmail) {
			t.Errorf("expected restored session, got %q", out.String())
		}
	})
}

func TestCatalogCommands(t *testing.T) {
	t.Run("popular movies", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "catalog", "popular", "--type", "movie")

		if !strings.Contains(out.String(), "Interstellar") {
			t.Errorf("expected Interstellar in popular movies, got %q", out.String())
		}
	})

	t.Run("top rated tv as JSON", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "catalog", "top-rated", "--type", "tv", "--json")

		var items []map[string]any
		if err := json.Unmarshal(out.Bytes(), &items); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if len(items) == 0 || items[0]["name"] != "Breaking Bad" {
			t.Errorf("expected Breaking Bad first, got %v", items)
		}
	})

	t.Run("unknown media type", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "catalog", "popular", "--type", "podcast")

		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})

	t.Run("genres", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "catalog", "genres", "--type", "tv")

		if !strings.Contains(out.String(), "Sci-Fi & Fantasy") {
			t.Errorf("expected tv genres, got %q", out.String())
		}
	})

	t.Run("details", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "catalog", "details", "603")

		for _, want := range []string{"The Matrix", "Runtime: 136 min", "Starring:", "Keanu Reeves"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("expected %q in details, got %q", want, out.String())
			}
		}
		viewed := r.store.Snapshot().User.Activity.RecentlyViewed
		if len(viewed) != 1 || viewed[0].ID != 603 {
			t.Errorf("expected 603 recently viewed, got %v", viewed)
		}
	})

	t.Run("details for an unknown title", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "catalog", "details", "1")

		if !errors.Is(err, shared.ErrMediaNotFound) {
			t.Errorf("expected ErrMediaNotFound, got %v", err)
		}
	})

	t.Run("details with a bad id", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "catalog", "details", "abc")

		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("prefetch reports each collection", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "catalog", "prefetch", "--facet", "trending", "--facet", "popular", "--type", "movie")

		if !strings.Contains(out.String(), "Loaded 2 collections") {
			t.Errorf("expected summary, got %q", out.String())
		}
		st := r.store.Snapshot()
		if len(st.Catalog.Trending.Data) == 0 || len(st.Catalog.Popular.Movie.Data) == 0 {
			t.Error("expected trending and popular movies to be loaded")
		}
	})

	t.Run("prefetch rejects unknown facets", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "catalog", "prefetch", "--facet", "upcoming")

		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestSearchCommand(t *testing.T) {
	t.Run("finds titles", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "search", "matrix")

		if !strings.Contains(out.String(), "The Matrix") {
			t.Errorf("expected The Matrix, got %q", out.String())
		}
		if h := r.store.Snapshot().Search.SearchHistory; len(h) != 1 || h[0] != "matrix" {
			t.Errorf("expected query in history, got %v", h)
		}
	})

	t.Run("no results", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "search", "zzzz")

		if !strings.Contains(out.String(), "No results") {
			t.Errorf("expected empty message, got %q", out.String())
		}
	})

	t.Run("requires a query", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "search")

		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestWatchlistCommands(t *testing.T) {
	t.Run("requires a session", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "watchlist", "list")

		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("add, list, toggle and status", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)

		mustExecute(t, r, "watchlist", "add", "27205")
		mustExecute(t, r, "watchlist", "add", "--type", "tv", "1396")
		if !strings.Contains(out.String(), "Added Inception") || !strings.Contains(out.String(), "Added Breaking Bad") {
			t.Errorf("expected add confirmations, got %q", out.String())
		}

		out.Reset()
		mustExecute(t, r, "watchlist", "add", "27205")
		if !strings.Contains(out.String(), "Already on your watchlist") {
			t.Errorf("expected duplicate notice, got %q", out.String())
		}

		out.Reset()
		mustExecute(t, r, "watchlist", "list", "--sort", "title")
		listing := out.String()
		if !strings.Contains(listing, "Watchlist (2)") {
			t.Errorf("expected two entries, got %q", listing)
		}
		if strings.Index(listing, "Breaking Bad") > strings.Index(listing, "Inception") {
			t.Errorf("expected title order, got %q", listing)
		}

		out.Reset()
		mustExecute(t, r, "watchlist", "toggle", "27205")
		if !strings.Contains(out.String(), "Removed Inception") {
			t.Errorf("expected toggle to remove, got %q", out.String())
		}

		out.Reset()
		mustExecute(t, r, "watchlist", "status", "27205")
		if !strings.Contains(out.String(), "is not on your watchlist") {
			t.Errorf("expected not saved, got %q", out.String())
		}

		out.Reset()
		mustExecute(t, r, "watchlist", "status", "--type", "tv", "1396")
		if !strings.Contains(out.String(), "is on your watchlist") {
			t.Errorf("expected saved, got %q", out.String())
		}
	})

	t.Run("remove", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		mustExecute(t, r, "watchlist", "add", "603")
		mustExecute(t, r, "watchlist", "remove", "603")

		if r.store.Snapshot().Watchlist.Contains(603, "movie") {
			t.Error("expected 603 to be removed")
		}

		err := execute(r, "watchlist", "remove", "603")
		if !errors.Is(err, shared.ErrMediaNotFound) {
			t.Errorf("expected ErrMediaNotFound for a second remove, got %v", err)
		}
	})

	t.Run("add an unknown title", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		err := execute(r, "watchlist", "add", "1")

		if !errors.Is(err, shared.ErrMediaNotFound) {
			t.Errorf("expected ErrMediaNotFound, got %v", err)
		}
		if n := r.store.Snapshot().Watchlist.TotalItems; n != 0 {
			t.Errorf("expected empty watchlist, got %d", n)
		}
	})

	t.Run("clear needs confirmation", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		mustExecute(t, r, "watchlist", "add", "603")

		if err := execute(r, "watchlist", "clear"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
		mustExecute(t, r, "watchlist", "clear", "--yes")
		if n := r.store.Snapshot().Watchlist.TotalItems; n != 0 {
			t.Errorf("expected empty watchlist, got %d", n)
		}
	})

	t.Run("export", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		mustExecute(t, r, "watchlist", "add", "603")
		mustExecute(t, r, "watchlist", "add", "155")

		dir := filepath.Join(t.TempDir(), "export")
		mustExecute(t, r, "watchlist", "export", "--format", "csv", "--format", "md", "--output", dir)

		if !strings.Contains(out.String(), "Exported 2 titles") {
			t.Errorf("expected summary, got %q", out.String())
		}
		tu.AssertFileExists(t, filepath.Join(dir, "watchlist.csv"))
		tu.AssertFileExists(t, filepath.Join(dir, "watchlist.md"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if _, err := os.Stat(filepath.Join(dir, "watchlist.json")); err == nil {
			t.Error("expected json to be skipped")
		}

		csv := tu.MustReadFile(t, filepath.Join(dir, "watchlist.csv"))
		if !strings.Contains(csv, "The Dark Knight") || !strings.Contains(csv, "The Matrix") {
			t.Errorf("expected both titles in csv, got %q", csv)
		}
	})

	t.Run("export rejects unknown formats", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "watchlist", "export", "--format", "xlsx")

		if !errors.Is(err, shared.ErrInvalidFlag) {
			t.Errorf("expected ErrInvalidFlag, got %v", err)
		}
	})
}

func TestProfileCommands(t *testing.T) {
	t.Run("settings and preferences round trip", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)

		mustExecute(t, r, "profile", "settings", "--autoplay")
		mustExecute(t, r, "profile", "preferences", "--language", "fr-FR", "--genre", "18", "--genre", "80")

		out.Reset()
		mustExecute(t, r, "profile", "show", "--json")

		var shown struct {
			Preferences struct {
				Language       string `json:"language"`
				FavoriteGenres []int  `json:"favoriteGenres"`
			} `json:"preferences"`
			Settings struct {
				Autoplay bool `json:"autoplay"`
			} `json:"settings"`
		}
		if err := json.Unmarshal(out.Bytes(), &shown); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if !shown.Settings.Autoplay {
			t.Error("expected autoplay on")
		}
		if shown.Preferences.Language != "fr-FR" || len(shown.Preferences.FavoriteGenres) != 2 {
			t.Errorf("expected saved preferences, got %+v", shown.Preferences)
		}
	})

	t.Run("update username", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		mustExecute(t, r, "profile", "update", "--username", "cinephile")

		out.Reset()
		mustExecute(t, r, "profile", "show")
		if !strings.Contains(out.String(), "cinephile") {
			t.Errorf("expected new username, got %q", out.String())
		}
	})

	t.Run("update needs a field", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)

		if err := execute(r, "profile", "update"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestAdminCommands(t *testing.T) {
	t.Run("requires the admin role", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		err := execute(r, "admin", "stats")

		if !errors.Is(err, shared.ErrNotAuthorized) {
			t.Errorf("expected ErrNotAuthorized, got %v", err)
		}
	})

	t.Run("stats", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, adminEmail, adminPassword)
		mustExecute(t, r, "admin", "stats")

		if !strings.Contains(out.String(), "Users:            2") {
			t.Errorf("expected two users, got %q", out.String())
		}
	})

	t.Run("deactivate and list by status", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, adminEmail, adminPassword)
		mustExecute(t, r, "admin", "update", "--active=false", demoEmail)

		out.Reset()
		mustExecute(t, r, "admin", "users", "--status", "inactive", "--json")

		var users []map[string]any
		if err := json.Unmarshal(out.Bytes(), &users); err != nil {
			t.Fatalf("expected JSON output, got %v", err)
		}
		if len(users) != 1 || users[0]["email"] != demoEmail {
			t.Errorf("expected demo to be inactive, got %v", users)
		}
	})

	t.Run("delete", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		login(t, r, adminEmail, adminPassword)
		mustExecute(t, r, "admin", "delete", demoEmail)

		err := execute(r, "admin", "delete", demoEmail)
		if !errors.Is(err, shared.ErrUserNotFound) {
			t.Errorf("expected ErrUserNotFound, got %v", err)
		}
	})
}

func TestAPICommands(t *testing.T) {
	t.Run("health", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "api", "health")

		if !strings.Contains(out.String(), "API is healthy") {
			t.Errorf("expected healthy, got %q", out.String())
		}
	})

	t.Run("get prints raw JSON", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		mustExecute(t, r, "api", "get", "api/genres/movie")

		if !strings.Contains(out.String(), `"Science Fiction"`) {
			t.Errorf("expected genres, got %q", out.String())
		}
	})

	t.Run("get reports error statuses", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "api", "get", "/api/watchlist")

		if !errors.Is(err, shared.ErrAPIStatus) {
			t.Errorf("expected ErrAPIStatus, got %v", err)
		}
	})

	t.Run("post attaches the session token", func(t *testing.T) {
		r, out, _ := newStubRunner(t)
		login(t, r, demoEmail, demoPassword)
		out.Reset()

		body := `{"id":550,"media_type":"movie","title":"Fight Club"}`
		mustExecute(t, r, "api", "post", "--data", body, "/api/watchlist")
		if !strings.Contains(out.String(), "Fight Club") {
			t.Errorf("expected saved item, got %q", out.String())
		}
	})

	t.Run("post rejects invalid JSON", func(t *testing.T) {
		r, _, _ := newStubRunner(t)
		err := execute(r, "api", "post", "--data", "{oops", "/api/watchlist")

		if !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestSetupCommand(t *testing.T) {
	dir := t.TempDir()
	wd := tu.MustGetwd(t)
	tu.MustChdir(t, dir)
	t.Cleanup(func() { tu.MustChdir(t, wd) })

	r := NewRunner(RunnerOpts{Output: io.Discard, Logger: shared.NewLogger(io.Discard)})
	mustExecute(t, r, "setup", "--config", "config.toml")

	tu.AssertFileExists(t, filepath.Join(dir, "config.toml"))
	tu.AssertFileExists(t, filepath.Join(dir, "marquee.db"))

	if _, err := shared.LoadConfig(filepath.Join(dir, "config.toml")); err != nil {
		t.Errorf("expected the created config to load, got %v", err)
	}

	// a second run keeps the existing config
	mustExecute(t, r, "setup", "--config", "config.toml")
}
