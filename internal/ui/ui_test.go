package ui

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/crypto/bcrypt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/store"
	"github.com/desertthunder/marquee/internal/tasks"
)

func newTestModel(t *testing.T, signIn bool) (*Model, *store.Store) {
	t.Helper()
	stub, err := server.NewStubAPI(server.StubOpts{Secret: []byte("ui-test-secret"), HashCost: bcrypt.MinCost})
	if err != nil {
		t.Fatalf("NewStubAPI: %v", err)
	}
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	s := store.New(store.Options{Clients: services.NewClients(services.NewGateway(services.GatewayOpts{BaseURL: srv.URL}))})
	if signIn {
		if err := s.Auth.Login(context.Background(), models.Credentials{Email: "demo@marquee.local", Password: "demo123"}); err != nil {
			t.Fatalf("Login: %v", err)
		}
	}

	m := NewModel(context.Background(), s, tasks.NewEngine(s, nil), nil)
	t.Cleanup(m.Close)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, s
}

func press(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
}

// deliver hands over the store's current snapshot the way the subscription loop would.
func deliver(m *Model, s *store.Store) {
	m.Update(stateChangedMsg(s.Snapshot()))
}

func loadTrending(t *testing.T, m *Model, s *store.Store) {
	t.Helper()
	if err := s.Catalog.GetTrending(context.Background()); err != nil {
		t.Fatalf("GetTrending: %v", err)
	}
	deliver(m, s)
}

func lastNotification(t *testing.T, s *store.Store) store.Notification {
	t.Helper()
	n := s.Snapshot().UI.Notifications
	if len(n) == 0 {
		t.Fatal("expected a notification")
	}
	return n[len(n)-1]
}

func TestViewState(t *testing.T) {
	tests := []struct {
		view ViewState
		want string
	}{
		{TrendingView, "trending"},
		{SearchView, "search"},
		{WatchlistView, "watchlist"},
		{DetailsView, "details"},
		{ViewState(42), ""},
	}
	for _, tt := range tests {
		if got := tt.view.String(); got != tt.want {
			t.Errorf("ViewState(%d).String() = %q, want %q", tt.view, got, tt.want)
		}
	}
}

func TestMediaItem(t *testing.T) {
	matrix := models.MediaItem{ID: 603, MediaType: models.MediaTypeMovie, Title: "The Matrix", ReleaseDate: "1999-03-31", VoteAverage: 8.2}

	t.Run("Describes Type Date And Rating", func(t *testing.T) {
		desc := mediaItem{media: matrix}.Description()
		for _, want := range []string{"movie", "Mar 31, 1999", "8.2"} {
			if !strings.Contains(desc, want) {
				t.Errorf("expected %q in %q", want, desc)
			}
		}
	})

	t.Run("Marks Saved Titles", func(t *testing.T) {
		if got := (mediaItem{media: matrix, saved: true}).Title(); got != "★ The Matrix" {
			t.Errorf("unexpected title %q", got)
		}
		if got := (mediaItem{media: matrix}).Title(); got != "The Matrix" {
			t.Errorf("unexpected title %q", got)
		}
	})
}

func TestModel(t *testing.T) {
	t.Run("Starts On Trending", func(t *testing.T) {
		m, _ := newTestModel(t, false)
		view := m.View()
		if m.view != TrendingView {
			t.Errorf("expected trending view, got %s", m.view)
		}
		if !strings.Contains(view, "not signed in") || !strings.Contains(view, "Nothing to show yet") {
			t.Errorf("unexpected view:\n%s", view)
		}
	})

	t.Run("Switches Tabs", func(t *testing.T) {
		m, s := newTestModel(t, false)

		m.Update(press("tab"))
		if m.view != SearchView {
			t.Fatalf("expected search view, got %s", m.view)
		}
		if got := s.Snapshot().UI.ActiveView; got != "search" {
			t.Errorf("expected active view to be recorded, got %q", got)
		}

		m.Update(press("shift+tab"))
		m.Update(press("shift+tab"))
		if m.view != WatchlistView {
			t.Errorf("expected tabs to wrap to watchlist, got %s", m.view)
		}
		if !strings.Contains(m.View(), "Sign in to see your watchlist") {
			t.Errorf("expected sign in hint, got:\n%s", m.View())
		}
	})

	t.Run("Renders Trending From Store", func(t *testing.T) {
		m, s := newTestModel(t, false)
		loadTrending(t, m, s)

		item, ok := m.selected()
		if !ok {
			t.Fatal("expected a selected item")
		}
		if !strings.Contains(m.View(), item.DisplayTitle()) {
			t.Errorf("expected %q in view:\n%s", item.DisplayTitle(), m.View())
		}
	})

	t.Run("Ignores Stale Snapshots", func(t *testing.T) {
		m, s := newTestModel(t, false)
		stale := s.Snapshot()
		s.UI.ToggleTheme()
		fresh := s.Snapshot()

		m.Update(stateChangedMsg(fresh))
		m.Update(stateChangedMsg(stale))
		if m.state.Version != fresh.Version || m.state.UI.Theme != store.ThemeLight {
			t.Errorf("expected fresh snapshot to win, got version %d theme %s", m.state.Version, m.state.UI.Theme)
		}
	})

	t.Run("Toggle Requires Sign In", func(t *testing.T) {
		m, s := newTestModel(t, false)
		loadTrending(t, m, s)

		if _, cmd := m.Update(press(" ")); cmd != nil {
			t.Error("expected no request without a session")
		}
		if n := lastNotification(t, s); n.Level != "warning" {
			t.Errorf("expected warning, got %+v", n)
		}
	})

	t.Run("Toggle Adds Through The Optimistic Controller", func(t *testing.T) {
		m, s := newTestModel(t, true)
		loadTrending(t, m, s)
		item, _ := m.selected()

		_, cmd := m.Update(press(" "))
		if cmd == nil {
			t.Fatal("expected a toggle command")
		}
		msg, ok := cmd().(Msg)
		if !ok || msg.kind != MsgRequestDone {
			t.Fatalf("unexpected message %#v", msg)
		}
		if out := msg.data.(requestOutcome); out.err != nil {
			t.Fatalf("toggle failed: %v", out.err)
		}

		if !s.Snapshot().Watchlist.Contains(item.ID, item.MediaType) {
			t.Errorf("expected %d to be saved", item.ID)
		}
		if n := lastNotification(t, s); n.Level != "success" || !strings.Contains(n.Message, item.DisplayTitle()) {
			t.Errorf("unexpected notification %+v", n)
		}

		deliver(m, s)
		m.Update(press("shift+tab"))
		if m.view != WatchlistView {
			t.Fatalf("expected watchlist view, got %s", m.view)
		}
		if !strings.Contains(m.View(), "★ "+item.DisplayTitle()) {
			t.Errorf("expected saved title in watchlist:\n%s", m.View())
		}

		_, cmd = m.Update(press(" "))
		cmd()
		if s.Snapshot().Watchlist.Contains(item.ID, item.MediaType) {
			t.Error("expected second toggle to remove the title")
		}
	})

	t.Run("Searches From The Input", func(t *testing.T) {
		m, s := newTestModel(t, false)

		m.Update(press("/"))
		if m.view != SearchView || !m.typing {
			t.Fatalf("expected focused search input, view=%s typing=%v", m.view, m.typing)
		}
		m.Update(press("matrix"))
		_, cmd := m.Update(press("enter"))
		if cmd == nil {
			t.Fatal("expected a search command")
		}
		cmd()
		deliver(m, s)

		if m.typing {
			t.Error("expected input to lose focus after submitting")
		}
		snap := s.Snapshot()
		if snap.Search.CurrentQuery != "matrix" || len(snap.Search.SearchResults) != 1 {
			t.Errorf("unexpected search state: %+v", snap.Search)
		}
		if !strings.Contains(m.View(), "The Matrix") {
			t.Errorf("expected result in view:\n%s", m.View())
		}
	})

	t.Run("Escape Cancels The Search Input", func(t *testing.T) {
		m, _ := newTestModel(t, false)
		m.Update(press("/"))
		if _, cmd := m.Update(press("esc")); cmd != nil || m.typing {
			t.Errorf("expected input to close without a request")
		}
	})

	t.Run("Opens Details And Returns", func(t *testing.T) {
		m, s := newTestModel(t, false)
		loadTrending(t, m, s)
		item, _ := m.selected()

		_, cmd := m.Update(press("enter"))
		if m.view != DetailsView || cmd == nil {
			t.Fatalf("expected details view with a fetch, got %s", m.view)
		}
		cmd()
		deliver(m, s)

		view := m.View()
		if !strings.Contains(view, item.DisplayTitle()) || !strings.Contains(view, "Starring:") {
			t.Errorf("unexpected details view:\n%s", view)
		}
		if recent := s.Snapshot().User.Activity.RecentlyViewed; len(recent) != 1 || recent[0].ID != item.ID {
			t.Errorf("expected title to be recorded as recently viewed, got %+v", recent)
		}

		m.Update(press("esc"))
		if m.view != TrendingView {
			t.Errorf("expected to return to trending, got %s", m.view)
		}
	})

	t.Run("Toggles Theme", func(t *testing.T) {
		m, s := newTestModel(t, false)
		m.Update(press("t"))
		if s.Snapshot().UI.Theme != store.ThemeLight {
			t.Errorf("expected light theme")
		}
	})

	t.Run("Quits", func(t *testing.T) {
		m, _ := newTestModel(t, false)
		_, cmd := m.Update(press("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestPrefetch(t *testing.T) {
	t.Run("Streams Progress Until Complete", func(t *testing.T) {
		m, s := newTestModel(t, false)

		cmd := m.startPrefetch()
		if cmd == nil || !m.loading {
			t.Fatal("expected prefetch to start")
		}
		if again := m.startPrefetch(); again != nil {
			t.Error("expected a running prefetch to block another")
		}

		updates := 0
		for cmd != nil {
			msg := cmd().(Msg)
			if msg.kind == MsgProgressUpdate {
				updates++
			}
			_, cmd = m.Update(msg)
		}

		if m.loading {
			t.Error("expected loading to finish")
		}
		if updates == 0 {
			t.Error("expected progress updates")
		}
		if s.Snapshot().Catalog.Trending.Status != store.StatusFulfilled {
			t.Errorf("expected trending to load, got %s", s.Snapshot().Catalog.Trending.Status)
		}
	})

	t.Run("Reports Partial Failures", func(t *testing.T) {
		m, s := newTestModel(t, false)
		m.loading = true
		m.Update(prefetchCompleteMsg(&tasks.PrefetchResult{Succeeded: 8, Failed: 1}, nil))

		if m.loading {
			t.Error("expected loading to finish")
		}
		if n := lastNotification(t, s); n.Level != "warning" || !strings.Contains(n.Message, "1 failed") {
			t.Errorf("unexpected notification %+v", n)
		}
	})
}
