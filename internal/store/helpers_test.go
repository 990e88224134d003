package store

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	tu "github.com/desertthunder/marquee/internal/testing"
)

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// fakeAPI is an httptest server with canned responses per "METHOD /path" pattern.
type fakeAPI struct {
	mux    *http.ServeMux
	server *httptest.Server

	mu    sync.Mutex
	hits  map[string]int
	total int
	auth  []string
}

func newFakeAPI(t *testing.T) *fakeAPI {
	t.Helper()
	api := &fakeAPI{mux: http.NewServeMux(), hits: map[string]int{}}
	api.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.mu.Lock()
		api.total++
		api.auth = append(api.auth, r.Header.Get("Authorization"))
		api.mu.Unlock()
		api.mux.ServeHTTP(w, r)
	}))
	t.Cleanup(api.server.Close)
	return api
}

// handle registers a canned response for pattern.
func (a *fakeAPI) handle(pattern string, status int, body string) {
	a.mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
		a.mu.Lock()
		a.hits[pattern]++
		a.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	})
}

func (a *fakeAPI) count(pattern string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.hits[pattern]
}

func (a *fakeAPI) requests() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

func (a *fakeAPI) lastAuthorization() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.auth) == 0 {
		return ""
	}
	return a.auth[len(a.auth)-1]
}

func newTestStore(t *testing.T, api *fakeAPI, policy WatchlistPolicy) (*Store, *tu.MemoryTokenStore) {
	t.Helper()
	tokens := tu.NewMemoryTokenStore("")
	gateway := services.NewGateway(services.GatewayOpts{BaseURL: api.server.URL})
	s := New(Options{
		Clients: services.NewClients(gateway),
		Tokens:  tokens,
		Clock:   func() time.Time { return fixedNow },
		Policy:  policy,
	})
	return s, tokens
}

// recorder collects every snapshot published by a store.
type recorder struct {
	mu    sync.Mutex
	snaps []State
}

func record(s *Store) *recorder {
	r := &recorder{}
	s.Subscribe(func(st State) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.snaps = append(r.snaps, st)
	})
	return r
}

func (r *recorder) all() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]State(nil), r.snaps...)
}

// signInAs puts a user straight into the session without a network call.
func signInAs(s *Store, role string) {
	s.commit(func(st *State) {
		st.Auth.User = &models.UserProfile{ID: "u1", Username: "ann", Role: role}
		st.Auth.Token = "token"
		st.Auth.IsAuthenticated = true
	})
}
