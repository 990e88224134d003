package store

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/go-playground/validator/v10"
)

// TokenStore persists the bearer token between runs.
type TokenStore interface {
	LoadToken() (string, error)
	SaveToken(token string) error
	ClearToken() error
}

// Listener receives a snapshot after every state transition.
type Listener func(State)

// WatchlistPolicy decides what happens to an optimistic watchlist mutation whose confirming call fails.
type WatchlistPolicy int

const (
	// RollbackOnFailure undoes the optimistic mutation when the server rejects it.
	RollbackOnFailure WatchlistPolicy = iota
	// KeepOnFailure leaves the optimistic mutation in place until the next fetch.
	KeepOnFailure
)

func (p WatchlistPolicy) String() string {
	if p == KeepOnFailure {
		return "keep"
	}
	return "rollback"
}

// Options configures [New].
type Options struct {
	Clients *services.Clients
	Tokens  TokenStore       // nil keeps the token in memory only
	Logger  *log.Logger      // nil discards
	Clock   func() time.Time // nil uses time.Now
	Policy  WatchlistPolicy
}

// Store is the root of the client-side state tree.
//
// All transitions run under one mutex, so every read-modify-write is atomic. Network calls run outside the lock;
// independent requests may be issued from separate goroutines and complete in any order.
type Store struct {
	mu        sync.Mutex
	state     State
	listeners []subscription
	nextSub   int

	clients  *services.Clients
	tokens   TokenStore
	logger   *log.Logger
	clock    func() time.Time
	validate *validator.Validate
	policy   WatchlistPolicy

	Auth       *AuthSlice
	Catalog    *CatalogSlice
	Details    *DetailsSlice
	Search     *SearchSlice
	User       *UserSlice
	Admin      *AdminSlice
	Watchlist  *WatchlistSlice
	UI         *UISlice
	Optimistic *OptimisticWatchlist
}

type subscription struct {
	id int
	fn Listener
}

// New builds an isolated store. Each call returns independent state.
func New(opts Options) *Store {
	if opts.Clients == nil {
		opts.Clients = services.NewClients(services.NewGateway(services.GatewayOpts{}))
	}
	if opts.Tokens == nil {
		opts.Tokens = &memoryTokens{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	s := &Store{
		state:    initialState(),
		clients:  opts.Clients,
		tokens:   opts.Tokens,
		logger:   shared.WithLogger(opts.Logger, "component", "store"),
		clock:    opts.Clock,
		validate: newValidator(),
		policy:   opts.Policy,
	}

	s.Auth = &AuthSlice{store: s}
	s.Catalog = &CatalogSlice{store: s}
	s.Details = &DetailsSlice{store: s}
	s.Search = &SearchSlice{store: s}
	s.User = &UserSlice{store: s}
	s.Admin = &AdminSlice{store: s}
	s.Watchlist = &WatchlistSlice{store: s}
	s.UI = &UISlice{store: s}
	s.Optimistic = &OptimisticWatchlist{store: s}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Subscribe registers fn for every subsequent transition and returns a func that removes it.
//
// Listeners run on the goroutine that caused the transition, outside the store lock.
// When transitions race, compare [State.Version] to discard stale snapshots.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSub++
	id := s.nextSub
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool { return sub.id == id })
		})
	}
}

// Gateway returns the request gateway shared by every slice.
func (s *Store) Gateway() *services.Gateway {
	return s.clients.Gateway
}

// Policy reports how failed optimistic watchlist mutations are handled.
func (s *Store) Policy() WatchlistPolicy {
	return s.policy
}

// LogoutUser signs out: the session is reset (clearing token storage and the gateway token), then the watchlist.
// Profile and admin state follow so nothing of the previous user survives.
func (s *Store) LogoutUser() {
	s.Auth.Logout()
	s.Watchlist.Reset()
	s.User.Reset()
	s.Admin.Reset()
}

// commit applies fn to the state under the lock and notifies listeners with the result.
func (s *Store) commit(fn func(*State)) State {
	s.mu.Lock()
	fn(&s.state)
	s.state.Version++
	snap := s.state.Clone()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.fn(snap)
	}
	return snap
}

// commitIf is [Store.commit] guarded by ok, checked under the same lock. Nothing is published when ok fails.
func (s *Store) commitIf(ok func(*State) bool, fn func(*State)) bool {
	s.mu.Lock()
	if !ok(&s.state) {
		s.mu.Unlock()
		return false
	}
	fn(&s.state)
	s.state.Version++
	snap := s.state.Clone()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.fn(snap)
	}
	return true
}

// read returns a value derived from the state under the lock.
func read[T any](s *Store, fn func(*State) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&s.state)
}

// request describes one asynchronous operation against a slice.
type request[T any] struct {
	slice     string
	op        string
	lifecycle func(*State) *Lifecycle
	call      func(context.Context) services.Result[T]
	pending   func(*State)
	fulfilled func(*State, T)
	rejected  func(*State, *services.RequestError)
	current   func(*State) bool // nil: always settle; false drops the outcome
}

// run drives req through pending, then fulfilled or rejected. The returned error is the
// [services.RequestError] already recorded on the slice.
func run[T any](ctx context.Context, s *Store, req request[T]) (T, error) {
	requestID := shared.GenerateID()
	logger := s.logger.With("slice", req.slice, "op", req.op, "request_id", requestID)

	s.commit(func(st *State) {
		if req.pending != nil {
			req.pending(st)
		}
		req.lifecycle(st).begin(requestID, s.clock())
	})
	logger.Debug("request pending")

	current := req.current
	if current == nil {
		current = func(*State) bool { return true }
	}

	res := req.call(ctx)
	if !res.OK {
		settled := s.commitIf(current, func(st *State) {
			req.lifecycle(st).reject(res.Err.Message, s.clock())
			if req.rejected != nil {
				req.rejected(st, res.Err)
			}
		})
		if settled {
			logger.Debug("request rejected", "error", res.Err.Describe())
		} else {
			logger.Debug("dropping stale rejection", "error", res.Err.Describe())
		}

		var zero T
		return zero, res.Err
	}

	if s.commitIf(current, func(st *State) {
		req.lifecycle(st).fulfill(s.clock())
		if req.fulfilled != nil {
			req.fulfilled(st, res.Value)
		}
	}) {
		logger.Debug("request fulfilled")
	} else {
		logger.Debug("dropping stale response")
	}
	return res.Value, nil
}

// deny records a client-side rejection without issuing a call.
func deny(s *Store, slice string, lifecycle func(*State) *Lifecycle, err *services.RequestError) error {
	s.commit(func(st *State) {
		lc := lifecycle(st)
		lc.RequestID = ""
		lc.reject(err.Message, s.clock())
	})
	s.logger.Warn("request denied", "slice", slice, "op", err.Context.Endpoint, "error", err.Describe())
	return err
}

type memoryTokens struct {
	mu    sync.Mutex
	token string
}

func (m *memoryTokens) LoadToken() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" {
		return "", shared.ErrNoStoredToken
	}
	return m.token, nil
}

func (m *memoryTokens) SaveToken(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	return nil
}

func (m *memoryTokens) ClearToken() error {
	return m.SaveToken("")
}
