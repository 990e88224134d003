package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/golang-jwt/jwt/v5"
)

// AuthState is the session.
//
// IsAuthenticated is true iff User and Token are both set.
type AuthState struct {
	User            *models.UserProfile `json:"user"`
	Token           string              `json:"token,omitempty"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	Lifecycle
}

func initialAuth() AuthState { return AuthState{Lifecycle: Lifecycle{Status: StatusIdle}} }

func (a AuthState) clone() AuthState {
	a.User = clonePtr(a.User)
	return a
}

// signIn is the fulfilled reducer for login, register and session restore.
func signIn(a AuthState, user models.UserProfile, token string) AuthState {
	a.User = &user
	a.Token = token
	a.IsAuthenticated = token != ""
	return a
}

// signOut clears the session but keeps the lifecycle so a rejection stays visible.
func signOut(a AuthState) AuthState {
	return AuthState{Lifecycle: a.Lifecycle}
}

// AuthSlice owns [AuthState].
type AuthSlice struct {
	store *Store
}

func authLifecycle(st *State) *Lifecycle { return &st.Auth.Lifecycle }

// Login exchanges credentials for a session. On success the token is persisted and attached to the gateway.
// A rejected login signs out everywhere, including any earlier session.
func (a *AuthSlice) Login(ctx context.Context, creds models.Credentials) error {
	if err := checkForm(a.store.validate, "login", creds); err != nil {
		return err
	}

	_, err := run(ctx, a.store, request[services.AuthPayload]{
		slice:     "auth",
		op:        "login",
		lifecycle: authLifecycle,
		call: func(ctx context.Context) services.Result[services.AuthPayload] {
			r := a.store.clients.Auth.Login(ctx, creds)
			if !r.OK {
				a.discard()
				return r
			}
			a.establish(r.Value.Token)
			return r
		},
		fulfilled: func(st *State, p services.AuthPayload) { st.Auth = signIn(st.Auth, p.User, p.Token) },
		rejected:  func(st *State, _ *services.RequestError) { st.Auth = signOut(st.Auth) },
	})
	return err
}

// Register creates an account and signs it in.
func (a *AuthSlice) Register(ctx context.Context, reg models.Registration) error {
	if err := checkForm(a.store.validate, "registration", reg); err != nil {
		return err
	}

	_, err := run(ctx, a.store, request[services.AuthPayload]{
		slice:     "auth",
		op:        "register",
		lifecycle: authLifecycle,
		call: func(ctx context.Context) services.Result[services.AuthPayload] {
			r := a.store.clients.Auth.Register(ctx, reg)
			if !r.OK {
				a.discard()
				return r
			}
			a.establish(r.Value.Token)
			return r
		},
		fulfilled: func(st *State, p services.AuthPayload) { st.Auth = signIn(st.Auth, p.User, p.Token) },
		rejected:  func(st *State, _ *services.RequestError) { st.Auth = signOut(st.Auth) },
	})
	return err
}

// LoadUser restores the session from durable storage.
//
// With no stored token nothing is called and [shared.ErrNotAuthenticated] is returned.
// An expired JWT is discarded without a network call. Any other failure resets the session and clears storage.
func (a *AuthSlice) LoadUser(ctx context.Context) error {
	token, err := a.store.tokens.LoadToken()
	if err != nil {
		if !errors.Is(err, shared.ErrNoStoredToken) {
			a.store.logger.Warn("failed to read stored token", "error", err)
		}
		return fmt.Errorf("%w: %w", shared.ErrNotAuthenticated, err)
	}

	if expired(token, a.store.clock()) {
		a.discard()
		a.store.commit(func(st *State) {
			st.Auth = signOut(st.Auth)
			st.Auth.reject("Session expired", a.store.clock())
		})
		a.store.logger.Info("stored token expired")
		return shared.ErrTokenExpired
	}

	a.store.clients.Gateway.SetToken(token)
	_, err = run(ctx, a.store, request[models.UserProfile]{
		slice:     "auth",
		op:        "load_user",
		lifecycle: authLifecycle,
		call: func(ctx context.Context) services.Result[models.UserProfile] {
			r := a.store.clients.Auth.Profile(ctx)
			if !r.OK {
				a.discard()
			}
			return r
		},
		fulfilled: func(st *State, u models.UserProfile) { st.Auth = signIn(st.Auth, u, token) },
		rejected:  func(st *State, _ *services.RequestError) { st.Auth = signOut(st.Auth) },
	})
	return err
}

// Logout clears token storage and the gateway token, then resets the session.
func (a *AuthSlice) Logout() {
	a.discard()
	a.Reset()
}

// Reset returns the session to its signed-out defaults.
func (a *AuthSlice) Reset() {
	a.store.commit(func(st *State) { st.Auth = initialAuth() })
}

func (a *AuthSlice) ClearError() {
	a.store.commit(func(st *State) { st.Auth.Error = "" })
}

// establish attaches token to the gateway and persists it. A storage failure is logged, not fatal.
func (a *AuthSlice) establish(token string) {
	a.store.clients.Gateway.SetToken(token)
	if err := a.store.tokens.SaveToken(token); err != nil {
		a.store.logger.Warn("failed to persist token", "error", err)
	}
}

func (a *AuthSlice) discard() {
	a.store.clients.Gateway.SetToken("")
	if err := a.store.tokens.ClearToken(); err != nil {
		a.store.logger.Warn("failed to clear stored token", "error", err)
	}
}

// expired decodes token as a JWT without verifying it and reports whether its exp claim has passed.
// Tokens that are not JWTs, or carry no exp, are left for the server to judge.
func expired(token string, now time.Time) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !claims.ExpiresAt.Time.After(now)
}
