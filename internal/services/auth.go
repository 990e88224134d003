package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
)

// AuthPayload is returned by login and register.
type AuthPayload struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

type userEnvelope struct {
	User models.UserProfile `json:"user"`
}

// AuthClient calls the authentication endpoints.
type AuthClient struct {
	gateway *Gateway
}

// NewAuthClient creates an [AuthClient].
func NewAuthClient(g *Gateway) *AuthClient {
	return &AuthClient{gateway: g}
}

// Login exchanges credentials for a token and profile.
func (c *AuthClient) Login(ctx context.Context, creds models.Credentials) Result[AuthPayload] {
	ep := endpoint("auth.login", http.MethodPost, "/api/auth/login", "Login failed")
	return Call[AuthPayload](ctx, c.gateway, ep, creds)
}

// Register creates an account and signs it in.
func (c *AuthClient) Register(ctx context.Context, reg models.Registration) Result[AuthPayload] {
	ep := endpoint("auth.register", http.MethodPost, "/api/auth/register", "Registration failed")
	return Call[AuthPayload](ctx, c.gateway, ep, reg)
}

// Profile loads the profile for the gateway's current token.
func (c *AuthClient) Profile(ctx context.Context) Result[models.UserProfile] {
	ep := endpoint("auth.profile", http.MethodGet, "/api/auth/profile", "Failed to load user")
	return Map(Call[userEnvelope](ctx, c.gateway, ep, nil), func(e userEnvelope) models.UserProfile { return e.User })
}
