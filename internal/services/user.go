package services

import (
	"context"
	"net/http"

	"github.com/desertthunder/marquee/internal/models"
)

// ProfilePayload is the extended profile: account plus preferences and settings.
type ProfilePayload struct {
	User        models.UserProfile `json:"user"`
	Preferences models.Preferences `json:"preferences"`
	Settings    models.Settings    `json:"settings"`
}

type preferencesEnvelope struct {
	Preferences models.Preferences `json:"preferences"`
}

type settingsEnvelope struct {
	Settings models.Settings `json:"settings"`
}

// UserClient calls the signed-in user's profile endpoints.
type UserClient struct {
	gateway *Gateway
}

// NewUserClient creates a [UserClient].
func NewUserClient(g *Gateway) *UserClient {
	return &UserClient{gateway: g}
}

func (c *UserClient) Profile(ctx context.Context) Result[ProfilePayload] {
	ep := endpoint("user.profile", http.MethodGet, "/api/users/profile", "Failed to fetch profile")
	return Call[ProfilePayload](ctx, c.gateway, ep, nil)
}

func (c *UserClient) UpdateProfile(ctx context.Context, update models.ProfileUpdate) Result[models.UserProfile] {
	ep := endpoint("user.update_profile", http.MethodPut, "/api/users/profile", "Failed to update profile")
	return Map(Call[userEnvelope](ctx, c.gateway, ep, update), func(e userEnvelope) models.UserProfile { return e.User })
}

func (c *UserClient) UpdatePreferences(ctx context.Context, prefs models.Preferences) Result[models.Preferences] {
	ep := endpoint("user.update_preferences", http.MethodPut, "/api/users/preferences", "Failed to update preferences")
	return Map(Call[preferencesEnvelope](ctx, c.gateway, ep, prefs), func(e preferencesEnvelope) models.Preferences { return e.Preferences })
}

func (c *UserClient) UpdateSettings(ctx context.Context, settings models.Settings) Result[models.Settings] {
	ep := endpoint("user.update_settings", http.MethodPut, "/api/users/settings", "Failed to update settings")
	return Map(Call[settingsEnvelope](ctx, c.gateway, ep, settings), func(e settingsEnvelope) models.Settings { return e.Settings })
}
