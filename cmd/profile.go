package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
	"github.com/urfave/cli/v3"
)

// profile restores the session and loads the profile, preferences and settings.
func (r *Runner) profile(ctx context.Context) (*store.Store, error) {
	s, err := r.session(ctx, true)
	if err != nil {
		return nil, err
	}
	if err := s.User.FetchProfile(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

// ProfileShow prints the profile, preferences and settings.
func (r *Runner) ProfileShow(ctx context.Context, cmd *cli.Command) error {
	s, err := r.profile(ctx)
	if err != nil {
		return err
	}

	u := s.Snapshot().User
	if cmd.Bool("json") {
		return r.writeJSON(map[string]any{
			"user":        u.Profile,
			"preferences": u.Preferences,
			"settings":    u.Settings,
		}, true)
	}

	r.writePlainHeader(u.Profile.Username)
	r.writePlain("Email:  %s\n", u.Profile.Email)
	r.writePlain("Role:   %s\n", u.Profile.Role)
	if u.Profile.Avatar != "" {
		r.writePlain("Avatar: %s\n", u.Profile.Avatar)
	}

	r.writePlainln("Preferences")
	r.writePlain("  Language:      %s\n", u.Preferences.Language)
	r.writePlain("  Region:        %s\n", u.Preferences.Region)
	r.writePlain("  Include adult: %s\n", onOff(u.Preferences.IncludeAdult))
	if len(u.Preferences.FavoriteGenres) > 0 {
		ids := make([]string, len(u.Preferences.FavoriteGenres))
		for i, id := range u.Preferences.FavoriteGenres {
			ids[i] = fmt.Sprint(id)
		}
		r.writePlain("  Genres:        %s\n", strings.Join(ids, ", "))
	}

	r.writePlainln("Settings")
	r.writePlain("  Email notifications: %s\n", onOff(u.Settings.EmailNotifications))
	r.writePlain("  Autoplay:            %s\n", onOff(u.Settings.Autoplay))
	r.writePlain("  Private profile:     %s\n", onOff(u.Settings.PrivateProfile))
	return nil
}

// ProfileUpdate changes the fields given on the command line.
func (r *Runner) ProfileUpdate(ctx context.Context, cmd *cli.Command) error {
	update := models.ProfileUpdate{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Avatar:   cmd.String("avatar"),
	}
	if update == (models.ProfileUpdate{}) {
		return fmt.Errorf("%w: at least one of --username, --email or --avatar", shared.ErrMissingArgument)
	}

	s, err := r.session(ctx, true)
	if err != nil {
		return err
	}
	if err := s.User.UpdateProfile(ctx, update); err != nil {
		return err
	}
	return r.writePlain("✓ Profile updated\n")
}

// ProfilePreferences overlays the given flags on the saved preferences.
func (r *Runner) ProfilePreferences(ctx context.Context, cmd *cli.Command) error {
	s, err := r.profile(ctx)
	if err != nil {
		return err
	}

	prefs := s.Snapshot().User.Preferences
	if cmd.IsSet("language") {
		prefs.Language = cmd.String("language")
	}
	if cmd.IsSet("region") {
		prefs.Region = cmd.String("region")
	}
	if cmd.IsSet("include-adult") {
		prefs.IncludeAdult = cmd.Bool("include-adult")
	}
	if cmd.IsSet("genre") {
		prefs.FavoriteGenres = cmd.IntSlice("genre")
	}

	if err := s.User.UpdatePreferences(ctx, prefs); err != nil {
		return err
	}
	return r.writePlain("✓ Preferences saved\n")
}

// ProfileSettings overlays the given flags on the saved settings.
func (r *Runner) ProfileSettings(ctx context.Context, cmd *cli.Command) error {
	s, err := r.profile(ctx)
	if err != nil {
		return err
	}

	settings := s.Snapshot().User.Settings
	if cmd.IsSet("email-notifications") {
		settings.EmailNotifications = cmd.Bool("email-notifications")
	}
	if cmd.IsSet("autoplay") {
		settings.Autoplay = cmd.Bool("autoplay")
	}
	if cmd.IsSet("private") {
		settings.PrivateProfile = cmd.Bool("private")
	}

	if err := s.User.UpdateSettings(ctx, settings); err != nil {
		return err
	}
	return r.writePlain("✓ Settings saved\n")
}
