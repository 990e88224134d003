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

// admin restores the session and checks the admin role before any request is made.
func (r *Runner) admin(ctx context.Context) (*store.Store, error) {
	s, err := r.session(ctx, true)
	if err != nil {
		return nil, err
	}
	if !s.Snapshot().Auth.User.IsAdmin() {
		return nil, fmt.Errorf("%w: admin role required", shared.ErrNotAuthorized)
	}
	return s, nil
}

// resolveUser finds a user by record id or email.
func (r *Runner) resolveUser(ctx context.Context, s *store.Store, ref string) (models.UserRecord, error) {
	if ref == "" {
		return models.UserRecord{}, fmt.Errorf("%w: user id or email", shared.ErrMissingArgument)
	}

	s.Admin.SetFilters(models.UserFilters{})
	if err := s.Admin.FetchUsers(ctx); err != nil {
		return models.UserRecord{}, err
	}
	for _, u := range s.Snapshot().Admin.Users {
		if u.RecordID == ref || strings.EqualFold(u.Email, ref) {
			return u, nil
		}
	}
	return models.UserRecord{}, fmt.Errorf("%w: %s", shared.ErrUserNotFound, ref)
}

// AdminUsers lists users matching the filter flags.
func (r *Runner) AdminUsers(ctx context.Context, cmd *cli.Command) error {
	s, err := r.admin(ctx)
	if err != nil {
		return err
	}

	s.Admin.SetFilters(models.UserFilters{
		Query:  cmd.String("query"),
		Role:   cmd.String("role"),
		Status: cmd.String("status"),
	})
	if err := s.Admin.FetchUsers(ctx); err != nil {
		return err
	}

	users := s.Snapshot().Admin.Users
	if cmd.Bool("json") {
		return r.writeJSON(users, true)
	}

	r.writePlainHeader(fmt.Sprintf("Users (%d)", len(users)))
	for _, u := range users {
		status := "active"
		if !u.Active {
			status = "inactive"
		}
		r.writePlain("%-24s %-12s %-28s %-6s %s\n", u.RecordID, u.Username, u.Email, u.Role, status)
	}
	return nil
}

// AdminUpdate applies the given flags to one user.
func (r *Runner) AdminUpdate(ctx context.Context, cmd *cli.Command) error {
	var patch models.UserPatch
	if cmd.IsSet("username") {
		v := cmd.String("username")
		patch.Username = &v
	}
	if cmd.IsSet("email") {
		v := cmd.String("email")
		patch.Email = &v
	}
	if cmd.IsSet("role") {
		v := cmd.String("role")
		patch.Role = &v
	}
	if cmd.IsSet("active") {
		v := cmd.Bool("active")
		patch.Active = &v
	}
	if patch == (models.UserPatch{}) {
		return fmt.Errorf("%w: nothing to update", shared.ErrMissingArgument)
	}

	s, err := r.admin(ctx)
	if err != nil {
		return err
	}
	user, err := r.resolveUser(ctx, s, cmd.StringArg("user"))
	if err != nil {
		return err
	}

	if err := s.Admin.UpdateUser(ctx, user.RecordID, patch); err != nil {
		return err
	}
	return r.writePlain("✓ Updated %s\n", user.Email)
}

// AdminDelete removes one user.
func (r *Runner) AdminDelete(ctx context.Context, cmd *cli.Command) error {
	s, err := r.admin(ctx)
	if err != nil {
		return err
	}
	user, err := r.resolveUser(ctx, s, cmd.StringArg("user"))
	if err != nil {
		return err
	}

	if err := s.Admin.DeleteUser(ctx, user.RecordID); err != nil {
		return err
	}
	return r.writePlain("✓ Deleted %s\n", user.Email)
}

// AdminStats prints the dashboard counters.
func (r *Runner) AdminStats(ctx context.Context, cmd *cli.Command) error {
	s, err := r.admin(ctx)
	if err != nil {
		return err
	}
	if err := s.Admin.FetchDashboardStats(ctx); err != nil {
		return err
	}

	stats := s.Snapshot().Admin.DashboardStats
	if cmd.Bool("json") {
		return r.writeJSON(stats, true)
	}

	r.writePlainHeader("Dashboard")
	r.writePlain("Users:            %d\n", stats.TotalUsers)
	r.writePlain("Active:           %d\n", stats.ActiveUsers)
	r.writePlain("Admins:           %d\n", stats.AdminUsers)
	r.writePlain("New this week:    %d\n", stats.NewUsersThisWeek)
	r.writePlain("Watchlist titles: %d\n", stats.TotalWatchlistItems)
	return nil
}
