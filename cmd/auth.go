package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/marquee/internal/models"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// AuthLogin signs in and persists the session token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open()
	if err != nil {
		return err
	}

	creds := models.Credentials{Email: cmd.String("email"), Password: cmd.String("password")}
	r.logger.Info("signing in", "email", creds.Email)

	if err := s.Auth.Login(ctx, creds); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	user := s.Snapshot().Auth.User
	return r.writePlain("✓ Signed in as %s (%s)\n", user.Username, user.Email)
}

// AuthRegister creates an account and signs in with it.
func (r *Runner) AuthRegister(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open()
	if err != nil {
		return err
	}

	reg := models.Registration{
		Username: cmd.String("username"),
		Email:    cmd.String("email"),
		Password: cmd.String("password"),
	}
	r.logger.Info("registering", "email", reg.Email)

	if err := s.Auth.Register(ctx, reg); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	user := s.Snapshot().Auth.User
	return r.writePlain("✓ Account created, signed in as %s\n", user.Username)
}

// AuthLogout discards the saved token.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open()
	if err != nil {
		return err
	}
	s.LogoutUser()
	return r.writePlain("✓ Signed out\n")
}

// AuthWhoami validates the saved token against the API and prints the user.
func (r *Runner) AuthWhoami(ctx context.Context, cmd *cli.Command) error {
	s, err := r.open()
	if err != nil {
		return err
	}

	if err := s.Auth.LoadUser(ctx); err != nil {
		if errors.Is(err, shared.ErrNotAuthenticated) || errors.Is(err, shared.ErrTokenExpired) {
			return r.writePlain("✗ Not signed in\n")
		}
		return err
	}

	user := s.Snapshot().Auth.User
	if cmd.Bool("json") {
		return r.writeJSON(user, true)
	}

	r.writePlain("✓ Signed in\n")
	r.writePlain("Username: %s\n", user.Username)
	r.writePlain("Email:    %s\n", user.Email)
	r.writePlain("Role:     %s\n", user.Role)
	return nil
}
