package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/marquee/internal/server"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/urfave/cli/v3"
)

// StubAPI serves the in-memory catalog API until interrupted.
func (r *Runner) StubAPI(ctx context.Context, cmd *cli.Command) error {
	secret := r.config.Server.JWTSecret
	if secret == "" {
		return fmt.Errorf("%w: server.jwt_secret", shared.ErrMissingConfig)
	}

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr()
	}

	stub, err := server.NewStubAPI(server.StubOpts{
		Secret:   []byte(secret),
		TokenTTL: cmd.Duration("token-ttl"),
		Logger:   r.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to build stub API: %w", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           stub,
		ReadHeaderTimeout: 10 * time.Second,
	}

	r.writePlain("Serving stub API on http://%s\n", addr)
	for _, u := range server.DefaultSeedUsers {
		r.writePlain("  %-6s %s / %s\n", u.Role, u.Email, u.Password)
	}

	return server.Serve(ctx, srv, cmd.Duration("grace"), r.logger)
}
