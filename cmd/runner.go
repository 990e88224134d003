package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/marquee/internal/repositories"
	"github.com/desertthunder/marquee/internal/services"
	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/store"
	"github.com/desertthunder/marquee/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The store is opened lazily so commands that never touch the API (setup, stub-api) do not create a database.
type Runner struct {
	config     *shared.Config
	configPath string
	store      *store.Store
	engine     *tasks.Engine
	db         *sql.DB
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	Store      *store.Store // nil opens one from Config on first use
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if r.store != nil {
		r.engine = tasks.NewEngine(r.store, r.logger)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, catalogCommand, searchCommand, watchlistCommand,
		profileCommand, adminCommand, apiCommand, tuiCommand, stubCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger replaces the logger used by the runner and anything it opens afterwards.
func (r *Runner) SetLogger(l *log.Logger) {
	r.logger = l
}

// open returns the store, building it from the configuration on first use.
//
// The bearer token is persisted in the sqlite key-value table so sessions survive between invocations.
func (r *Runner) open() (*store.Store, error) {
	if r.store != nil {
		return r.store, nil
	}

	db, err := shared.NewDatabase(r.config.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, r.config.Database.MaxOpenConns, r.config.Database.MaxIdleConns)
	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	gateway := services.NewGateway(services.GatewayOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		Timeout:    r.config.API.Timeout(),
		RateLimit:  r.config.API.RateLimit,
		Burst:      r.config.API.Burst,
		Logger:     r.logger,
	})

	policy := store.RollbackOnFailure
	if !r.config.Watchlist.RollbackOnFailure {
		policy = store.KeepOnFailure
	}

	r.db = db
	r.store = store.New(store.Options{
		Clients: services.NewClients(gateway),
		Tokens:  repositories.NewKVRepository(db),
		Logger:  r.logger,
		Policy:  policy,
	})
	r.engine = tasks.NewEngine(r.store, r.logger)
	return r.store, nil
}

// session opens the store and restores the saved login.
//
// With required set, a missing or expired session is an error.
func (r *Runner) session(ctx context.Context, required bool) (*store.Store, error) {
	s, err := r.open()
	if err != nil {
		return nil, err
	}
	if s.Snapshot().Auth.IsAuthenticated {
		return s, nil
	}

	err = s.Auth.LoadUser(ctx)
	switch {
	case err == nil:
		return s, nil
	case !required:
		r.logger.Debug("continuing without a session", "error", err)
		return s, nil
	case errors.Is(err, shared.ErrTokenExpired):
		return nil, fmt.Errorf("%w: run 'marquee auth login' again", err)
	default:
		return nil, fmt.Errorf("%w: run 'marquee auth login' first", shared.ErrNotAuthenticated)
	}
}

// Close releases the database opened by [Runner.open].
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
