// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func jsonFlag() cli.Flag {
	return &cli.BoolFlag{Name: "json", Usage: "Output raw JSON"}
}

func typeFlag(value string) cli.Flag {
	return &cli.StringFlag{
		Name:    "type",
		Aliases: []string{"t"},
		Usage:   "Media type (movie or tv)",
		Value:   value,
	}
}

// setupCommand handles first-run setup.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the config file and initialize the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}

// authCommand handles the user session.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in, sign up and manage the saved session",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Sign in and save the session token",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "register",
				Usage: "Create an account and sign in",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Usage: "Display name", Required: true},
					&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Account password", Required: true},
				},
				Action: r.AuthRegister,
			},
			{
				Name:   "logout",
				Usage:  "Forget the saved session",
				Action: r.AuthLogout,
			},
			{
				Name:   "whoami",
				Usage:  "Show the signed-in user",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AuthWhoami,
			},
		},
	}
}

// catalogCommand handles catalog browsing.
func catalogCommand(r *Runner) *cli.Command {
	list := func(name, usage string, typed bool, aliases ...string) *cli.Command {
		flags := []cli.Flag{
			jsonFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of titles to print", Value: 20},
			&cli.IntFlag{Name: "genre", Usage: "Only titles with this genre id"},
			&cli.StringFlag{Name: "sort", Usage: "Sort by popularity, rating, date or title"},
		}
		if typed {
			flags = append(flags, typeFlag("movie"))
		}
		return &cli.Command{Name: name, Aliases: aliases, Usage: usage, Flags: flags, Action: r.CatalogList}
	}

	return &cli.Command{
		Name:    "catalog",
		Aliases: []string{"cat"},
		Usage:   "Browse movies and tv shows",
		Commands: []*cli.Command{
			list("trending", "Titles trending this week", false),
			list("popular", "Most popular titles", true),
			list("top-rated", "Highest rated titles", true, "top"),
			list("airing-today", "Tv episodes airing today", false),
			list("on-the-air", "Tv shows currently airing", false),
			list("movies", "Popular and top rated movies", false),
			list("tv", "Popular and top rated tv shows", false),
			{
				Name:   "genres",
				Usage:  "List genres",
				Flags:  []cli.Flag{jsonFlag(), typeFlag("movie")},
				Action: r.CatalogGenres,
			},
			{
				Name:  "details",
				Usage: "Show details, cast and recommendations for a title",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "id"},
				},
				Flags:  []cli.Flag{jsonFlag(), typeFlag("movie")},
				Action: r.CatalogDetails,
			},
			{
				Name:  "prefetch",
				Usage: "Load catalog collections concurrently",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "facet", Aliases: []string{"f"}, Usage: "Collection to load (repeatable); default loads the home screen"},
					&cli.StringSliceFlag{Name: "type", Aliases: []string{"t"}, Usage: "Media type for per-type collections (repeatable)"},
					&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "Concurrent loads", Value: 4},
					&cli.FloatFlag{Name: "rate", Usage: "Loads started per second, 0 for unlimited"},
				},
				Action: r.CatalogPrefetch,
			},
		},
	}
}

// searchCommand handles multi-search.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search movies and tv shows",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "query"},
		},
		Flags: []cli.Flag{
			jsonFlag(),
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Usage: "Maximum number of titles to print", Value: 20},
		},
		Action: r.Search,
	}
}

// watchlistCommand handles the signed-in user's watchlist.
func watchlistCommand(r *Runner) *cli.Command {
	idArg := func() []cli.Argument { return []cli.Argument{&cli.StringArg{Name: "id"}} }

	return &cli.Command{
		Name:    "watchlist",
		Aliases: []string{"wl"},
		Usage:   "Manage your watchlist",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show saved titles",
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.StringFlag{Name: "sort", Usage: "Sort by added, title or rating", Value: "added"},
				},
				Action: r.WatchlistList,
			},
			{
				Name:      "add",
				Usage:     "Save a title",
				Arguments: idArg(),
				Flags:     []cli.Flag{typeFlag("movie")},
				Action:    r.WatchlistAdd,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove a saved title",
				Arguments: idArg(),
				Flags:     []cli.Flag{typeFlag("movie")},
				Action:    r.WatchlistRemove,
			},
			{
				Name:      "toggle",
				Usage:     "Save a title, or remove it when already saved",
				Arguments: idArg(),
				Flags:     []cli.Flag{typeFlag("movie")},
				Action:    r.WatchlistToggle,
			},
			{
				Name:      "status",
				Usage:     "Check whether a title is saved",
				Arguments: idArg(),
				Flags:     []cli.Flag{typeFlag("movie")},
				Action:    r.WatchlistStatus,
			},
			{
				Name:  "clear",
				Usage: "Remove every saved title",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Confirm clearing the watchlist"},
				},
				Action: r.WatchlistClear,
			},
			{
				Name:  "export",
				Usage: "Export the watchlist to csv, markdown, txt and json files",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Usage: "Format to write (repeatable); default writes all"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory (default: watchlist_export_<epoch>)"},
					&cli.StringFlag{Name: "sort", Usage: "Sort by added, title or rating", Value: "added"},
				},
				Action: r.WatchlistExport,
			},
		},
	}
}

// profileCommand handles the signed-in user's profile.
func profileCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "profile",
		Usage: "View and edit your profile",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show profile, preferences and settings",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.ProfileShow,
			},
			{
				Name:  "update",
				Usage: "Change username, email or avatar",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "New display name"},
					&cli.StringFlag{Name: "email", Usage: "New email"},
					&cli.StringFlag{Name: "avatar", Usage: "Avatar URL"},
				},
				Action: r.ProfileUpdate,
			},
			{
				Name:  "preferences",
				Usage: "Change catalog preferences",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Usage: "Preferred language, e.g. en-US"},
					&cli.StringFlag{Name: "region", Usage: "Preferred region, e.g. US"},
					&cli.BoolFlag{Name: "include-adult", Usage: "Include adult titles"},
					&cli.IntSliceFlag{Name: "genre", Usage: "Favorite genre id (repeatable)"},
				},
				Action: r.ProfilePreferences,
			},
			{
				Name:  "settings",
				Usage: "Change account settings",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "email-notifications", Usage: "Send email notifications"},
					&cli.BoolFlag{Name: "autoplay", Usage: "Autoplay trailers"},
					&cli.BoolFlag{Name: "private", Usage: "Hide the profile from other users"},
				},
				Action: r.ProfileSettings,
			},
		},
	}
}

// adminCommand handles user administration.
func adminCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administer users (admin role required)",
		Commands: []*cli.Command{
			{
				Name:  "users",
				Usage: "List users",
				Flags: []cli.Flag{
					jsonFlag(),
					&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Match username or email"},
					&cli.StringFlag{Name: "role", Usage: "Only users with this role"},
					&cli.StringFlag{Name: "status", Usage: "active or inactive"},
				},
				Action: r.AdminUsers,
			},
			{
				Name:  "update",
				Usage: "Change a user's role or active flag",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "user"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "username", Usage: "New display name"},
					&cli.StringFlag{Name: "email", Usage: "New email"},
					&cli.StringFlag{Name: "role", Usage: "user or admin"},
					&cli.BoolFlag{Name: "active", Usage: "Allow the user to sign in"},
				},
				Action: r.AdminUpdate,
			},
			{
				Name:  "delete",
				Usage: "Delete a user",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "user"},
				},
				Action: r.AdminDelete,
			},
			{
				Name:   "stats",
				Usage:  "Show dashboard counters",
				Flags:  []cli.Flag{jsonFlag()},
				Action: r.AdminStats,
			},
		},
	}
}

// apiCommand handles direct API calls
func apiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "api",
		Usage: "Direct calls to the catalog API",
		Commands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Direct GET, prints raw JSON",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Output raw JSON",
						Value: true,
					},
				},
				Action: r.APIGet,
			},
			{
				Name:  "post",
				Usage: "Direct POST with JSON body",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
					},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "JSON body to send",
						Required: true,
					},
				},
				Action: r.APIPost,
			},
			{
				Name:   "health",
				Usage:  "Check that the API is reachable",
				Action: r.APIHealth,
			},
		},
	}
}

// tuiCommand launches the terminal UI.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse the catalog interactively",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-file", Usage: "Log destination while the UI owns the terminal"},
		},
		Action: r.TUI,
	}
}

// stubCommand runs the local API.
func stubCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stub-api",
		Usage: "Serve an in-memory catalog API for local development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "Listen address (default: server.host:server.port from config)"},
			&cli.DurationFlag{Name: "token-ttl", Usage: "Lifetime of issued tokens", Value: 24 * time.Hour},
			&cli.DurationFlag{Name: "grace", Usage: "Shutdown grace period", Value: 5 * time.Second},
		},
		Action: r.StubAPI,
	}
}
