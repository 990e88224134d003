package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/marquee/internal/shared"
	"github.com/desertthunder/marquee/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	logPath := cmd.String("log-file")
	if logPath == "" {
		logPath = r.config.Log.File
	}
	if logPath == "" {
		logPath = "./tmp/marquee-tui.log"
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	shared.SetLogLevel(fileLogger, shared.ParseLogLevel(r.config.Log.Level))
	r.SetLogger(fileLogger)

	s, err := r.session(ctx, false)
	if err != nil {
		return err
	}
	if r.engine == nil {
		return fmt.Errorf("%w: task engine not initialized", shared.ErrServiceUnavailable)
	}

	return ui.Run(ctx, s, r.engine, fileLogger)
}
