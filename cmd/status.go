package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/nowplay/internal/shared"
	"github.com/desertthunder/nowplay/internal/ui"
	"github.com/urfave/cli/v3"
)

// Status launches the polling terminal view.
func (r *Runner) Status(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if err := r.ensurePlayer(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/nowplay-status.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	interval := time.Duration(cmd.Int("interval")) * time.Second
	model := ui.NewModel(ctx, r.player, interval)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running status view: %w", err)
	}

	return nil
}
