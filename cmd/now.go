package main

import (
	"context"

	"github.com/desertthunder/nowplay/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Now fetches the current playback once and prints it.
func (r *Runner) Now(ctx context.Context, cmd *cli.Command) error {
	r.reloadConfig(cmd)

	if err := r.ensurePlayer(); err != nil {
		return err
	}

	view, err := r.player.NowPlaying(ctx)
	if err != nil {
		return err
	}

	if cmd.Bool("json") || cmd.Bool("pretty") {
		return r.writeJSON(view, cmd.Bool("pretty"))
	}

	if line := formatter.PlainLine(view); line != "" {
		return r.writePlain("%s\n", line)
	}
	return r.writePlain("Nothing playing\n")
}
