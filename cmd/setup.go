package main

import (
	"context"

	"github.com/desertthunder/nowplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup writes a starter config file at the --config path.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.logger.Info("config created", "path", path)
	return r.writePlain("✓ Wrote %s — fill in your Spotify credentials\n", path)
}
