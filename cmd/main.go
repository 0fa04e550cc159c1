package main

import (
	"context"
	"os"

	"github.com/desertthunder/nowplay/internal/services"
	"github.com/desertthunder/nowplay/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	shared.LoadEnvFile(".env")

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var player services.Player
	if config.ValidateCredentials() == nil {
		if client, err := services.NewSpotifyClient(services.SpotifyOpts{
			Credentials:       config.Credentials,
			UpstreamPerSecond: config.Limits.UpstreamPerSecond,
		}); err == nil {
			player = client
		}
	}

	runner := NewRunner(RunnerOpts{
		Config: config,
		Player: player,
		Logger: logger,
	})

	app := &cli.Command{
		Name:     "nowplay",
		Usage:    "Relay a Spotify account's currently-playing status over HTTP",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
