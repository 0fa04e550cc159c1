// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the HTTP relay
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the now-playing HTTP relay",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Listening port (overrides config)",
			},
		},
		Action: r.Serve,
	}
}

// nowCommand prints the current playback once
func nowCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "now",
		Usage: "Print the currently playing track and exit",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
			},
		},
		Action: r.Now,
	}
}

// statusCommand launches the polling terminal view
func statusCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Watch the currently playing track in the terminal",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "interval",
				Usage: "Poll interval in seconds",
				Value: 2,
			},
		},
		Action: r.Status,
	}
}

// setupCommand writes a starter config file
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create a config.toml with example values",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}
