package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/nowplay/internal/services"
	"github.com/desertthunder/nowplay/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	player services.Player
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Player services.Player
	Logger *log.Logger
	Output io.Writer
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

	return &Runner{
		config: opts.Config,
		player: opts.Player,
		logger: opts.Logger,
		output: opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when a TUI takes over the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, nowCommand, statusCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// reloadConfig re-reads configuration from the command's --config flag when the file exists.
func (r *Runner) reloadConfig(cmd *cli.Command) {
	path := cmd.String("config")
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}
	if config, err := shared.LoadConfig(path); err == nil {
		r.config = config
	} else {
		r.logger.Warn("failed to load config, keeping current", "path", path, "error", err)
	}
}

// ensurePlayer builds the Spotify client on demand, failing when credentials are absent.
func (r *Runner) ensurePlayer() error {
	if r.player != nil {
		return nil
	}

	if err := r.config.ValidateCredentials(); err != nil {
		return err
	}

	client, err := services.NewSpotifyClient(services.SpotifyOpts{
		Credentials:       r.config.Credentials,
		UpstreamPerSecond: r.config.Limits.UpstreamPerSecond,
	})
	if err != nil {
		return err
	}

	r.player = client
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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
