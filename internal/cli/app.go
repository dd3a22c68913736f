// Package cli provides the flashsync command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"flashsync/internal/config"
	"flashsync/internal/logging"
	"flashsync/internal/sims/swarm"
)

// Version information set at build time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdout io.Writer
	stderr io.Writer
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = &cobra.Command{
		Use:   "flashsync",
		Short: "Firefly flash synchronisation simulator",
		Long: `flashsync simulates a swarm of pulse-coupled oscillators that learn to
flash in unison by advancing their phase whenever a neighbour flashes.

Runs can be headless, recorded for later replay, watched live in the
terminal, or swept over coupling parameters.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newRunCmd(),
		app.newTermCmd(),
		app.newSweepCmd(),
		app.newReplayCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments (useful for testing).
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "flashsync version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// sourceOptions are the flags shared by every command that builds a swarm.
type sourceOptions struct {
	configPath string
	sim        string
	seed       int64
}

func (o *sourceOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "Path to a YAML or JSON run configuration")
	cmd.Flags().StringVar(&o.sim, "sim", "", "Preset to start from (fireflies, conductor)")
	cmd.Flags().Int64Var(&o.seed, "seed", 0, "Placement and phase seed (overrides config)")
}

// load builds the run configuration from the config file, if any, and the
// command-line overrides.
func (o *sourceOptions) load(cmd *cobra.Command) (*config.File, error) {
	file := config.Default()
	if o.configPath != "" {
		loaded, err := config.NewLoader().LoadFile(o.configPath)
		if err != nil {
			return nil, err
		}
		file = loaded
	}
	if cmd.Flags().Changed("sim") {
		if o.configPath != "" {
			return nil, fmt.Errorf("--sim cannot be combined with --config")
		}
		preset, err := swarm.Preset(o.sim)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", config.ErrValidationFailed, err)
		}
		file.Sim = o.sim
		file.Swarm = preset
	}
	if cmd.Flags().Changed("seed") {
		file.Swarm.Seed = o.seed
	}
	if err := file.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrValidationFailed, err)
	}
	return file, nil
}

// setupLogging installs the default logger for this invocation.
func (a *App) setupLogging(cfg logging.Config, out io.Writer) {
	if out == nil {
		out = a.stderr
	}
	cfg.Output = out
	logging.SetDefault(logging.New(cfg))
}
