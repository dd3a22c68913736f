package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"flashsync/internal/audio"
	"flashsync/internal/config"
	"flashsync/internal/logging"
	"flashsync/internal/sims/swarm"
	"flashsync/internal/term"
)

type termOptions struct {
	sourceOptions
	sound   bool
	watch   bool
	logFile string
}

func (a *App) newTermCmd() *cobra.Command {
	opts := &termOptions{}

	cmd := &cobra.Command{
		Use:   "term",
		Short: "Watch a swarm live in the terminal",
		Long: `Animate a swarm in the terminal in real time.

Keys: space pause, n step, r reset, d dephase, h toggle heartbeat sync, q quit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTerm(cmd, opts)
		},
	}

	opts.sourceOptions.bind(cmd)
	cmd.Flags().BoolVar(&opts.sound, "sound", false, "Chirp on every flash")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the config file when it changes")
	cmd.Flags().StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of discarding them")

	return cmd
}

func (a *App) runTerm(cmd *cobra.Command, opts *termOptions) error {
	ctx := cmd.Context()
	file, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if opts.watch && opts.configPath == "" {
		return fmt.Errorf("--watch needs --config")
	}

	// The screen owns the terminal, so logs go to a file or nowhere.
	var logOut io.Writer = io.Discard
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	a.setupLogging(file.Logging, logOut)

	sim := swarm.NewWithConfig(file.Swarm)
	sim.Observe(logging.NewTransitionLogger(nil, sim.Name(), 1000))

	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	view := term.NewView(screen, sim)

	if opts.sound {
		chirp := audio.DefaultChirpConfig()
		spk, err := audio.OpenSpeaker(chirp.SampleRate)
		if err != nil {
			logging.Warn().Add(logging.ErrorField(err)).Msg("audio disabled")
		} else {
			defer spk.Close()
			sim.AddResponder(audio.NewChirper(chirp, spk, sim.Size().W))
		}
	}

	if opts.watch {
		w, err := config.NewWatcher(opts.configPath, nil)
		if err != nil {
			return err
		}
		defer w.Close()
		updates := make(chan swarm.Params, 1)
		go func() {
			_ = w.Run(ctx, func(f *config.File) {
				select {
				case <-updates:
				default:
				}
				updates <- f.Swarm.Params
			})
		}()
		view.Follow(updates)
	}

	logging.Info().Add(logging.Sim(sim.Name())).Add(logging.Seed(file.Swarm.Seed)).Msg("terminal view started")
	return view.Run(ctx)
}
