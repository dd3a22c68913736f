package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"flashsync/internal/config"
	"flashsync/internal/logging"
	"flashsync/internal/record"
	"flashsync/internal/sims/swarm"
	"flashsync/internal/telemetry"
)

type runOptions struct {
	sourceOptions
	ticks     int
	record    string
	metrics   bool
	watch     bool
	threshold float64
	progress  int64
	logLevel  string
	logFormat string
}

func (a *App) newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a swarm headless and report how well it synchronised",
		Long: `Run a swarm without any display for a fixed number of ticks.

Examples:
  # Default swarm, default length
  flashsync run

  # Conductor preset with a different seed
  flashsync run --sim conductor --seed 42

  # Record every transition and print a metrics summary
  flashsync run -c swarm.yaml --record ./runs --metrics

  # Follow edits to the config file until interrupted
  flashsync run -c swarm.yaml --ticks 0 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSwarm(cmd, opts)
		},
	}

	opts.sourceOptions.bind(cmd)
	cmd.Flags().IntVar(&opts.ticks, "ticks", 0, "Ticks to simulate, 0 runs until interrupted (overrides config)")
	cmd.Flags().StringVar(&opts.record, "record", "", "Record transitions into this badger directory")
	cmd.Flags().BoolVar(&opts.metrics, "metrics", false, "Collect metrics and print a summary")
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Reload the config file when it changes")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0.99, "Order parameter counted as synchronised")
	cmd.Flags().Int64Var(&opts.progress, "progress", 1000, "Log progress every N ticks at debug level")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: console or json")

	return cmd
}

func (a *App) runSwarm(cmd *cobra.Command, opts *runOptions) error {
	ctx := cmd.Context()
	file, err := opts.load(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("ticks") {
		file.Ticks = opts.ticks
	}
	if cmd.Flags().Changed("record") {
		file.Record = opts.record
	}
	if cmd.Flags().Changed("metrics") {
		file.Metrics = opts.metrics
	}
	if opts.logLevel != "" {
		file.Logging.Level = opts.logLevel
	}
	if opts.logFormat != "" {
		file.Logging.Format = opts.logFormat
	}
	if opts.watch && opts.configPath == "" {
		return fmt.Errorf("--watch needs --config")
	}
	a.setupLogging(file.Logging, nil)
	if file.Ticks == 0 && !opts.watch {
		logging.Warn().Msg("no tick limit, running until interrupted")
	}

	sim := swarm.NewWithConfig(file.Swarm)
	sim.Observe(logging.NewTransitionLogger(nil, sim.Name(), opts.progress))

	// Teardown must outlive an interrupted ctx so the run is still saved.
	bg := context.WithoutCancel(ctx)

	var collector *telemetry.Collector
	if file.Metrics {
		collector = telemetry.NewCollector()
		defer func() { _ = collector.Shutdown(bg) }()
		cfg := telemetry.DefaultMetricsConfig()
		cfg.Sim = sim.Name()
		m := telemetry.NewMetrics(bg, cfg)
		if err := m.Error(); err != nil {
			return fmt.Errorf("create metrics: %w", err)
		}
		sim.Observe(m)
	}

	var rec *record.Recorder
	if file.Record != "" {
		store, err := record.Open(record.DefaultConfig(), record.WithDir(file.Record))
		if err != nil {
			return err
		}
		defer store.Close()
		rec, err = record.NewRecorder(bg, store, record.Run{
			Sim:    sim.Name(),
			Seed:   file.Swarm.Seed,
			Config: file.Swarm,
			Agents: sim.Len(),
		})
		if err != nil {
			return err
		}
		sim.Observe(rec)
		logging.Info().Add(logging.RunID(rec.Run().ID)).Add(logging.Path(file.Record)).Msg("recording")
	}

	var reloads chan swarm.Params
	if opts.watch {
		w, err := config.NewWatcher(opts.configPath, nil)
		if err != nil {
			return err
		}
		defer w.Close()
		reloads = make(chan swarm.Params, 1)
		go func() {
			_ = w.Run(ctx, func(f *config.File) {
				select {
				case <-reloads:
				default:
				}
				reloads <- f.Swarm.Params
			})
		}()
	}

	logging.Info().
		Add(logging.Sim(sim.Name())).
		Add(logging.Seed(file.Swarm.Seed)).
		Add(logging.Count("fireflies", sim.Len())).
		Add(logging.Count("ticks", file.Ticks)).
		Msg("run started")

	start := time.Now()
	res := swarm.Result{SyncTick: -1}
	interrupted := false
loop:
	for i := 0; file.Ticks == 0 || i < file.Ticks; i++ {
		select {
		case <-ctx.Done():
			interrupted = true
			break loop
		case p := <-reloads:
			if sim.Apply(p) {
				res = swarm.Result{SyncTick: -1}
			}
			logging.Info().Add(logging.Tick(sim.Tick())).Msg("parameters applied")
		default:
		}
		sim.Step()
		st := sim.Stats()
		res.Ticks = st.Tick
		res.Onsets += st.Onsets
		res.FinalOrder = st.Order
		if st.Order > res.PeakOrder {
			res.PeakOrder = st.Order
		}
		if res.SyncTick < 0 && st.Order >= opts.threshold {
			res.SyncTick = st.Tick
			logging.Info().Add(logging.Tick(st.Tick)).Add(logging.Order(st.Order)).Msg("synchronised")
		}
	}

	logging.Info().
		Add(logging.Tick(res.Ticks)).
		Add(logging.Duration(time.Since(start))).
		Add(logging.Flag("interrupted", interrupted)).
		Msg("run finished")

	fmt.Fprintf(a.stdout, "sim=%s seed=%d fireflies=%d ticks=%d time=%.2fs\n",
		sim.Name(), file.Swarm.Seed, sim.Len(), res.Ticks, float64(sim.Now())/1000)
	fmt.Fprintf(a.stdout, "order final=%.4f peak=%.4f onsets=%d\n", res.FinalOrder, res.PeakOrder, res.Onsets)
	if res.Synced() {
		fmt.Fprintf(a.stdout, "synchronised at tick %d (order >= %.2f)\n", res.SyncTick, opts.threshold)
	} else {
		fmt.Fprintf(a.stdout, "not synchronised (order < %.2f)\n", opts.threshold)
	}

	if rec != nil {
		run, err := rec.Close()
		if err != nil {
			return fmt.Errorf("finish recording: %w", err)
		}
		fmt.Fprintf(a.stdout, "recorded run %s: %d events\n", run.ID, run.Events)
	}
	if collector != nil {
		sum, err := collector.Collect(bg)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "metrics flashes=%d transitions=%d heartbeats=%d mean_order=%.4f\n",
			sum.Flashes, sum.Transitions, sum.Heartbeats, sum.OrderMean)
	}
	return nil
}
