package cli

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"flashsync/internal/logging"
	"flashsync/internal/sims/swarm"
)

type sweepOptions struct {
	sourceOptions
	steps     int
	threshold float64
	workers   int
	seeds     int
	adjusts   []float64
	blinds    []float64
}

type sweepPoint struct {
	flashAdjust float64
	blindTime   float64
}

type sweepResult struct {
	point     sweepPoint
	runs      int
	synced    int
	meanSync  float64 // over synced runs only
	meanOrder float64
}

func (a *App) newSweepCmd() *cobra.Command {
	opts := &sweepOptions{}

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Measure convergence over a grid of coupling parameters",
		Long: `Run headless swarms for every combination of flash adjust and blind
time, several seeds each, and print the combinations sorted by how reliably
and how quickly they synchronised.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSweep(cmd, opts)
		},
	}

	opts.sourceOptions.bind(cmd)
	cmd.Flags().IntVar(&opts.steps, "steps", 6000, "Ticks to simulate per run")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", 0.99, "Order parameter counted as synchronised")
	cmd.Flags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "Number of worker goroutines")
	cmd.Flags().IntVar(&opts.seeds, "seeds", 3, "Seeds per combination, counting up from the base seed")
	cmd.Flags().Float64SliceVar(&opts.adjusts, "flash-adjust", []float64{0.02, 0.05, 0.1}, "Flash adjust values")
	cmd.Flags().Float64SliceVar(&opts.blinds, "blind-time", []float64{0, 0.01, 0.05}, "Blind time values in seconds")

	return cmd
}

func (a *App) runSweep(cmd *cobra.Command, opts *sweepOptions) error {
	ctx := cmd.Context()
	file, err := opts.load(cmd)
	if err != nil {
		return err
	}
	a.setupLogging(file.Logging, nil)
	if opts.seeds < 1 {
		opts.seeds = 1
	}
	if opts.workers < 1 {
		opts.workers = 1
	}

	var points []sweepPoint
	for _, adj := range opts.adjusts {
		for _, blind := range opts.blinds {
			points = append(points, sweepPoint{flashAdjust: adj, blindTime: blind})
		}
	}
	for _, p := range points {
		cfg := sweepConfig(file.Swarm, p, 0)
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logging.Info().
		Add(logging.Count("combinations", len(points))).
		Add(logging.Count("seeds", opts.seeds)).
		Add(logging.Count("workers", opts.workers)).
		Add(logging.Count("steps", opts.steps)).
		Msg("sweep started")

	type job struct {
		point sweepPoint
		index int
	}
	type outcome struct {
		point sweepPoint
		res   swarm.Result
	}

	jobs := make(chan job)
	results := make(chan outcome)
	var wg sync.WaitGroup

	for i := 0; i < opts.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				cfg := sweepConfig(file.Swarm, j.point, int64(j.index))
				results <- outcome{point: j.point, res: swarm.Convergence(cfg, opts.steps, opts.threshold)}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	go func() {
		defer close(jobs)
		for _, p := range points {
			for s := 0; s < opts.seeds; s++ {
				select {
				case jobs <- job{point: p, index: s}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	start := time.Now()
	byPoint := make(map[sweepPoint]*sweepResult, len(points))
	for out := range results {
		r := byPoint[out.point]
		if r == nil {
			r = &sweepResult{point: out.point}
			byPoint[out.point] = r
		}
		r.runs++
		r.meanOrder += out.res.FinalOrder
		if out.res.Synced() {
			r.synced++
			r.meanSync += float64(out.res.SyncTick)
		}
		logging.Debug().
			Add(logging.Float("flash_adjust", out.point.flashAdjust)).
			Add(logging.Float("blind_time", out.point.blindTime)).
			Add(logging.Tick(out.res.SyncTick)).
			Add(logging.Order(out.res.FinalOrder)).
			Msg("scenario finished")
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sweep interrupted: %w", err)
	}

	all := make([]sweepResult, 0, len(byPoint))
	for _, r := range byPoint {
		if r.synced > 0 {
			r.meanSync /= float64(r.synced)
		}
		r.meanOrder /= float64(r.runs)
		all = append(all, *r)
	}
	sortSweep(all)

	logging.Info().Add(logging.Duration(time.Since(start))).Msg("sweep finished")

	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "flash_adjust\tblind_time\tsynced\tmean_sync_tick\tmean_order")
	for _, r := range all {
		syncCol := "-"
		if r.synced > 0 {
			syncCol = fmt.Sprintf("%.0f", r.meanSync)
		}
		fmt.Fprintf(tw, "%.3f\t%.3f\t%d/%d\t%s\t%.4f\n",
			r.point.flashAdjust, r.point.blindTime, r.synced, r.runs, syncCol, r.meanOrder)
	}
	return tw.Flush()
}

// sweepConfig derives the swarm for one run of a combination.
func sweepConfig(base swarm.Config, p sweepPoint, seedOffset int64) swarm.Config {
	cfg := base
	cfg.Params.FlashAdjust = p.flashAdjust
	cfg.Params.BlindTime = p.blindTime
	cfg.Seed = base.Seed + seedOffset
	return cfg
}

// sortSweep orders results by sync rate, then speed, then final order.
func sortSweep(all []sweepResult) {
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		ra := float64(a.synced) / float64(a.runs)
		rb := float64(b.synced) / float64(b.runs)
		if ra != rb {
			return ra > rb
		}
		if a.synced > 0 && a.meanSync != b.meanSync {
			return a.meanSync < b.meanSync
		}
		if a.meanOrder != b.meanOrder {
			return a.meanOrder > b.meanOrder
		}
		if a.point.flashAdjust != b.point.flashAdjust {
			return a.point.flashAdjust < b.point.flashAdjust
		}
		return a.point.blindTime < b.point.blindTime
	})
}
