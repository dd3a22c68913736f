package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"flashsync/internal/record"
)

type replayOptions struct {
	dir   string
	from  int64
	to    int64
	width int
	rows  int
}

func (a *App) newReplayCmd() *cobra.Command {
	opts := &replayOptions{}

	cmd := &cobra.Command{
		Use:   "replay [run-id]",
		Short: "List recorded runs or print a run's flash raster",
		Long: `Without a run ID, list every run recorded in the store. With one, print
a raster with one row per firefly and a '|' wherever it started a flash.

Examples:
  flashsync replay --dir ./runs
  flashsync replay --dir ./runs 5d0c... --from 5000 --to 6000`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return a.listRuns(cmd, opts)
			}
			return a.showRun(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.dir, "dir", "", "Badger directory written by run --record (required)")
	cmd.Flags().Int64Var(&opts.from, "from", 0, "First tick of the raster")
	cmd.Flags().Int64Var(&opts.to, "to", 0, "Tick after the last one shown, 0 for the end of the run")
	cmd.Flags().IntVar(&opts.width, "width", 100, "Raster columns")
	cmd.Flags().IntVar(&opts.rows, "rows", 40, "Maximum fireflies shown, 0 for all")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func (a *App) openStore(dir string) (*record.Store, error) {
	return record.Open(record.DefaultConfig(), record.WithDir(dir))
}

func (a *App) listRuns(cmd *cobra.Command, opts *replayOptions) error {
	store, err := a.openStore(opts.dir)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(cmd.Context())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(a.stdout, "no runs recorded")
		return nil
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "id\tsim\tseed\tfireflies\tticks\tevents\tstarted")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			r.ID, r.Sim, r.Seed, r.Agents, r.Ticks, r.Events, r.StartedAt.Format("2006-01-02 15:04:05"))
	}
	return tw.Flush()
}

func (a *App) showRun(cmd *cobra.Command, opts *replayOptions, id string) error {
	store, err := a.openStore(opts.dir)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	run, err := store.Get(ctx, id)
	if err != nil {
		return err
	}
	events, err := store.Load(ctx, id)
	if err != nil {
		return err
	}

	to := opts.to
	if to <= 0 {
		to = run.Ticks + 1
	}
	from := opts.from
	if from < 0 || from >= to {
		return fmt.Errorf("empty tick range [%d, %d)", from, to)
	}
	agents := run.Agents
	if opts.rows > 0 && agents > opts.rows {
		agents = opts.rows
	}

	fmt.Fprintf(a.stdout, "run %s sim=%s seed=%d fireflies=%d ticks=[%d,%d)\n",
		run.ID, run.Sim, run.Seed, run.Agents, from, to)
	for i, row := range record.Raster(events, agents, from, to, opts.width) {
		fmt.Fprintf(a.stdout, "%4d %s\n", i, row)
	}
	return nil
}
