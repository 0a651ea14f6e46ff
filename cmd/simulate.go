package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	service "github.com/okian/podium/internal/app"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/intake"
	"github.com/okian/podium/internal/report"
)

// errEventsFromStdin is returned when the roster is read from stdin and
// --events is not set.
var errEventsFromStdin = errors.New(`--events is required with --input "-"`)

type simulateOptions struct {
	events  int
	trials  int
	seed    uint64
	input   string
	workers int
	top     int
}

func newSimulateCmd(c *cli) *cobra.Command {
	var opts simulateOptions

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Estimate championship probabilities from the terminal",
		Long: `simulate reads the current standings and the number of remaining events,
prints them, runs the trials and prints the probability table.

Without --input the roster is entered interactively, either one competitor
at a time or as a pasted JSON array. --input reads a JSON array from a file,
or from stdin when the value is "-", in which case --events is required.`,
		Example: `  podium simulate
  podium simulate --input standings.json --events 3 --trials 50000
  cat standings.json | podium simulate --input - --events 1 --seed 42`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.simulate(cmd.Context(), cmd, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.events, "events", 0, "remaining events (prompted when not set)")
	f.IntVar(&opts.trials, "trials", 0, "number of trials (defaults to the configured trials)")
	f.Uint64Var(&opts.seed, "seed", 0, "PRNG seed; 0 picks a random seed")
	f.StringVar(&opts.input, "input", "", `JSON roster file, or "-" for stdin`)
	f.IntVar(&opts.workers, "workers", 0, "worker count (defaults to the configured worker_count)")
	f.IntVar(&opts.top, "top", 0, "print only the N best ranked competitors; 0 prints everyone")
	return cmd
}

func (c *cli) simulate(ctx context.Context, cmd *cobra.Command, opts simulateOptions) error {
	if opts.input == "-" && !cmd.Flags().Changed("events") {
		return errEventsFromStdin
	}

	prompter := intake.NewPrompter(c.in, c.out)

	roster, err := c.readRoster(ctx, prompter, opts.input)
	if err != nil {
		return err
	}

	events := opts.events
	if !cmd.Flags().Changed("events") {
		if events, err = prompter.RemainingEvents(); err != nil {
			return err
		}
	}

	trials := c.cfg.Trials
	if cmd.Flags().Changed("trials") {
		trials = opts.trials
	}
	workers := c.cfg.WorkerCount
	if opts.workers > 0 {
		workers = opts.workers
	}
	seed := c.cfg.Seed
	if opts.seed != 0 {
		seed = opts.seed
	}

	if err := report.RenderRoster(c.out, roster, events, trials); err != nil {
		return err
	}

	svc := service.New(
		service.WithWorkerCount(workers),
		service.WithBatchSize(c.cfg.BatchSize),
		service.WithProgressSteps(c.cfg.ProgressSteps),
		service.WithSeed(seed),
	)
	out, err := svc.RunMonteCarlo(ctx, roster, events, trials, service.WithTop(opts.top))
	if err != nil {
		return err
	}

	if err := report.RenderTable(c.out, out.Standings, events); err != nil {
		return err
	}
	_, err = fmt.Fprintf(c.out, "Seed: %d\n", out.Seed)
	return err
}

func (c *cli) readRoster(ctx context.Context, p *intake.Prompter, input string) (model.Roster, error) {
	if input == "" {
		return p.Roster(ctx)
	}

	var (
		data []byte
		err  error
	)
	if input == "-" {
		data, err = io.ReadAll(c.in)
	} else {
		data, err = os.ReadFile(input)
	}
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	roster, err := intake.ParseJSON(data)
	if errors.Is(err, intake.ErrValidation) {
		return nil, fmt.Errorf("%s: %w", input, err)
	}
	return roster, err
}
