package main

import (
	"context"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/podium/internal/loadtest"
)

// Default load test constants.
const (
	defaultRequests    = 200
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func newLoadtestCmd(_ *cli) *cobra.Command {
	cfg := loadtest.Config{}

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Submit generated seasons to a running server and verify each outcome",
		Long: `loadtest posts randomly generated standings to POST /v1/simulations
concurrently, then replays every request locally with the same seed and
batch size and reports any outcome that differs.`,
		Example: `  podium loadtest --url http://localhost:9080 --requests 500 --workers 16`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTestTimeout)
			defer cancel()

			_, err := loadtest.Run(ctx, &cfg)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "base URL of the service")
	f.IntVar(&cfg.Requests, "requests", defaultRequests, "number of simulation requests")
	f.IntVar(&cfg.Workers, "workers", runtime.NumCPU()*defaultWorkers, "number of concurrent requests")
	f.DurationVar(&cfg.Timeout, "timeout", defaultTimeout, "HTTP request timeout")
	f.IntVar(&cfg.Competitors, "competitors", 10, "competitors per request")
	f.IntVar(&cfg.MaxEvents, "max-events", 5, "upper bound for remaining events per request")
	f.IntVar(&cfg.Trials, "trials", 2000, "trials per request")
	f.Uint64Var(&cfg.Seed, "seed", 0, "generator seed; 0 picks a random one")
	f.BoolVar(&cfg.Verbose, "verbose", false, "log every verified request")
	return cmd
}
