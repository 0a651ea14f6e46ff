package loadtest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/domain/simulation"
	"github.com/okian/podium/pkg/logger"
)

// ErrMismatch reports that at least one server outcome differed from the
// local replay.
var ErrMismatch = errors.New("outcome mismatch")

// Run executes the complete load test.
func Run(ctx context.Context, cfg *Config) (Stats, error) {
	log := logger.Get().Named("loadtest")
	var stats Stats
	start := time.Now()

	seed := cfg.Seed
	if seed == 0 {
		var err error
		if seed, err = simulation.NewSeed(); err != nil {
			return stats, err
		}
	}

	log.Info(ctx, "starting load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("requests", cfg.Requests),
		logger.Int("workers", cfg.Workers),
		logger.Int("competitors", cfg.Competitors),
		logger.Int("trials", cfg.Trials),
		logger.Uint64("seed", seed),
	)

	client := newHTTPClient(cfg.Timeout)

	// Step 1: Check service health
	if err := expectOK(client.Get(ctx, cfg.BaseURL+"/healthz", nil)); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: The replay needs the server's batch layout
	batchSize, err := serverBatchSize(ctx, client, cfg.BaseURL)
	if err != nil {
		return stats, err
	}

	// Step 3: Submit and verify concurrently
	scenarios := generateScenarios(cfg, seed)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))

	for _, sc := range scenarios {
		g.Go(func() error {
			var resp Response
			status, err := client.Post(gctx, cfg.BaseURL+"/v1/simulations", sc, &resp)

			var verr error
			if err == nil && status == http.StatusOK {
				verr = verify(gctx, sc, resp, batchSize)
			}

			mu.Lock()
			defer mu.Unlock()
			stats.Submitted++
			switch {
			case err != nil:
				stats.Failed++
				log.Warn(gctx, "request failed", logger.String("requestID", sc.RequestID), logger.Error(err))
			case status == http.StatusTooManyRequests:
				stats.RateLimited++
			case status != http.StatusOK:
				stats.Failed++
				log.Warn(gctx, "unexpected status", logger.String("requestID", sc.RequestID), logger.Int("status", status))
			case verr != nil:
				stats.Successful++
				stats.Mismatched++
				log.Error(gctx, "outcome mismatch", logger.String("requestID", sc.RequestID), logger.Error(verr))
			default:
				stats.Successful++
				stats.Verified++
				if cfg.Verbose {
					log.Info(gctx, "outcome verified", logger.String("requestID", sc.RequestID))
				}
			}
			return nil
		})
	}
	_ = g.Wait()
	stats.Duration = time.Since(start)

	displayFinalStats(ctx, log, stats)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	if stats.Mismatched > 0 {
		return stats, fmt.Errorf("%d of %d outcomes: %w", stats.Mismatched, stats.Successful, ErrMismatch)
	}
	return stats, nil
}

func serverBatchSize(ctx context.Context, client *HTTPClient, baseURL string) (int, error) {
	var serverStats map[string]any
	if err := expectOK(client.Get(ctx, baseURL+"/stats", &serverStats)); err != nil {
		return 0, fmt.Errorf("stats request failed: %w", err)
	}
	n, ok := serverStats["batchSize"].(float64)
	if !ok || n <= 0 {
		return 0, fmt.Errorf("stats response has no batchSize")
	}
	return int(n), nil
}

func expectOK(status int, err error) error {
	switch {
	case err != nil:
		return err
	case status != http.StatusOK:
		return fmt.Errorf("status %d", status)
	}
	return nil
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats Stats) {
	var perSecond float64
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	log.Info(ctx, "final statistics",
		logger.Int("submitted", stats.Submitted),
		logger.Int("successful", stats.Successful),
		logger.Int("rateLimited", stats.RateLimited),
		logger.Int("failed", stats.Failed),
		logger.Int("verified", stats.Verified),
		logger.Int("mismatched", stats.Mismatched),
		logger.Duration("duration", stats.Duration),
		logger.Float64("requestsPerSecond", perSecond),
	)
}
