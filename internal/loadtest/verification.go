package loadtest

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/simulation"
)

const probabilityTolerance = 1e-9

// verify replays sc locally with the server's batch layout and compares the
// result with resp.
func verify(ctx context.Context, sc Scenario, resp Response, batchSize int) error {
	if resp.RequestID != sc.RequestID {
		return fmt.Errorf("request id %q, want %q", resp.RequestID, sc.RequestID)
	}
	if resp.Seed != sc.Seed || resp.Trials != sc.Trials {
		return fmt.Errorf("echoed seed/trials %d/%d, want %d/%d", resp.Seed, resp.Trials, sc.Seed, sc.Trials)
	}

	roster := make(model.Roster, len(sc.Competitors))
	for i, c := range sc.Competitors {
		roster[i] = model.Competitor{Name: c.Name, Points: c.Points}
	}
	want, err := simulation.Run(ctx, roster, sc.RemainingEvents, sc.Trials, sc.Seed, batchSize)
	if err != nil {
		return fmt.Errorf("local run: %w", err)
	}

	if resp.TiedTrials != want.TiedTrials {
		return fmt.Errorf("tied trials %d, want %d", resp.TiedTrials, want.TiedTrials)
	}
	for name, n := range want.Tally {
		if resp.Titles[name] != n {
			return fmt.Errorf("titles[%s] = %d, want %d", name, resp.Titles[name], n)
		}
		if math.Abs(resp.Probabilities[name]-want.Probabilities[name]) > probabilityTolerance {
			return fmt.Errorf("probability[%s] = %f, want %f", name, resp.Probabilities[name], want.Probabilities[name])
		}
	}
	if len(resp.Titles) != len(want.Tally) {
		return fmt.Errorf("%d titled names, want %d", len(resp.Titles), len(want.Tally))
	}
	return nil
}
