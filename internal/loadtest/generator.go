package loadtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/google/uuid"
)

const maxStartingPoints = 300

// generateScenarios builds n reproducible requests from seed. Every scenario
// carries its own non-zero simulation seed so the server run is repeatable.
func generateScenarios(cfg *Config, seed uint64) []Scenario {
	r := rand.New(rand.NewPCG(seed, 0)) //nolint:gosec // load generation, not crypto

	out := make([]Scenario, cfg.Requests)
	for i := range out {
		roster := make([]competitor, cfg.Competitors)
		for j := range roster {
			roster[j] = competitor{
				Name:   fmt.Sprintf("driver-%02d", j),
				Points: r.IntN(maxStartingPoints + 1),
			}
		}
		out[i] = Scenario{
			RequestID:       uuid.NewString(),
			Competitors:     roster,
			RemainingEvents: r.IntN(cfg.MaxEvents + 1),
			Trials:          cfg.Trials,
			Seed:            r.Uint64() | 1,
		}
	}
	return out
}
