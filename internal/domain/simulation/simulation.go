// Package simulation runs championship trials and turns their tallies into
// probabilities.
//
// A trial continues the season from the current standings to its end and
// credits every competitor that finishes with the maximum total. Ties are not
// broken: all co-champions are credited, so probabilities may sum past 100.
package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/season"
)

// Validate checks the inputs of a Monte Carlo run.
func Validate(remainingEvents, trials int) error {
	if trials <= 0 {
		return fmt.Errorf("trials must be positive, got %d: %w", trials, ErrInvalidArgument)
	}
	if remainingEvents < 0 {
		return fmt.Errorf("remaining events must not be negative, got %d: %w", remainingEvents, ErrInvalidArgument)
	}
	return nil
}

// Champions returns the names that share the maximum total, in roster order.
func Champions(final model.Roster) []string {
	if len(final) == 0 {
		return nil
	}
	best := final.MaxPoints()
	var out []string
	for _, c := range final {
		if c.Points == best {
			out = append(out, c.Name)
		}
	}
	return out
}

// RunTrial projects one season continuation and returns its champions.
func RunTrial(r *rand.Rand, roster model.Roster, remainingEvents int) []string {
	return Champions(season.Project(r, roster, remainingEvents))
}

// RunBatch runs batch.Size independent trials and tallies their champions.
// The context is checked between trials.
func RunBatch(ctx context.Context, r *rand.Rand, roster model.Roster, remainingEvents int, batch model.Batch) (model.BatchResult, error) {
	res := model.BatchResult{
		Batch: batch,
		Tally: model.NewTally(roster),
	}
	if len(roster) == 0 {
		return res, nil
	}

	for i := 0; i < batch.Size; i++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("batch %d interrupted after %d trials: %w", batch.Index, i, err)
		}
		champions := RunTrial(r, roster, remainingEvents)
		if len(champions) > 1 {
			res.TiedTrials++
		}
		for _, name := range champions {
			res.Tally[name]++
		}
	}
	return res, nil
}

// Probabilities converts a tally into percentages for every roster name.
// Names missing from the tally get 0. trials must be positive.
func Probabilities(tally model.Tally, roster model.Roster, trials int) map[string]float64 {
	probs := make(map[string]float64, len(roster))
	if trials <= 0 {
		return probs
	}
	for _, c := range roster {
		probs[c.Name] = float64(tally[c.Name]) / float64(trials) * 100
	}
	return probs
}

// NewRand returns the PRNG for a batch. Each batch draws from its own PCG
// stream so results depend only on the seed and the batch layout.
func NewRand(seed uint64, batchIndex int) *rand.Rand {
	return rand.New(rand.NewPCG(seed, uint64(batchIndex))) //nolint:gosec // simulation, not crypto
}

// Plan splits trials into batches of at most batchSize trials.
func Plan(trials, batchSize int) []model.Batch {
	if trials <= 0 {
		return nil
	}
	if batchSize <= 0 || batchSize > trials {
		batchSize = trials
	}
	batches := make([]model.Batch, 0, (trials+batchSize-1)/batchSize)
	for start, idx := 0, 0; start < trials; start, idx = start+batchSize, idx+1 {
		size := batchSize
		if start+size > trials {
			size = trials - start
		}
		batches = append(batches, model.Batch{Index: idx, Start: start, Size: size})
	}
	return batches
}

// Result aggregates the tallies of a whole run.
type Result struct {
	Trials        int
	TiedTrials    int
	Tally         model.Tally
	Probabilities map[string]float64
}

// Merge folds a batch result into r.
func (r *Result) Merge(b model.BatchResult) {
	if r.Tally == nil {
		r.Tally = make(model.Tally, len(b.Tally))
	}
	r.Tally.Add(b.Tally)
	r.TiedTrials += b.TiedTrials
}

// Run executes trials sequentially on the calling goroutine using the same
// batch layout and PRNG streams as the concurrent service, so both produce
// identical tallies for the same seed and batch size.
//
// An empty roster yields an empty result and no error.
func Run(ctx context.Context, roster model.Roster, remainingEvents, trials int, seed uint64, batchSize int) (Result, error) {
	if len(roster) == 0 {
		return Result{Tally: model.Tally{}, Probabilities: map[string]float64{}}, nil
	}
	if err := Validate(remainingEvents, trials); err != nil {
		return Result{}, err
	}

	res := Result{Trials: trials, Tally: model.NewTally(roster)}
	for _, b := range Plan(trials, batchSize) {
		br, err := RunBatch(ctx, NewRand(seed, b.Index), roster, remainingEvents, b)
		if err != nil {
			return Result{}, err
		}
		res.Merge(br)
	}
	res.Probabilities = Probabilities(res.Tally, roster, trials)
	return res, nil
}
