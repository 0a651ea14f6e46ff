// Package scoring awards championship points for a single simulated event.
//
// Every competitor has the same chance of finishing in any position: the
// finishing order is a uniformly random permutation of the entrants.
package scoring

import (
	"math/rand/v2"

	"github.com/okian/podium/internal/domain/model"
)

// pointsTable holds the points for 1st through 10th place.
var pointsTable = [...]int{25, 18, 15, 12, 10, 8, 6, 4, 2, 1} //nolint:gochecknoglobals // immutable array, only copies escape

// ScoredPositions is the number of finishing positions that earn points.
const ScoredPositions = len(pointsTable)

// PointsTable returns a copy of the points table, 1st place first.
func PointsTable() []int {
	out := make([]int, ScoredPositions)
	copy(out, pointsTable[:])
	return out
}

// PointsFor returns the points for a 0-indexed finishing position.
// Positions outside the table earn nothing.
func PointsFor(position int) int {
	if position < 0 || position >= ScoredPositions {
		return 0
	}
	return pointsTable[position]
}

// EventTotal returns the points handed out by one event with n entrants.
func EventTotal(n int) int {
	total := 0
	for i := 0; i < n && i < ScoredPositions; i++ {
		total += pointsTable[i]
	}
	return total
}

// AwardEvent shuffles names into a random finishing order and awards points
// by position. Every input name gets an entry, possibly 0. The input slice
// is not modified. An empty input yields an empty result.
func AwardEvent(r *rand.Rand, names []string) model.EventResult {
	result := make(model.EventResult, len(names))
	if len(names) == 0 {
		return result
	}

	order := make([]string, len(names))
	copy(order, names)
	r.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for i, name := range order {
		result[name] += PointsFor(i)
	}
	return result
}
