// Package season projects a roster through the remaining events of a season.
package season

import (
	"math/rand/v2"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/scoring"
)

// Project simulates remainingEvents events and returns the resulting roster.
// The input roster is never modified; the returned roster has the same
// competitors in the same order with updated totals. A non-positive event
// count returns an unchanged copy.
func Project(r *rand.Rand, roster model.Roster, remainingEvents int) model.Roster {
	snapshot := roster.Clone()
	if len(snapshot) == 0 {
		return snapshot
	}

	names := snapshot.Names()
	for e := 0; e < remainingEvents; e++ {
		result := scoring.AwardEvent(r, names)
		for i := range snapshot {
			snapshot[i].Points += result[snapshot[i].Name]
		}
	}
	return snapshot
}
