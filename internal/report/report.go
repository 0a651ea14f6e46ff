// Package report turns championship probabilities into ranked standings and
// renders them for a terminal.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/types"
)

const (
	headerName   = "Competitor"
	headerChance = "Chance (%)"
)

// Standings pairs ranked title rows with their chances. Rows keep the order
// and ranks of entries; competitors on equal titles share a rank.
func Standings(entries []repository.Entry, probs map[string]float64) []types.Standing {
	out := make([]types.Standing, len(entries))
	for i, e := range entries {
		out[i] = types.Standing{Rank: e.Rank, Name: e.Name, Titles: e.Titles, Chance: probs[e.Name]}
	}
	return out
}

// RenderTable writes the probability table:
//
//	+------------+------------+
//	| Competitor | Chance (%) |
//	+------------+------------+
//	| A          |      62.50 |
//	+------------+------------+
func RenderTable(w io.Writer, standings []types.Standing, remainingEvents int) error {
	var b strings.Builder
	b.WriteString("\n--- Estimated Championship Probabilities ---\n")
	fmt.Fprintf(&b, "---         Remaining events: %d         ---\n", remainingEvents)

	if len(standings) == 0 {
		b.WriteString("No probabilities could be computed.\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	nameWidth := len(headerName)
	for _, s := range standings {
		nameWidth = max(nameWidth, utf8.RuneCountInString(s.Name))
	}
	chanceWidth := len(headerChance)
	border := "+-" + strings.Repeat("-", nameWidth) + "-+-" + strings.Repeat("-", chanceWidth) + "-+\n"

	b.WriteString(border)
	fmt.Fprintf(&b, "| %-*s | %-*s |\n", nameWidth, headerName, chanceWidth, headerChance)
	b.WriteString(border)
	for _, s := range standings {
		fmt.Fprintf(&b, "| %-*s | %*.2f |\n", nameWidth, s.Name, chanceWidth, s.Chance)
	}
	b.WriteString(border)

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderRoster writes the starting standings, highest points first, followed
// by the run parameters.
func RenderRoster(w io.Writer, roster model.Roster, remainingEvents, trials int) error {
	sorted := roster.Clone()
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Points > sorted[j].Points })

	var b strings.Builder
	b.WriteString("\n--- Initial Standings ---\n")
	for _, c := range sorted {
		fmt.Fprintf(&b, "%s: %d points\n", c.Name, c.Points)
	}
	fmt.Fprintf(&b, "Remaining events: %d\n", remainingEvents)
	fmt.Fprintf(&b, "Trials: %d\n", trials)

	_, err := io.WriteString(w, b.String())
	return err
}
