// Package repository holds the aggregate championship tally of a run.
package repository

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Entry represents a row of the title table.
type Entry struct {
	Rank   int
	Name   string
	Titles int
}

// Store merges batch results and answers queries over the running tally.
type Store interface {
	// Record merges one batch. A batch index may only be recorded once.
	Record(ctx context.Context, res model.BatchResult) error

	// Tally returns a copy of the current championship counts.
	Tally(ctx context.Context) model.Tally

	// Completed returns the number of trials merged so far.
	Completed(ctx context.Context) int

	// TiedTrials returns how many merged trials ended with co-champions.
	TiedTrials(ctx context.Context) int

	// TopN returns the top-N entries ordered by titles desc, then name.
	// Equal titles share a rank.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Count returns the number of competitors tracked.
	Count(ctx context.Context) int
}
