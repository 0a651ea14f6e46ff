// Package model contains domain models passed between layers.
package model

// EventResult maps a competitor name to the points earned in a single event.
type EventResult map[string]int

// Total returns the sum of awarded points.
func (e EventResult) Total() int {
	total := 0
	for _, p := range e {
		total += p
	}
	return total
}

// Tally counts, per competitor, the trials in which that competitor finished
// with the season's maximum total. Co-champions are each credited.
type Tally map[string]int

// NewTally returns a tally with a zero entry for every roster name.
func NewTally(r Roster) Tally {
	t := make(Tally, len(r))
	for _, c := range r {
		t[c.Name] = 0
	}
	return t
}

// Add merges other into t.
func (t Tally) Add(other Tally) {
	for name, n := range other {
		t[name] += n
	}
}

// Total returns the sum of all counts.
func (t Tally) Total() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// Batch is a contiguous range of trials handed to a single worker.
type Batch struct {
	Index int // batch sequence number, also the PRNG stream id
	Start int // first trial index covered by this batch
	Size  int // number of trials
}

// BatchResult is the partitioned tally produced by one batch.
type BatchResult struct {
	Batch
	Tally      Tally
	TiedTrials int // trials that ended with more than one champion
}
