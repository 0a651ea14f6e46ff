package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/metrics"
)

// TallyStore is a mutex-guarded Store. Workers simulate batches into private
// tallies and merge them here, so the lock is taken once per batch.
type TallyStore struct {
	mu        sync.RWMutex
	tally     model.Tally
	recorded  map[int]struct{}
	completed int
	tied      int

	expected      int
	progressSteps int
	progress      ProgressFunc
	nextStep      int
	reported      int
}

// NewTallyStore creates a store seeded with a zero count for every roster name.
func NewTallyStore(roster model.Roster, opts ...Option) *TallyStore {
	s := &TallyStore{
		tally:    model.NewTally(roster),
		recorded: make(map[int]struct{}),
		nextStep: 1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record implements Store.Record.
func (s *TallyStore) Record(_ context.Context, res model.BatchResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, dup := s.recorded[res.Index]; dup {
		metrics.RecordErrorByComponent("repository", "duplicate_batch")
		return ErrDuplicateBatch
	}
	s.recorded[res.Index] = struct{}{}

	s.tally.Add(res.Tally)
	s.completed += res.Size
	s.tied += res.TiedTrials

	s.reportProgress()
	return nil
}

// reportProgress fires the hook once for every distinct step boundary crossed
// (lock held). Runs shorter than the step count skip boundaries that round to
// a value already reported.
func (s *TallyStore) reportProgress() {
	if s.progress == nil || s.expected == 0 {
		return
	}
	metrics.UpdateRunProgress(float64(s.completed) / float64(s.expected))
	for s.nextStep <= s.progressSteps {
		boundary := s.expected * s.nextStep / s.progressSteps
		if s.completed < boundary {
			return
		}
		if boundary > s.reported {
			s.progress(boundary, s.expected)
			s.reported = boundary
		}
		s.nextStep++
	}
}

// Tally implements Store.Tally.
func (s *TallyStore) Tally(_ context.Context) model.Tally {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(model.Tally, len(s.tally))
	out.Add(s.tally)
	return out
}

// Completed implements Store.Completed.
func (s *TallyStore) Completed(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.completed
}

// TiedTrials implements Store.TiedTrials.
func (s *TallyStore) TiedTrials(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tied
}

// TopN implements Store.TopN.
func (s *TallyStore) TopN(_ context.Context, n int) ([]Entry, error) {
	if n < 1 {
		metrics.RecordErrorByComponent("repository", "invalid_limit")
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries()
	if n > len(all) {
		n = len(all)
	}
	return all[:n], nil
}

// Count implements Store.Count.
func (s *TallyStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tally)
}

// entries returns all rows sorted and ranked (lock held).
func (s *TallyStore) entries() []Entry {
	out := make([]Entry, 0, len(s.tally))
	for name, titles := range s.tally {
		out = append(out, Entry{Name: name, Titles: titles})
	}
	sortEntries(out)
	assignRanksWithTies(out)
	return out
}

// sortEntries orders by titles desc, then name asc.
func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Titles != entries[j].Titles {
			return entries[i].Titles > entries[j].Titles
		}
		return entries[i].Name < entries[j].Name
	})
}

// assignRanksWithTies gives equal titles the same rank; ranks stay consecutive.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Titles != entries[i-1].Titles {
			rank++
		}
		entries[i].Rank = rank
	}
}
