package repository

// Option applies a configuration option to the TallyStore.
type Option func(*TallyStore)

// ProgressFunc observes a run crossing a progress step. done is the trial
// count at the step boundary, total the planned trial count.
type ProgressFunc func(done, total int)

// WithProgress reports progress in the given number of equal steps.
// The hook runs with the store lock held and must not call back into the store.
func WithProgress(steps int, fn ProgressFunc) Option {
	return func(s *TallyStore) {
		if steps > 0 && fn != nil {
			s.progressSteps = steps
			s.progress = fn
		}
	}
}

// WithExpectedTrials sets the planned trial count used for progress steps.
func WithExpectedTrials(total int) Option {
	return func(s *TallyStore) {
		if total > 0 {
			s.expected = total
		}
	}
}
