// Package service runs Monte Carlo championship simulations. It wires the
// batch queue, the worker pool and the tally store for each run and exposes
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	batchqueue "github.com/okian/podium/internal/adapters/mq/queue"
	workerpool "github.com/okian/podium/internal/adapters/mq/worker"
	repository "github.com/okian/podium/internal/adapters/repository"
	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/simulation"
	"github.com/okian/podium/internal/domain/types"
	"github.com/okian/podium/internal/report"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

const (
	defaultBatchSize     = 250
	defaultProgressSteps = 20
	defaultInflightSize  = 10_000
)

// Sentinel kinds for service errors.
var (
	ErrStopped   = errors.New("service stopped")
	ErrQueueFull = errors.New("batch queue full")
)

// Outcome is the result of one Monte Carlo run.
type Outcome struct {
	ID              uuid.UUID          `json:"id"`
	RemainingEvents int                `json:"remaining_events"`
	Trials          int                `json:"trials"`
	Seed            uint64             `json:"seed"`
	TiedTrials      int                `json:"tied_trials"`
	Tally           model.Tally        `json:"titles"`
	Probabilities   map[string]float64 `json:"probabilities"`
	Standings       []types.Standing   `json:"standings"`
	Elapsed         time.Duration      `json:"-"`
}

// Service implements the API dependencies for the simulator.
type Service struct {
	mu sync.RWMutex

	inflight dedupe.Deduper

	// Configuration
	workerCount   int
	batchSize     int
	progressSteps int
	seed          uint64
	inflightSize  int

	// State
	started bool
	baseCtx context.Context
	cancel  context.CancelFunc

	runs            atomic.Int64
	trialsCompleted atomic.Int64

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines per run.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithBatchSize sets how many trials a worker takes at once.
func WithBatchSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.batchSize = size
		}
	}
}

// WithProgressSteps sets how many progress lines a run logs. Zero disables them.
func WithProgressSteps(steps int) Option {
	return func(s *Service) {
		if steps >= 0 {
			s.progressSteps = steps
		}
	}
}

// WithSeed fixes the default seed. Zero draws a fresh seed per run.
func WithSeed(seed uint64) Option {
	return func(s *Service) {
		s.seed = seed
	}
}

// WithInflightSize bounds the request id tracker.
func WithInflightSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.inflightSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// RunOption adjusts a single run.
type RunOption func(*runSettings)

type runSettings struct {
	seed uint64
	top  int
}

// WithRunSeed overrides the seed for one run. Zero keeps the service default.
func WithRunSeed(seed uint64) RunOption {
	return func(r *runSettings) {
		if seed != 0 {
			r.seed = seed
		}
	}
}

// WithTop limits the standings to the n best ranked competitors. Zero or a
// value past the roster size keeps everyone. Probabilities always cover the
// whole roster.
func WithTop(n int) RunOption {
	return func(r *runSettings) {
		if n > 0 {
			r.top = n
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU(),
		batchSize:     defaultBatchSize,
		progressSteps: defaultProgressSteps,
		inflightSize:  defaultInflightSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.Get().Named("simulator")
	}
	s.inflight = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.inflightSize))

	return s
}

// Start marks the service as accepting runs. Runs in flight are canceled when
// ctx ends or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.baseCtx, s.cancel = context.WithCancel(ctx)
	s.started = true
	s.logger.Info(ctx, "simulator service started",
		logger.Int("workers", s.workerCount),
		logger.Int("batchSize", s.batchSize),
		logger.Uint64("seed", s.seed),
	)
	return nil
}

// Stop cancels runs in flight and refuses new ones.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cancel()
	s.started = false
	s.logger.Info(context.Background(), "simulator service stopped")
}

// runContext ties ctx to the service lifetime when the service was started.
func (s *Service) runContext(ctx context.Context) (context.Context, context.CancelFunc, error) {
	s.mu.RLock()
	base, started := s.baseCtx, s.started
	s.mu.RUnlock()

	runCtx, cancel := context.WithCancel(ctx)
	if base == nil {
		return runCtx, cancel, nil
	}
	if !started {
		cancel()
		return nil, nil, ErrStopped
	}
	stop := context.AfterFunc(base, cancel)
	return runCtx, func() { stop(); cancel() }, nil
}

// RunMonteCarlo estimates each competitor's championship probability over
// trials simulated continuations of the season.
//
// An empty roster yields an empty Outcome and no error. A non-positive trial
// count or a negative event count fails with simulation.ErrInvalidArgument.
func (s *Service) RunMonteCarlo(ctx context.Context, roster model.Roster, remainingEvents, trials int, opts ...RunOption) (Outcome, error) {
	out := Outcome{
		ID:              uuid.New(),
		RemainingEvents: remainingEvents,
		Trials:          trials,
		Tally:           model.Tally{},
		Probabilities:   map[string]float64{},
		Standings:       []types.Standing{},
	}
	log := s.logger
	runField := logger.String("run", out.ID.String())

	if len(roster) == 0 {
		metrics.RecordRun(metrics.OutcomeEmpty)
		log.Info(ctx, "no competitors to simulate", runField)
		return out, nil
	}
	if err := simulation.Validate(remainingEvents, trials); err != nil {
		metrics.RecordRun(metrics.OutcomeInvalid)
		return Outcome{}, err
	}

	settings := runSettings{seed: s.seed}
	for _, opt := range opts {
		opt(&settings)
	}
	if settings.seed == 0 {
		seed, err := simulation.NewSeed()
		if err != nil {
			return Outcome{}, err
		}
		settings.seed = seed
	}
	out.Seed = settings.seed

	runCtx, cancel, err := s.runContext(ctx)
	if err != nil {
		return Outcome{}, err
	}
	defer cancel()

	// Workers read the roster concurrently; keep them off the caller's slice.
	snapshot := roster.Clone()
	plan := simulation.Plan(trials, s.batchSize)

	store := repository.NewTallyStore(snapshot,
		repository.WithExpectedTrials(trials),
		repository.WithProgress(s.progressSteps, func(done, total int) {
			log.Info(runCtx, "progress",
				runField,
				logger.Int("percent", done*100/total),
				logger.Int("completed", done),
			)
		}),
	)

	queue := batchqueue.NewInMemoryQueue(batchqueue.WithCapacity(len(plan)))
	for _, b := range plan {
		if !queue.Enqueue(runCtx, b) {
			_ = queue.Close()
			metrics.RecordRun(metrics.OutcomeCanceled)
			if err := runCtx.Err(); err != nil {
				return Outcome{}, fmt.Errorf("enqueue batch %d: %w", b.Index, err)
			}
			return Outcome{}, ErrQueueFull
		}
	}
	_ = queue.Close()

	sim := workerpool.SimulatorFunc(func(ctx context.Context, b model.Batch) (model.BatchResult, error) {
		return simulation.RunBatch(ctx, simulation.NewRand(settings.seed, b.Index), snapshot, remainingEvents, b)
	})
	pool := workerpool.NewPool(min(s.workerCount, len(plan)), queue, sim, store)

	log.Info(runCtx, "running simulations",
		runField,
		logger.Int("competitors", len(snapshot)),
		logger.Int("remainingEvents", remainingEvents),
		logger.Int("trials", trials),
		logger.Int("batches", len(plan)),
		logger.Int("workers", pool.Size()),
		logger.Uint64("seed", settings.seed),
	)
	metrics.RecordRunStarted(len(snapshot), remainingEvents, trials)
	defer metrics.RecordRunFinished()

	start := time.Now()
	if err := pool.Run(runCtx); err != nil {
		metrics.RecordRun(metrics.OutcomeCanceled)
		log.Warn(ctx, "run aborted", runField, logger.Error(err))
		return Outcome{}, fmt.Errorf("run %s: %w", out.ID, err)
	}
	out.Elapsed = time.Since(start)

	if done := store.Completed(runCtx); done != trials {
		metrics.RecordRun(metrics.OutcomeCanceled)
		return Outcome{}, fmt.Errorf("run %s: merged %d of %d trials", out.ID, done, trials)
	}

	top := store.Count(runCtx)
	if settings.top > 0 && settings.top < top {
		top = settings.top
	}
	entries, err := store.TopN(runCtx, top)
	if err != nil {
		return Outcome{}, fmt.Errorf("run %s: %w", out.ID, err)
	}

	out.Tally = store.Tally(runCtx)
	out.TiedTrials = store.TiedTrials(runCtx)
	out.Probabilities = simulation.Probabilities(out.Tally, snapshot, trials)
	out.Standings = report.Standings(entries, out.Probabilities)

	s.runs.Add(1)
	s.trialsCompleted.Add(int64(trials))
	metrics.RecordRun(metrics.OutcomeCompleted)
	metrics.RecordRunDuration(float64(out.Elapsed.Milliseconds()))

	log.Info(ctx, "simulations finished",
		runField,
		logger.Duration("elapsed", out.Elapsed),
		logger.Int("tiedTrials", out.TiedTrials),
	)
	return out, nil
}

// SeenAndRecord atomically checks if a request id is in flight and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	return s.inflight.SeenAndRecord(ctx, id)
}

// Unrecord releases a request id once its run is over.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.inflight.Unrecord(ctx, id)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"batchSize":       s.batchSize,
		"runsCompleted":   s.runs.Load(),
		"trialsCompleted": s.trialsCompleted.Load(),
		"inflight":        s.inflight.Size(),
	}
}

// Size returns the number of request ids currently tracked.
func (s *Service) Size() int64 {
	return s.inflight.Size()
}
