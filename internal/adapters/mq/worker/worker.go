// Package worker drains trial batches off a queue, simulates them and hands
// the partial tallies to a recorder.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/pkg/logger"
	"github.com/okian/podium/pkg/metrics"
)

// Batch is what workers read off the queue.
type Batch = model.Batch

// Simulator runs every trial of one batch.
type Simulator interface {
	Simulate(ctx context.Context, b Batch) (model.BatchResult, error)
}

// SimulatorFunc adapts a plain function to Simulator.
type SimulatorFunc func(ctx context.Context, b Batch) (model.BatchResult, error)

// Simulate calls f(ctx, b).
func (f SimulatorFunc) Simulate(ctx context.Context, b Batch) (model.BatchResult, error) {
	return f(ctx, b)
}

// Recorder merges a finished batch into the run's aggregate.
type Recorder interface {
	Record(ctx context.Context, res model.BatchResult) error
}

// Queue defines how workers receive batches.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Batch
}

// Worker processes batches until the queue is drained or ctx is canceled.
type Worker interface {
	// Run returns nil once the queue is drained, or the first processing error.
	Run(ctx context.Context) error
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue     Queue
	simulator Simulator
	recorder  Recorder
	name      string

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, simulator Simulator, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		simulator: simulator,
		recorder:  recorder,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) error {
	batches := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case b, ok := <-batches:
			if !ok {
				return ctx.Err()
			}
			if err := w.process(ctx, b); err != nil {
				return err
			}
		}
	}
}

func (w *InMemoryWorker) process(ctx context.Context, b Batch) error {
	start := time.Now()
	defer func() {
		metrics.RecordBatchLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	res, err := w.simulator.Simulate(ctx, b)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "simulate_error")
		w.logger.Debug(ctx, "batch aborted",
			logger.Int("batch", b.Index),
			logger.Error(err),
		)
		return fmt.Errorf("batch %d: %w", b.Index, err)
	}

	if err := w.recorder.Record(ctx, res); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		w.logger.Error(ctx, "recording batch failed",
			logger.Int("batch", b.Index),
			logger.Error(err),
		)
		return fmt.Errorf("record batch %d: %w", b.Index, err)
	}

	metrics.RecordTrials(b.Size, res.TiedTrials)
	return nil
}

// Pool manages multiple workers over one queue.
type Pool struct {
	workers []*InMemoryWorker
	logger  logger.Logger
}

// NewPool creates a new worker pool. A non-positive count uses one worker per CPU.
func NewPool(workerCount int, queue Queue, simulator Simulator, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			simulator,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int { return len(p.workers) }

// Run starts every worker and blocks until the queue is drained. The first
// worker error cancels the others and is returned.
func (p *Pool) Run(ctx context.Context) error {
	metrics.UpdateWorkerActiveCount(len(p.workers))
	defer metrics.UpdateWorkerActiveCount(0)

	g, gctx := errgroup.WithContext(ctx)
	for _, w := range p.workers {
		g.Go(func() error { return w.Run(gctx) })
	}

	if err := g.Wait(); err != nil {
		p.logger.Debug(ctx, "pool stopped early", logger.Error(err))
		return err
	}
	return nil
}
