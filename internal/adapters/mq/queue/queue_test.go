package queue

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/okian/podium/internal/domain/model"
)

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, model.Batch{Index: 0, Start: 0, Size: 10}) {
		t.Error("expected enqueue to succeed")
	}

	b := <-q.Dequeue(ctx)
	if b.Size != 10 {
		t.Errorf("expected batch of 10, got %d", b.Size)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, model.Batch{Index: 0}) {
		t.Error("expected enqueue to succeed")
	}
	if !q.Enqueue(ctx, model.Batch{Index: 1}) {
		t.Error("expected enqueue to succeed")
	}
	if q.Enqueue(ctx, model.Batch{Index: 2}) {
		t.Error("expected enqueue to fail when full")
	}
}

func TestInMemoryQueue_CanceledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if q.Enqueue(ctx, model.Batch{}) {
		t.Error("expected enqueue to fail on a canceled context")
	}
}

func TestInMemoryQueue_DrainAfterClose(t *testing.T) {
	const batches = 50
	q := NewInMemoryQueue(WithCapacity(batches))
	ctx := context.Background()

	for i := 0; i < batches; i++ {
		if !q.Enqueue(ctx, model.Batch{Index: i, Start: i * 10, Size: 10}) {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[int]bool, batches)
		wg   sync.WaitGroup
	)
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for b := range q.Dequeue(ctx) {
				mu.Lock()
				seen[b.Index] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != batches {
		t.Errorf("expected %d distinct batches, got %d", batches, len(seen))
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(10))
	ctx := context.Background()

	if err := q.Close(); err != nil {
		t.Errorf("expected close to succeed, got error: %v", err)
	}

	if q.Enqueue(ctx, model.Batch{}) {
		t.Error("expected enqueue to fail after closing")
	}

	select {
	case _, ok := <-q.Dequeue(ctx):
		if ok {
			t.Error("expected no batches from a closed empty queue")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("expected dequeue channel to be closed within timeout")
	}

	if err := q.Close(); err != nil {
		t.Errorf("expected second close to succeed, got error: %v", err)
	}
}
