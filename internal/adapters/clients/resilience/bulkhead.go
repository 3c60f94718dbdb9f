package resilience

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// bulkhead bounds the number of calls running at once and the number of
// calls waiting for a slot.
type bulkhead struct {
	slots    *semaphore.Weighted
	maxQueue int64
	waiting  atomic.Int64
}

func newBulkhead(maxConcurrent, maxQueue int) *bulkhead {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	if maxQueue < 0 {
		maxQueue = 0
	}

	return &bulkhead{
		slots:    semaphore.NewWeighted(int64(maxConcurrent)),
		maxQueue: int64(maxQueue),
	}
}

// acquire takes a slot, queueing while one frees up. It returns
// ErrBulkheadFull when the queue is also full, or ctx.Err() if ctx ends
// while queued.
func (b *bulkhead) acquire(ctx context.Context) error {
	if b.slots.TryAcquire(1) {
		return nil
	}

	if b.waiting.Add(1) > b.maxQueue {
		b.waiting.Add(-1)
		return ErrBulkheadFull
	}
	defer b.waiting.Add(-1)

	return b.slots.Acquire(ctx, 1)
}

func (b *bulkhead) release() {
	b.slots.Release(1)
}
