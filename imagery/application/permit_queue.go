package application

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// PermitQueue caps the number of concurrent generator calls. Waiters are
// granted permits in arrival order.
type PermitQueue struct {
	sem      *semaphore.Weighted
	capacity int64
	inFlight atomic.Int64
	waiting  atomic.Int64
	peak     atomic.Int64
}

func NewPermitQueue(capacity int) *PermitQueue {
	if capacity <= 0 {
		capacity = 4
	}
	return &PermitQueue{sem: semaphore.NewWeighted(int64(capacity)), capacity: int64(capacity)}
}

// Acquire blocks until a permit is free or ctx ends. A cancelled waiter leaves
// the queue without holding a permit.
func (q *PermitQueue) Acquire(ctx context.Context) error {
	q.waiting.Add(1)
	err := q.sem.Acquire(ctx, 1)
	q.waiting.Add(-1)
	if err != nil {
		return err
	}
	n := q.inFlight.Add(1)
	for {
		peak := q.peak.Load()
		if n <= peak || q.peak.CompareAndSwap(peak, n) {
			break
		}
	}
	return nil
}

func (q *PermitQueue) Release() {
	q.inFlight.Add(-1)
	q.sem.Release(1)
}

func (q *PermitQueue) InFlight() int { return int(q.inFlight.Load()) }
func (q *PermitQueue) Waiting() int  { return int(q.waiting.Load()) }
func (q *PermitQueue) Capacity() int { return int(q.capacity) }

// Peak is the highest number of permits ever held at once.
func (q *PermitQueue) Peak() int { return int(q.peak.Load()) }
