package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_DispatchNonBlocking(t *testing.T) {
	pool := New(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	start := time.Now()
	pool.Dispatch(Job{
		Kind: "preload",
		Key:  "midnight-fern",
		Handler: func(ctx context.Context) error {
			time.Sleep(100 * time.Millisecond)
			return nil
		},
	})
	assert.Less(t, time.Since(start), 10*time.Millisecond, "Dispatch must not wait for the handler")
}

func TestPool_SameKeySequentialProcessing(t *testing.T) {
	pool := New(4, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var (
		results []int
		mu      sync.Mutex
		done    sync.WaitGroup
	)

	for i := 1; i <= 5; i++ {
		val := i
		done.Add(1)
		pool.Dispatch(Job{
			Kind: "order_event",
			Key:  "order-1",
			Handler: func(ctx context.Context) error {
				defer done.Done()
				time.Sleep(5 * time.Millisecond)
				mu.Lock()
				results = append(results, val)
				mu.Unlock()
				return nil
			},
		})
	}

	done.Wait()
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []int{1, 2, 3, 4, 5}, results, "jobs sharing a key must keep dispatch order")
}

func TestPool_RespectsMaxWorkers(t *testing.T) {
	maxWorkers := 3
	pool := New(maxWorkers, 100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool.Start(ctx)
	defer pool.Stop()

	var (
		activeCount int32
		maxActive   int32
		done        sync.WaitGroup
	)

	for i := 0; i < 10; i++ {
		done.Add(1)
		pool.Dispatch(Job{
			Kind: "preload",
			Key:  fmt.Sprintf("product-%d", i),
			Handler: func(ctx context.Context) error {
				defer done.Done()
				current := atomic.AddInt32(&activeCount, 1)
				for {
					seen := atomic.LoadInt32(&maxActive)
					if current <= seen || atomic.CompareAndSwapInt32(&maxActive, seen, current) {
						break
					}
				}
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&activeCount, -1)
				return nil
			},
		})
	}

	done.Wait()
	assert.LessOrEqual(t, atomic.LoadInt32(&maxActive), int32(maxWorkers))
}

func TestPool_GracefulShutdownCompletesQueuedJobs(t *testing.T) {
	pool := New(2, 10)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)

	var completed int32
	for i := 0; i < 4; i++ {
		pool.Dispatch(Job{
			Kind: "preload",
			Key:  fmt.Sprintf("p-%d", i),
			Handler: func(ctx context.Context) error {
				time.Sleep(20 * time.Millisecond)
				atomic.AddInt32(&completed, 1)
				return nil
			},
		})
	}

	time.Sleep(5 * time.Millisecond)
	cancel()
	pool.Stop()

	assert.Equal(t, int32(4), atomic.LoadInt32(&completed))
}

func TestPool_ErrorsAndPanicsAreCounted(t *testing.T) {
	pool := New(1, 10)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pool.Start(ctx)

	var done sync.WaitGroup
	done.Add(2)
	pool.Dispatch(Job{Kind: "k", Key: "a", Handler: func(ctx context.Context) error {
		defer done.Done()
		return errors.New("boom")
	}})
	pool.Dispatch(Job{Kind: "k", Key: "a", Handler: func(ctx context.Context) error {
		defer done.Done()
		panic("kaboom")
	}})
	done.Wait()
	pool.Stop()

	stats := pool.GetStats()
	assert.Equal(t, int64(2), stats.TotalErrors)
	assert.Equal(t, int64(2), stats.TotalProcessed)
}

func TestPool_DispatchAfterStopIsDropped(t *testing.T) {
	pool := New(1, 1)
	pool.Start(context.Background())
	pool.Stop()

	ok := pool.TryDispatch(Job{Kind: "k", Key: "a", Handler: func(ctx context.Context) error { return nil }})
	assert.False(t, ok)
	assert.Equal(t, int64(1), pool.GetStats().TotalDropped)
}

func TestPool_ConsistentHashing(t *testing.T) {
	pool := New(4, 100)

	shard1 := pool.shardFor("oud-mystique")
	shard2 := pool.shardFor("oud-mystique")

	assert.Equal(t, shard1, shard2)
	assert.GreaterOrEqual(t, shard1, 0)
	assert.Less(t, shard1, 4)
}

func TestPool_FairDistribution(t *testing.T) {
	numWorkers := 4
	pool := New(numWorkers, 100)

	shardCounts := make(map[int]int)
	for i := 0; i < 400; i++ {
		shardCounts[pool.shardFor(fmt.Sprintf("product-%d", i))]++
	}

	for shard, count := range shardCounts {
		assert.Greater(t, count, 60, "worker %d got too few keys", shard)
		assert.Less(t, count, 140, "worker %d got too many keys", shard)
	}
}
