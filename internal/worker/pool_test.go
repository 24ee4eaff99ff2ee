package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countJob struct {
	counter *int64
}

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

func (j *countJob) Execute(ctx context.Context) Result {
	atomic.AddInt64(j.counter, 1)
	return &countResult{}
}

func TestPoolExecutesAllJobs(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var counter int64
	for i := 0; i < 20; i++ {
		pool.Submit(&countJob{counter: &counter})
	}

	results := pool.Wait()

	if got := atomic.LoadInt64(&counter); got != 20 {
		t.Errorf("executed %d jobs, want 20", got)
	}
	if len(results) != 20 {
		t.Errorf("collected %d results, want 20", len(results))
	}
}

func TestPoolDefaultsToOneWorker(t *testing.T) {
	pool := NewPool(0)
	if pool.workers != 1 {
		t.Errorf("workers = %d, want 1", pool.workers)
	}
	pool.Start()
	pool.Shutdown()
}

type slowJob struct{}

func (j *slowJob) Execute(ctx context.Context) Result {
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
	}
	return &countResult{}
}

func TestPoolShutdownCancelsJobs(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Submit(&slowJob{})
	pool.Submit(&slowJob{})

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not cancel running jobs")
	}
}
