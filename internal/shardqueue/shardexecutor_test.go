package shardqueue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type noopJob struct{}

func (n noopJob) Run(ctx context.Context) error { return nil }

// blockShard submits a job on key that holds the worker until the returned
// func is called.
func blockShard(t *testing.T, ex *ShardExecutor, key string) func() {
	t.Helper()
	blockCtx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	if err := ex.Submit(context.Background(), key, JobFunc(func(ctx context.Context) error {
		close(started)
		<-blockCtx.Done()
		return nil
	})); err != nil {
		t.Fatalf("submit blocking job: %v", err)
	}
	<-started
	return cancel
}

func TestShardExecutor_SubmitAndStop(t *testing.T) {
	t.Parallel()
	exec := NewShardExecutor(Config{})
	defer exec.Stop()

	if err := exec.Submit(context.Background(), "users/u1", noopJob{}); err != nil {
		t.Fatalf("submit error: %v", err)
	}
}

func TestShardExecutor_QueueFull(t *testing.T) {
	t.Parallel()
	exec := NewShardExecutor(Config{Shards: 1, QueueSize: 1, EnqueueTimeout: 10 * time.Millisecond})
	defer exec.Stop()

	unblock := blockShard(t, exec, "same")
	defer unblock()

	_ = exec.Submit(context.Background(), "same", noopJob{})
	err := exec.Submit(context.Background(), "same", noopJob{})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected queue full error, got %v", err)
	}
	var qf *QueueFullError
	if !errors.As(err, &qf) || qf.Capacity != 1 {
		t.Fatalf("expected *QueueFullError with capacity 1, got %#v", err)
	}
}

// FIFO ordering for a single key.
func TestShardExecutor_FIFOOrdering(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	wg.Add(5)
	for i := 0; i < 5; i++ {
		v := i
		if err := p.Submit(context.Background(), "projects/p1", JobFunc(func(ctx context.Context) error {
			mu.Lock()
			order = append(order, v)
			mu.Unlock()
			wg.Done()
			return nil
		})); err != nil {
			t.Fatalf("submit failed: %v", err)
		}
	}

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for jobs")
	}

	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if i != v {
			t.Fatalf("expected FIFO order, got %v", order)
		}
	}
}

// Jobs for different shards run in parallel (no head‑of‑line blocking).
func TestShardExecutor_ParallelDifferentShards(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 4, QueueSize: 10})
	defer p.Stop()

	keyA, keyB := "A", "B"
	for tries := 0; tries < 100 && p.shardFor(keyA) == p.shardFor(keyB); tries++ {
		keyB += "x"
	}

	unblock := blockShard(t, p, keyA)
	defer unblock()

	ran := make(chan struct{})
	if err := p.Submit(context.Background(), keyB, JobFunc(func(context.Context) error { close(ran); return nil })); err != nil {
		t.Fatalf("submit: %v", err)
	}
	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("job on other shard blocked behind shard A")
	}
}

// A failed job is reported once and never rerun.
func TestShardExecutor_FailedJobNotRetried(t *testing.T) {
	var handled, runs int32
	p := NewShardExecutor(Config{Shards: 1, ErrorHandler: func(error) { atomic.AddInt32(&handled, 1) }})
	defer p.Stop()

	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		atomic.AddInt32(&runs, 1)
		return errors.New("conflict")
	}))
	if err := p.Barrier(context.Background(), "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&runs) != 1 || atomic.LoadInt32(&handled) != 1 {
		t.Fatalf("runs=%d handled=%d, want 1/1", runs, handled)
	}
}

func TestShardExecutor_Barrier(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 2})
	defer p.Stop()

	var ranFirst int32
	_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
		time.Sleep(30 * time.Millisecond)
		atomic.StoreInt32(&ranFirst, 1)
		return nil
	}))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := p.Barrier(ctx, "k"); err != nil {
		t.Fatalf("barrier: %v", err)
	}
	if atomic.LoadInt32(&ranFirst) == 0 {
		t.Fatal("barrier returned before previous job executed")
	}
}

func TestShardExecutor_SubmitAfterStop(t *testing.T) {
	p := NewShardExecutor(Config{})
	p.Stop()
	p.Stop()
	if err := p.Submit(context.Background(), "k", noopJob{}); !errors.Is(err, ErrExecutorClosed) {
		t.Fatalf("expected ErrExecutorClosed, got %v", err)
	}
	if err := p.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestShardExecutor_StopDrainsQueue(t *testing.T) {
	p := NewShardExecutor(Config{Shards: 1, QueueSize: 8})
	unblock := blockShard(t, p, "k")

	var ran int32
	for i := 0; i < 3; i++ {
		_ = p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
			atomic.AddInt32(&ran, 1)
			return nil
		}))
	}
	unblock()
	p.Stop()
	if got := atomic.LoadInt32(&ran); got != 3 {
		t.Fatalf("expected 3 drained jobs, got %d", got)
	}
}

// A Submit racing Stop either fails with ErrExecutorClosed or its job runs
// before Stop returns.
func TestShardExecutor_SubmitRacingStopNeverLosesJob(t *testing.T) {
	for i := 0; i < 500; i++ {
		p := NewShardExecutor(Config{Shards: 1, QueueSize: 4})
		var ran int32
		submitted := make(chan error, 1)
		go func() {
			submitted <- p.Submit(context.Background(), "k", JobFunc(func(context.Context) error {
				atomic.StoreInt32(&ran, 1)
				return nil
			}))
		}()
		p.Stop()
		err := <-submitted
		switch {
		case err == nil:
			if atomic.LoadInt32(&ran) != 1 {
				t.Fatalf("iteration %d: accepted job did not run before Stop returned", i)
			}
		case !errors.Is(err, ErrExecutorClosed):
			t.Fatalf("iteration %d: unexpected error %v", i, err)
		}
	}
}
