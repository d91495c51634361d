package concurrency

import (
	"context"
	"errors"
	"testing"
	"time"
)

// newBarePool builds a pool shell with no workers so tests can drive one worker directly
func newBarePool() *Pool {
	return &Pool{
		name:     "test",
		ctx:      context.Background(),
		queue:    NewSharedQueue(),
		observer: NopObserver{},
		logger:   newDefaultLogger(),
	}
}

func TestWorker_JoinConsumesHandleOnce(t *testing.T) {
	p := newBarePool()
	w := startWorker(0, p)

	p.queue.Send(ShutdownMessage())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if err := w.join(ctx); err != nil {
		t.Fatalf("join() error = %v", err)
	}
	if !w.joined() {
		t.Error("joined() should return true after join()")
	}
	if err := w.join(ctx); !errors.Is(err, ErrWorkerAlreadyJoined) {
		t.Errorf("second join() error = %v, want ErrWorkerAlreadyJoined", err)
	}
}

func TestWorker_StopsAfterOneSentinel(t *testing.T) {
	p := newBarePool()
	w := startWorker(0, p)

	p.queue.Send(ShutdownMessage())
	p.queue.Send(ShutdownMessage())

	if err := w.join(context.Background()); err != nil {
		t.Fatalf("join() error = %v", err)
	}
	if p.queue.Len() != 1 {
		t.Errorf("queue Len() = %d, want 1 (worker must consume exactly one sentinel)", p.queue.Len())
	}
}

func TestWorker_TerminatesWhenQueueUnusable(t *testing.T) {
	p := newBarePool()
	w := startWorker(3, p)

	p.queue.CloseWith()

	err := w.join(context.Background())
	if !errors.Is(err, ErrQueueClosed) {
		t.Errorf("join() error = %v, want ErrQueueClosed", err)
	}
}

func TestWorker_JoinRespectsContext(t *testing.T) {
	p := newBarePool()
	w := startWorker(0, p)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := w.join(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("join() error = %v, want DeadlineExceeded", err)
	}
	if w.joined() {
		t.Error("handle must survive a join that timed out")
	}

	p.queue.Send(ShutdownMessage())
	if err := w.join(context.Background()); err != nil {
		t.Errorf("join() after sentinel error = %v", err)
	}
}

func TestWorker_RecoversJobPanic(t *testing.T) {
	p := newBarePool()
	w := startWorker(0, p)

	ran := make(chan struct{})
	p.queue.Send(WorkMessage(Func(func() { panic("kaboom") })))
	p.queue.Send(WorkMessage(Func(func() { close(ran) })))
	p.queue.Send(ShutdownMessage())

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive a panicking job")
	}

	if err := w.join(context.Background()); err != nil {
		t.Fatalf("join() error = %v", err)
	}
	if p.panicked != 1 {
		t.Errorf("panicked = %d, want 1", p.panicked)
	}
	if p.completed != 2 {
		t.Errorf("completed = %d, want 2", p.completed)
	}
}

func TestWorker_InvokeReportsPanicValue(t *testing.T) {
	p := newBarePool()
	w := &worker{id: 0, pool: p}

	result := w.invoke(Func(func() { panic("bad input") }))

	if !result.Panicked {
		t.Fatal("invoke() should report Panicked")
	}
	var perr *JobPanicError
	if !errors.As(result.Err, &perr) {
		t.Fatalf("invoke() error = %T, want *JobPanicError", result.Err)
	}
	if perr.Value != "bad input" {
		t.Errorf("panic value = %v, want bad input", perr.Value)
	}
	if len(perr.Stack) == 0 {
		t.Error("panic stack should be captured")
	}
}
