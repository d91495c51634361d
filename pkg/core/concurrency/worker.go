package concurrency

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

// workerHandle is the one-time join token of a running worker
type workerHandle struct {
	done chan struct{}
	err  error // written before done is closed
}

// worker is a goroutine consuming messages from the pool's shared queue
type worker struct {
	id   int
	pool *Pool

	mu     sync.Mutex
	handle *workerHandle // nil once joined
}

// startWorker spawns the worker goroutine
func startWorker(id int, p *Pool) *worker {
	h := &workerHandle{done: make(chan struct{})}
	w := &worker{id: id, pool: p, handle: h}

	atomic.AddInt32(&p.running, 1)
	go func() {
		defer close(h.done)
		defer atomic.AddInt32(&p.running, -1)
		h.err = w.run()
	}()
	return w
}

// run loops until it consumes a shutdown sentinel or the queue becomes unusable.
// The queue lock is held only inside Receive, never while a job runs.
func (w *worker) run() error {
	p := w.pool
	p.observer.WorkerStarted(w.id)

	for {
		msg, err := p.queue.Receive()
		if err != nil {
			err = fmt.Errorf("worker %d: receive: %w", w.id, err)
			p.observer.WorkerTerminated(w.id, err)
			return err
		}

		switch msg.Kind {
		case MessageWork:
			w.execute(msg)
		case MessageShutdown:
			p.observer.WorkerTerminated(w.id, nil)
			return nil
		default:
			p.logger.Errorf("worker %d: dropping message of unknown kind %v", w.id, msg.Kind)
		}
	}
}

// execute runs one job to completion and records the outcome
func (w *worker) execute(msg Message) {
	p := w.pool
	p.observer.JobStarted(w.id, msg.Info)

	result := w.invoke(msg.Job)

	switch {
	case result.Panicked:
		atomic.AddInt64(&p.panicked, 1)
	case result.Err != nil:
		atomic.AddInt64(&p.failed, 1)
	}
	atomic.AddInt64(&p.completed, 1)

	p.observer.JobFinished(w.id, msg.Info, result)
}

// invoke calls the job, converting a panic into a JobPanicError so the worker survives
func (w *worker) invoke(job Job) (result JobResult) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			result.Err = &JobPanicError{Value: r, Stack: debug.Stack()}
			result.Panicked = true
		}
		result.Duration = time.Since(start)
	}()

	result.Err = job.Execute(w.pool.ctx)
	return result
}

// join waits for the worker goroutine to exit and consumes its handle.
// Returns ErrWorkerAlreadyJoined if the handle was consumed before.
func (w *worker) join(ctx context.Context) error {
	w.mu.Lock()
	h := w.handle
	w.mu.Unlock()
	if h == nil {
		return ErrWorkerAlreadyJoined
	}

	select {
	case <-h.done:
	default:
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.handle == nil {
		return ErrWorkerAlreadyJoined
	}
	w.handle = nil
	return h.err
}

// joined reports whether the handle was consumed
func (w *worker) joined() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.handle == nil
}
