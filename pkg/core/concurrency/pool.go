package concurrency

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/fluxorio/threadpool/pkg/core/failfast"
)

// PoolConfig configures a Pool
type PoolConfig struct {
	Name    string // Label used by logs and metrics
	Workers int    // Number of worker goroutines, fixed for the pool's lifetime
}

// DefaultPoolConfig returns default pool configuration
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		Name:    "default",
		Workers: runtime.NumCPU(),
	}
}

// Stats is a point-in-time snapshot of pool counters
type Stats struct {
	Workers        int   // Fixed pool size
	RunningWorkers int   // Workers that have not terminated yet
	Submitted      int64 // Jobs accepted by Submit
	Completed      int64 // Jobs that returned, failed or panicked
	Failed         int64 // Jobs that returned an error
	Panicked       int64 // Jobs that panicked
	Pending        int   // Messages waiting in the queue (sentinels included)
}

// Pool owns a fixed set of workers and the producer side of their shared queue.
// Shutdown sends one sentinel per worker and joins them in index order; every
// job submitted before Shutdown runs first.
type Pool struct {
	name     string
	ctx      context.Context
	queue    *SharedQueue
	workers  []*worker
	observer Observer
	logger   Logger

	closed int32 // Atomic flag, set once by Shutdown

	joinMu   sync.Mutex
	joinErrs []error

	running   int32
	submitted int64
	completed int64
	failed    int64
	panicked  int64
}

// New creates a pool with exactly size workers and starts them.
// size must be at least 1; anything else is a programming error and panics
// before any goroutine is spawned.
func New(size int, opts ...Option) *Pool {
	failfast.If(size >= 1, "%w: got %d", ErrInvalidSize, size)

	o := options{
		name: "default",
		ctx:  context.Background(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = newDefaultLogger()
	}

	p := &Pool{
		name:     o.name,
		ctx:      o.ctx,
		queue:    NewSharedQueue(),
		observer: Observers(o.observers...),
		logger:   o.logger,
		workers:  make([]*worker, 0, size),
	}

	for id := 0; id < size; id++ {
		p.workers = append(p.workers, startWorker(id, p))
	}

	return p
}

// NewFromConfig creates a pool from a PoolConfig
func NewFromConfig(config PoolConfig, opts ...Option) *Pool {
	if config.Name != "" {
		opts = append([]Option{WithName(config.Name)}, opts...)
	}
	return New(config.Workers, opts...)
}

// Submit enqueues a job. It never waits for a free worker.
// Returns ErrNilJob for a nil job (typed nil included) and ErrPoolClosed once shutdown has begun.
func (p *Pool) Submit(job Job) error {
	if failfast.IsNil(job) {
		return ErrNilJob
	}
	if atomic.LoadInt32(&p.closed) == 1 {
		return ErrPoolClosed
	}

	msg := WorkMessage(job)
	atomic.AddInt64(&p.submitted, 1)
	if err := p.queue.Send(msg); err != nil {
		atomic.AddInt64(&p.submitted, -1)
		if errors.Is(err, ErrQueueClosed) {
			return ErrPoolClosed
		}
		return err
	}

	p.observer.JobSubmitted(msg.Info)
	return nil
}

// Execute submits a plain closure
func (p *Pool) Execute(f func()) error {
	return p.Submit(Func(f))
}

// Shutdown sends exactly one shutdown sentinel per worker, closes the queue
// for submission and joins the workers in index order.
//
// Only the first call does anything; later calls return ErrPoolClosed.
// If ctx ends before every worker is joined, the returned error wraps
// ErrShutdownTimeout and the rest can be joined later with Wait.
func (p *Pool) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.closed, 0, 1) {
		return ErrPoolClosed
	}

	p.observer.ShutdownRequested(len(p.workers))

	sentinels := make([]Message, len(p.workers))
	for i := range sentinels {
		sentinels[i] = ShutdownMessage()
	}
	if err := p.queue.CloseWith(sentinels...); err != nil {
		return fmt.Errorf("send shutdown sentinels: %w", err)
	}

	return p.Wait(ctx)
}

// Close shuts the pool down and waits without a deadline
func (p *Pool) Close() error {
	return p.Shutdown(context.Background())
}

// Wait joins every worker that has not been joined yet, in index order.
// It must only be called after Shutdown; otherwise it returns ErrPoolRunning.
func (p *Pool) Wait(ctx context.Context) error {
	if atomic.LoadInt32(&p.closed) == 0 {
		return ErrPoolRunning
	}

	p.joinMu.Lock()
	defer p.joinMu.Unlock()

	for _, w := range p.workers {
		if w.joined() {
			continue
		}
		err := w.join(ctx)
		switch {
		case errors.Is(err, ErrWorkerAlreadyJoined):
			continue
		case err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()):
			return fmt.Errorf("%w: waiting for worker %d: %w", ErrShutdownTimeout, w.id, err)
		case err != nil:
			p.logger.Errorf("pool %s: worker %d exited abnormally: %v", p.name, w.id, err)
			p.joinErrs = append(p.joinErrs, err)
		}
		p.observer.WorkerJoined(w.id)
	}

	return errors.Join(p.joinErrs...)
}

// Name returns the pool name
func (p *Pool) Name() string {
	return p.name
}

// Size returns the fixed number of workers
func (p *Pool) Size() int {
	return len(p.workers)
}

// IsClosed returns true once Shutdown has been called
func (p *Pool) IsClosed() bool {
	return atomic.LoadInt32(&p.closed) == 1
}

// Stats returns current pool counters
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:        len(p.workers),
		RunningWorkers: int(atomic.LoadInt32(&p.running)),
		Submitted:      atomic.LoadInt64(&p.submitted),
		Completed:      atomic.LoadInt64(&p.completed),
		Failed:         atomic.LoadInt64(&p.failed),
		Panicked:       atomic.LoadInt64(&p.panicked),
		Pending:        p.queue.Len(),
	}
}
