package concurrency

import (
	"context"
)

// Job represents a single deferred unit of work.
// A submitted job is executed exactly once, by exactly one worker.
type Job interface {
	// Execute performs the job work.
	// ctx is the pool's base context; the pool never cancels it.
	Execute(ctx context.Context) error

	// Name returns a human-readable name for the job (for logging/debugging)
	Name() string
}

// JobFunc is a function type that implements Job
type JobFunc func(ctx context.Context) error

// Execute implements Job interface for JobFunc
func (f JobFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Name returns a default name for JobFunc
func (f JobFunc) Name() string {
	return "JobFunc"
}

// Func adapts a plain closure into a Job
func Func(f func()) Job {
	if f == nil {
		return nil
	}
	return closureJob(f)
}

type closureJob func()

func (f closureJob) Execute(context.Context) error {
	f()
	return nil
}

func (f closureJob) Name() string {
	return "func"
}

// NamedJob wraps a JobFunc with a custom name
type NamedJob struct {
	name string
	fn   JobFunc
}

// NewNamedJob creates a new NamedJob
func NewNamedJob(name string, fn JobFunc) *NamedJob {
	return &NamedJob{
		name: name,
		fn:   fn,
	}
}

// Execute implements Job interface
func (nj *NamedJob) Execute(ctx context.Context) error {
	return nj.fn(ctx)
}

// Name returns the job name
func (nj *NamedJob) Name() string {
	return nj.name
}
