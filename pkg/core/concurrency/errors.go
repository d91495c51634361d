package concurrency

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSize is the panic cause when a pool is built with fewer than one worker
	ErrInvalidSize = errors.New("pool size must be at least 1")

	// ErrNilJob is returned when submitting a nil job
	ErrNilJob = errors.New("job cannot be nil")

	// ErrPoolClosed is returned by Submit and Shutdown once shutdown has begun
	ErrPoolClosed = errors.New("pool is closed")

	// ErrPoolRunning is returned by Wait before Shutdown was called
	ErrPoolRunning = errors.New("pool is still running")

	// ErrQueueClosed is returned when sending to (or draining) a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrWorkerAlreadyJoined is returned when a worker's handle was already consumed
	ErrWorkerAlreadyJoined = errors.New("worker already joined")

	// ErrShutdownTimeout is returned when the join step outlives its context
	ErrShutdownTimeout = errors.New("shutdown timed out")
)

// JobPanicError carries a panic recovered from a job
type JobPanicError struct {
	Value interface{}
	Stack []byte
}

func (e *JobPanicError) Error() string {
	return fmt.Sprintf("job panicked: %v", e.Value)
}
