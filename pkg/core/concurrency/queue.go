package concurrency

import (
	"sync"

	"github.com/eapache/queue"
)

// SharedQueue is an unbounded FIFO of Messages shared by every worker of a pool.
// Producers never block. Consumers block in Receive until a message is available.
type SharedQueue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	items    *queue.Queue
	closed   bool
}

// NewSharedQueue creates an empty, open queue
func NewSharedQueue() *SharedQueue {
	q := &SharedQueue{
		items: queue.New(),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Send appends a message. Returns ErrQueueClosed once the producer side is closed.
func (q *SharedQueue) Send(msg Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.items.Add(msg)
	q.notEmpty.Signal()
	return nil
}

// CloseWith appends msgs and closes the producer side in one step,
// so nothing can be enqueued between the last of msgs and the close.
func (q *SharedQueue) CloseWith(msgs ...Message) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	for _, msg := range msgs {
		q.items.Add(msg)
	}
	q.closed = true
	q.notEmpty.Broadcast()
	return nil
}

// Receive blocks until a message is available and dequeues it.
// Items sent before close are still delivered; ErrQueueClosed is
// returned only when the queue is closed and drained.
func (q *SharedQueue) Receive() (Message, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.Length() == 0 {
		if q.closed {
			return Message{}, ErrQueueClosed
		}
		q.notEmpty.Wait()
	}
	return q.items.Remove().(Message), nil
}

// Len returns the number of queued messages
func (q *SharedQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Length()
}

// Closed reports whether the producer side is closed
func (q *SharedQueue) Closed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
