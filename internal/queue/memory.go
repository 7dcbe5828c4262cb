package queue

import (
	"context"
	"sync"
)

// MemoryQueue is an in-process Queue. It is the default transport for
// single-process deployments and tests. Enqueue never blocks: the buffer
// grows past its initial capacity, so a worker enqueueing a follow-up stage
// cannot deadlock against a queue its own pool has filled.
type MemoryQueue struct {
	mu    sync.Mutex
	items []Message
	wake  chan struct{}
}

var _ Queue = (*MemoryQueue)(nil)

// NewMemoryQueue creates a queue with the given initial capacity.
func NewMemoryQueue(size int) *MemoryQueue {
	if size < 0 {
		size = 0
	}
	return &MemoryQueue{
		items: make([]Message, 0, size),
		wake:  make(chan struct{}, 1),
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, stage, recordID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	q.mu.Lock()
	q.items = append(q.items, Message{Stage: stage, RecordID: recordID})
	q.mu.Unlock()
	q.signal()
	return nil
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (Message, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			msg := q.items[0]
			q.items = q.items[1:]
			remaining := len(q.items)
			q.mu.Unlock()
			// Wake the next waiter if work is left; the wake channel is
			// coalescing, so a consumed signal must be replaced.
			if remaining > 0 {
				q.signal()
			}
			return msg, nil
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return Message{}, ctx.Err()
		case <-q.wake:
		}
	}
}

func (q *MemoryQueue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Len returns the number of buffered messages.
func (q *MemoryQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
