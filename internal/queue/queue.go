// Package queue carries stage-invocation messages from the API boundary to
// the pipeline workers. Delivery is at-least-once; the pipeline's stage
// handlers are idempotent against re-delivery.
package queue

import "context"

// Message is a single stage invocation bound to one record.
type Message struct {
	Stage    string `json:"stage"`
	RecordID string `json:"record_id"`
}

// Queue is the task transport. Enqueue is fire-and-forget from the caller's
// perspective; Dequeue blocks until a message arrives or ctx is done.
type Queue interface {
	Enqueue(ctx context.Context, stage, recordID string) error
	Dequeue(ctx context.Context) (Message, error)
}

// Enqueuer is the producer half of Queue, for components that only submit.
type Enqueuer interface {
	Enqueue(ctx context.Context, stage, recordID string) error
}
