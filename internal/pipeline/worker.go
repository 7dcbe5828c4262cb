package pipeline

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"seopipe/internal/queue"
)

// Worker drains the task queue with a fixed pool of goroutines, handing each
// message to the pipeline.
type Worker struct {
	tasks    queue.Queue
	pipeline *Pipeline
	count    int
}

// NewWorker creates a worker pool of the given size.
func NewWorker(tasks queue.Queue, p *Pipeline, count int) *Worker {
	if count < 1 {
		count = 1
	}
	return &Worker{tasks: tasks, pipeline: p, count: count}
}

// Run blocks until ctx is cancelled and every worker goroutine has drained
// its in-flight message.
func (w *Worker) Run(ctx context.Context) {
	slog.Info("starting pipeline workers", "count", w.count)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < w.count; i++ {
		g.Go(func() error {
			w.loop(ctx)
			return nil
		})
	}
	_ = g.Wait()

	slog.Info("pipeline workers stopped")
}

func (w *Worker) loop(ctx context.Context) {
	for {
		msg, err := w.tasks.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Error("dequeue failed", "error", err)
			if !sleep(ctx, time.Second) {
				return
			}
			continue
		}
		if err := w.pipeline.Handle(ctx, msg); err != nil {
			slog.Error("dropping message", "stage", msg.Stage, "record_id", msg.RecordID, "error", err)
		}
	}
}
