package worker

import (
	"context"
	"errors"
)

// Start runs the worker loop until ctx is done. Ingests and sweeps share one
// goroutine so they never touch the destination at the same time.
func (w *Worker) Start(ctx context.Context) {
	w.log.Info("starting worker")
	for {
		select {
		case <-ctx.Done():
			w.log.Info("worker stopped")
			return

		case job := <-w.queue.Ch:
			w.handle(ctx, job)

		case <-w.sweeps.Ready():
			req := w.sweeps.TryTake()
			if req == nil {
				continue
			}
			if _, err := w.Sweep(ctx, req.Trigger); err != nil {
				w.log.Error("sweep failed", "trigger", req.Trigger, "error", err)
			}
		}
	}
}

func (w *Worker) handle(ctx context.Context, job Job) {
	_, err := w.Ingest(ctx, job)
	switch {
	case err == nil:
	case errors.Is(err, ErrRejected), errors.Is(err, ErrDuplicate):
		w.log.Info("backup skipped", "source", job.SourcePath, "reason", err)
	default:
		w.metrics.Failure("ingest")
		w.log.Error("ingest failed", "source", job.SourcePath, "error", err)
	}
}
