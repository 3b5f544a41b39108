package watcher

import (
	"context"
	"time"

	"github.com/raoulx24/backup-retention/internal/worker"
)

// enqueue submits a file to the worker queue. It blocks while the queue is
// full and returns false if ctx ends first.
func (w *Watcher) enqueue(ctx context.Context, path string, mod time.Time) bool {
	if !w.queue.Push(ctx, worker.Job{SourcePath: path, Timestamp: mod}) {
		w.log.Debug("context canceled before enqueue", "path", path)
		return false
	}
	w.markSeen(path, mod)
	w.log.Info("queued backup", "path", path, "mtime", mod)
	return true
}
