// Package watcher monitors the incoming directory and queues backup files
// for the worker once they have stopped changing.
package watcher

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/fsprobe"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/worker"
)

const (
	ModeAuto     = "auto"
	ModePoll     = "poll"
	ModeFsnotify = "fsnotify"
)

// Watcher scans the incoming directory and enqueues new or updated files.
type Watcher struct {
	mu sync.RWMutex

	dir       string
	pattern   string
	interval  time.Duration
	mode      string
	debounce  time.Duration
	stability time.Duration

	fs    fs.FS
	log   logging.Logger
	queue *worker.Queue
	now   func() time.Time

	// seen maps a queued path to the mtime it was queued with.
	seen map[string]time.Time

	// moved fires when UpdateConfig changes the directory.
	moved chan struct{}
	// watching is the directory fsnotify currently reports on.
	watching string
}

// New creates a watcher from the source configuration.
func New(cfg config.SourceConfig, q *worker.Queue, fsys fs.FS, log logging.Logger) *Watcher {
	if fsys == nil {
		fsys = fs.New()
	}
	w := &Watcher{
		fs:    fsys,
		log:   logging.With(log, "watcher"),
		queue: q,
		now:   time.Now,
		seen:  map[string]time.Time{},
		moved: make(chan struct{}, 1),
	}
	w.apply(cfg)
	return w
}

func (w *Watcher) apply(cfg config.SourceConfig) {
	w.dir = cfg.Path
	w.pattern = cfg.Pattern
	w.interval = cfg.Watch.PollInterval
	w.mode = cfg.Watch.Mode
	w.debounce = cfg.Watch.DebounceWindow
	w.stability = cfg.Watch.StabilityWindow
}

// Start scans once and then watches with the configured strategy until ctx
// is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.RLock()
	dir, mode := w.dir, w.mode
	w.mu.RUnlock()

	if err := w.fs.MkdirAll(dir); err != nil {
		return fmt.Errorf("creating incoming dir: %w", err)
	}
	w.log.Info("starting watcher", "dir", dir, "mode", mode)

	switch mode {
	case ModeFsnotify:
		return w.StartFsNotify(ctx)

	case ModePoll:
		w.StartPolling(ctx)
		return nil

	case ModeAuto, "":
		res := fsprobe.Probe(dir, 0)
		if res.Supported {
			return w.StartFsNotify(ctx)
		}
		w.log.Warn("fsnotify disabled, falling back to polling", "reason", res.Reason)
		w.StartPolling(ctx)
		return nil

	default:
		return fmt.Errorf("unknown watch mode %q", mode)
	}
}
