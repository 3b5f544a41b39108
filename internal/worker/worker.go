// Package worker admits incoming backups into the destination directory and
// runs retention sweeps over it, one operation at a time.
package worker

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/journal"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/mailbox"
	"github.com/raoulx24/backup-retention/internal/metrics"
	"github.com/raoulx24/backup-retention/internal/retention"
	"github.com/raoulx24/backup-retention/internal/rules"
	"github.com/raoulx24/backup-retention/internal/tag"
)

var (
	// ErrRejected means the admission rules would prune the file straight away.
	ErrRejected = errors.New("backup rejected by retention rules")
	// ErrDuplicate means a backup with the same base name is already kept.
	ErrDuplicate = errors.New("backup already present in destination")
)

type Worker struct {
	mu           sync.RWMutex
	dest         config.DestinationConfig
	removeSource bool

	fs      fs.FS
	log     logging.Logger
	prune   *retention.AutoPrune
	rules   *rules.Rules
	journal journal.Store
	metrics *metrics.Collector

	queue  *Queue
	sweeps *mailbox.Mailbox[SweepRequest]
}

type Option func(*Worker)

func WithFS(fsys fs.FS) Option {
	return func(w *Worker) { w.fs = fsys }
}

// WithJournal records every sweep in store.
func WithJournal(store journal.Store) Option {
	return func(w *Worker) { w.journal = store }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(w *Worker) { w.metrics = m }
}

// WithRemoveSource deletes the incoming file once it is admitted.
func WithRemoveSource(remove bool) Option {
	return func(w *Worker) { w.removeSource = remove }
}

// New creates a worker for one destination. A nil rs admits only through prune.
func New(dest config.DestinationConfig, prune *retention.AutoPrune, rs *rules.Rules, q *Queue, log logging.Logger, opts ...Option) *Worker {
	w := &Worker{
		dest:   dest,
		fs:     fs.New(),
		log:    logging.With(log, "worker"),
		prune:  prune,
		rules:  rs,
		queue:  q,
		sweeps: mailbox.New[SweepRequest](),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.rules == nil {
		w.rules = rules.New(prune, log)
	}
	w.log.Debug("creating worker", "root", dest.Root)
	return w
}

func (w *Worker) config() (config.DestinationConfig, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dest, w.removeSource
}

// UpdateConfig hot-reloads destination and retention settings.
func (w *Worker) UpdateConfig(dest config.DestinationConfig, removeSource bool) {
	w.log.Debug("entering Worker.UpdateConfig()")
	w.mu.Lock()
	w.dest = dest
	w.removeSource = removeSource
	w.mu.Unlock()

	w.prune.UpdateConfig(dest.Retention.AutoPrune)
}

// RequestSweep schedules a sweep on the worker loop. It never blocks.
func (w *Worker) RequestSweep(trigger string) {
	w.sweeps.Put(SweepRequest{Trigger: trigger})
}

// Ingest copies the job's file into the destination, keeping its mtime, and
// tags it. The copy goes through a hidden ".tmp-" file so a sweep never sees
// a partial backup. The destination path is returned.
func (w *Worker) Ingest(ctx context.Context, job Job) (string, error) {
	dest, removeSource := w.config()

	src, err := w.fs.Stat(job.SourcePath)
	if err != nil {
		return "", fmt.Errorf("stat source: %w", err)
	}
	if !src.IsFile {
		return "", fmt.Errorf("source %s is not a regular file", job.SourcePath)
	}

	// Tags are derived from the mtime, never trusted from the incoming name.
	_, name := tag.Parse(filepath.Base(job.SourcePath))

	if err := w.fs.MkdirAll(dest.Root); err != nil {
		return "", fmt.Errorf("creating destination: %w", err)
	}

	existing, err := retention.ListBackups(w.fs, dest.Root)
	if err != nil {
		return "", fmt.Errorf("listing destination: %w", err)
	}
	if containsBase(existing, name) {
		return "", fmt.Errorf("%w: %s", ErrDuplicate, name)
	}

	target := filepath.Join(dest.Root, name)
	keep := w.rules.WouldKeep(ctx, existing, target, src)
	w.metrics.Admission(keep)
	if !keep {
		return "", fmt.Errorf("%w: %s", ErrRejected, name)
	}

	tmp := filepath.Join(dest.Root, ".tmp-"+name)
	if err := w.fs.CopyFile(ctx, job.SourcePath, tmp); err != nil {
		_ = w.fs.RemoveAll(tmp)
		return "", fmt.Errorf("copying %s: %w", name, err)
	}
	if err := w.fs.Chtimes(tmp, src.MTime); err != nil {
		_ = w.fs.RemoveAll(tmp)
		return "", fmt.Errorf("setting mtime: %w", err)
	}
	if err := w.fs.Rename(ctx, tmp, target); err != nil {
		_ = w.fs.RemoveAll(tmp)
		return "", fmt.Errorf("finalizing %s: %w", name, err)
	}

	final, err := w.prune.Tagger().Tag(ctx, target)
	if err != nil {
		// The file stays in place; the next sweep sees it untagged.
		return final, fmt.Errorf("tagging %s: %w", target, err)
	}
	w.metrics.FileIngested()
	w.log.Info("backup admitted", "source", job.SourcePath, "path", final, "size", src.Size)

	if removeSource {
		if err := w.fs.Remove(ctx, job.SourcePath); err != nil {
			w.log.Warn("could not remove ingested source", "path", job.SourcePath, "error", err)
		}
	}

	w.RequestSweep(TriggerIngest)
	return final, nil
}

// containsBase reports whether any file in files has base name name once its
// tag prefix is stripped.
func containsBase(files []string, name string) bool {
	for _, f := range files {
		if _, base := tag.Parse(filepath.Base(f)); base == name {
			return true
		}
	}
	return false
}
