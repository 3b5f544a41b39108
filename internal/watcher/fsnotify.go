package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StartFsNotify scans after fsnotify reports changes, debounced. While a file
// is still settling it rescans every stability window.
func (w *Watcher) StartFsNotify(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	w.mu.RLock()
	dir := w.dir
	debounce := w.debounce
	stability := w.stability
	w.mu.RUnlock()

	if err := watcher.Add(dir); err != nil {
		return err
	}
	w.setWatching(dir)
	if stability <= 0 {
		stability = time.Second
	}

	timer := time.NewTimer(0) // initial scan
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-w.moved:
			w.mu.RLock()
			next := w.dir
			w.mu.RUnlock()
			if next == dir {
				continue
			}
			if err := w.fs.MkdirAll(next); err != nil {
				w.log.Error("creating incoming dir", "dir", next, "error", err)
				continue
			}
			if err := watcher.Add(next); err != nil {
				w.log.Error("cannot watch directory", "dir", next, "error", err)
				continue
			}
			_ = watcher.Remove(dir)
			w.log.Info("watch moved", "from", dir, "to", next)
			dir = next
			w.setWatching(dir)
			timer.Reset(0)

		case <-timer.C:
			if w.scan(ctx) {
				timer.Reset(stability)
			}

		case ev, ok := <-watcher.Events:
			if !ok {
				w.log.Error("events channel closed")
				return nil
			}
			w.log.Debug("event", "name", ev.Name, "op", ev.Op)

			w.mu.RLock()
			pattern := w.pattern
			w.mu.RUnlock()
			if !matches(pattern, filepath.Base(ev.Name)) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Error("fsnotify error", "error", err)
		}
	}
}

func (w *Watcher) setWatching(dir string) {
	w.mu.Lock()
	w.watching = dir
	w.mu.Unlock()
}
