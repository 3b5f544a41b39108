package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// scan enqueues every matching file that is stable and changed since it was
// last queued. It reports whether some matching file is still settling, in
// which case the caller should scan again.
func (w *Watcher) scan(ctx context.Context) (pending bool) {
	w.mu.RLock()
	dir, pattern, stability := w.dir, w.pattern, w.stability
	w.mu.RUnlock()

	files, err := w.fs.List(dir)
	if err != nil {
		w.log.Error("failed to read incoming dir", "dir", dir, "error", err)
		return false
	}

	now := w.now()
	present := make(map[string]struct{}, len(files))
	for _, path := range files {
		name := filepath.Base(path)
		if !matches(pattern, name) {
			continue
		}
		present[path] = struct{}{}

		meta, err := w.fs.Stat(path)
		if err != nil {
			w.log.Warn("stat failed", "path", path, "error", err)
			continue
		}

		w.mu.RLock()
		last, queued := w.seen[path]
		w.mu.RUnlock()
		if queued && meta.MTime.Equal(last) {
			continue
		}

		if meta.Age(now) < stability {
			w.log.Debug("file still settling", "path", path, "mtime", meta.MTime)
			pending = true
			continue
		}

		if !w.enqueue(ctx, path, meta.MTime) {
			return pending
		}
	}

	w.forget(present)
	return pending
}

// forget drops queued entries whose file has left the directory, so a
// backup re-created under the same name is picked up again.
func (w *Watcher) forget(present map[string]struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path := range w.seen {
		if _, ok := present[path]; !ok {
			delete(w.seen, path)
		}
	}
}

// matches applies the source pattern to a file name. Hidden files, including
// in-flight ".tmp-" copies, never match.
func matches(pattern, name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	if pattern == "" {
		return true
	}
	ok, err := filepath.Match(pattern, name)
	return err == nil && ok
}

func (w *Watcher) markSeen(path string, mtime time.Time) {
	w.mu.Lock()
	w.seen[path] = mtime
	w.mu.Unlock()
}
