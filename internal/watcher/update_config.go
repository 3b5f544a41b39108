package watcher

import (
	"time"

	"github.com/raoulx24/backup-retention/internal/config"
)

// UpdateConfig swaps the source settings for hot-reload. A new directory or
// pattern forgets what was already queued, and a running fsnotify watch moves
// to the new directory. A new mode takes effect on restart.
func (w *Watcher) UpdateConfig(cfg config.SourceConfig) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if cfg.Watch.Mode != w.mode {
		w.log.Warn("watch mode change needs a restart", "current", w.mode, "configured", cfg.Watch.Mode)
	}
	reset := cfg.Path != w.dir || cfg.Pattern != w.pattern
	mode := w.mode

	w.apply(cfg)
	w.mode = mode

	if reset {
		w.seen = map[string]time.Time{}
	}
	if cfg.Path != w.watching {
		select {
		case w.moved <- struct{}{}:
		default:
		}
	}
}
