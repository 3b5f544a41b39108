// Package retention decides which backup copies to keep.
//
// AutoPrune groups files by the tags in their names, sorts every group by age
// and strips a tier's tag from the oldest files once the group holds more than
// the configured count and the file is older than count tier-lengths. Files left
// without any tag are deleted by RemoveUntagged.
//
// The file name is the only state. A sweep interrupted half-way is resumed by
// sweeping again. Two sweeps over the same directory must not run concurrently.
package retention

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/metrics"
	"github.com/raoulx24/backup-retention/internal/tag"
)

type AutoPrune struct {
	mu      sync.RWMutex
	cfg     config.AutoPruneConfig
	fs      fs.FS
	tagger  *tag.Tagger
	log     logging.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

type Option func(*AutoPrune)

func WithClock(now func() time.Time) Option {
	return func(a *AutoPrune) { a.now = now }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(a *AutoPrune) { a.metrics = m }
}

// WithTagger replaces the tagger built from the engine's own fs, clock and metrics.
func WithTagger(tg *tag.Tagger) Option {
	return func(a *AutoPrune) { a.tagger = tg }
}

func New(cfg config.AutoPruneConfig, fsys fs.FS, log logging.Logger, opts ...Option) *AutoPrune {
	if fsys == nil {
		fsys = fs.New()
	}
	a := &AutoPrune{
		cfg: cfg,
		fs:  fsys,
		log: logging.With(log, "retention"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.tagger == nil {
		a.tagger = tag.NewTagger(fsys, log, tag.WithClock(a.now), tag.WithMetrics(a.metrics))
	}
	return a
}

// Name identifies the engine when it acts as an admission rule.
func (a *AutoPrune) Name() string {
	return "autoprune"
}

func (a *AutoPrune) Config() config.AutoPruneConfig {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

// UpdateConfig swaps the policy for hot-reload. Sweeps already running keep the old one.
func (a *AutoPrune) UpdateConfig(cfg config.AutoPruneConfig) {
	a.mu.Lock()
	a.cfg = cfg
	a.mu.Unlock()
	a.log.Info("retention policy updated",
		"hours", cfg.Hours, "days", cfg.Days, "weeks", cfg.Weeks,
		"months", cfg.Months, "years", cfg.Years, "keep_latest", cfg.KeepLatest)
}

func (a *AutoPrune) Tagger() *tag.Tagger {
	return a.tagger
}

// Limit returns how many copies a tier retains and how far back it reaches.
// A window longer than time.Duration can hold saturates at the maximum.
func Limit(cfg config.AutoPruneConfig, t tag.Tag) (int, time.Duration) {
	var count int
	switch t {
	case tag.Hourly:
		count = cfg.Hours
	case tag.Daily:
		count = cfg.Days
	case tag.Weekly:
		count = cfg.Weeks
	case tag.Monthly:
		count = cfg.Months
	case tag.Yearly:
		count = cfg.Years
	default:
		return 0, 0
	}
	if count > 0 && int64(count) > math.MaxInt64/int64(t.Duration()) {
		return count, time.Duration(math.MaxInt64)
	}
	return count, time.Duration(count) * t.Duration()
}

type aged struct {
	path string // path as passed in; renames are tracked separately
	meta fs.Metadata
}

// AutoRemove runs one sweep over files. Tiers are processed in declaration
// order and, within a tier, files oldest first; the scan of a tier stops at
// the first file that is too young, since everything after it is younger.
//
// Rename failures are logged and collected in the result without stopping the
// sweep. The returned error is only set when ctx is cancelled.
func (a *AutoPrune) AutoRemove(ctx context.Context, files []string) (SweepResult, error) {
	cfg := a.Config()
	now := a.now()

	current := make(map[string]string, len(files))
	buckets := make(map[tag.Tag][]aged, len(tag.All()))
	for _, t := range tag.All() {
		buckets[t] = nil
	}

	for _, f := range files {
		if _, seen := current[f]; seen {
			continue
		}
		meta, err := a.fs.Stat(f)
		if err != nil {
			a.log.Debug("skipping unreadable file", "path", f, "error", err)
			continue
		}
		current[f] = f

		tags, _ := tag.Parse(filepath.Base(f))
		for _, t := range tags {
			buckets[t] = append(buckets[t], aged{path: f, meta: meta})
		}
	}

	var res SweepResult
	for _, t := range tag.Tiers() {
		bucket := sortByAge(buckets[t], now)
		count, window := Limit(cfg, t)
		dateLimit := now.Add(-window)

		n := len(bucket)
		for n > count {
			if err := ctx.Err(); err != nil {
				res.Files = survivors(current)
				return res, err
			}

			oldest := bucket[n-1]
			if !oldest.meta.MTime.Before(dateLimit) {
				break
			}

			from := current[oldest.path]
			to, err := a.tagger.RemoveTag(ctx, t, from)
			if err != nil {
				a.log.Error("demotion failed", "path", from, "tag", t, "error", err)
				res.Failed = append(res.Failed, Failure{Path: from, Op: "rename", Err: err})
			} else if to != from {
				current[oldest.path] = to
				res.Demoted = append(res.Demoted, Change{From: from, To: to, Tag: t})
			}
			n--
		}
	}

	res.Files = survivors(current)
	return res, nil
}

// sortByAge orders files newest first (ascending age). Equal ages fall back
// to the path so repeated sweeps pick the same victims.
func sortByAge(files []aged, now time.Time) []aged {
	sorted := slices.Clone(files)
	slices.SortStableFunc(sorted, func(x, y aged) int {
		if c := cmp.Compare(x.meta.Age(now), y.meta.Age(now)); c != 0 {
			return c
		}
		return strings.Compare(x.path, y.path)
	})
	return sorted
}

func survivors(current map[string]string) []string {
	out := make([]string, 0, len(current))
	for _, p := range current {
		out = append(out, p)
	}
	slices.Sort(out)
	return out
}

// RemoveUntagged deletes every file whose name carries no tag and returns the
// paths actually removed. Failures are joined into the error; the batch never stops early
// unless ctx is cancelled.
func (a *AutoPrune) RemoveUntagged(ctx context.Context, files []string) ([]string, error) {
	removed, failed := a.removeUntagged(ctx, files)
	errs := make([]error, 0, len(failed))
	for _, f := range failed {
		errs = append(errs, f)
	}
	return removed, errors.Join(errs...)
}

func (a *AutoPrune) removeUntagged(ctx context.Context, files []string) ([]string, []Failure) {
	var removed []string
	var failed []Failure

	for _, f := range files {
		tags, _ := tag.Parse(filepath.Base(f))
		if !tag.IsUntagged(tags) {
			continue
		}
		if err := ctx.Err(); err != nil {
			failed = append(failed, Failure{Path: f, Op: "remove", Err: err})
			break
		}

		if err := a.fs.Remove(ctx, f); err != nil {
			a.log.Error("removing untagged file failed", "path", f, "error", err)
			a.metrics.Failure("remove")
			failed = append(failed, Failure{Path: f, Op: "remove", Err: err})
			continue
		}

		a.metrics.FileRemoved()
		a.log.Info("removed untagged file", "path", f)
		removed = append(removed, f)
	}

	return removed, failed
}

// WouldKeep reports whether a new file would survive the next sweep.
// The keep-latest floor always wins; above it, a file that fits no tier is rejected.
func (a *AutoPrune) WouldKeep(ctx context.Context, existing []string, newPath string, meta fs.Metadata) bool {
	cfg := a.Config()
	if len(existing) < cfg.KeepLatest {
		return true
	}
	if len(tag.ApplicableTags(meta, a.now())) == 0 {
		a.log.Debug("new file fits no retention tier", "path", newPath, "mtime", meta.MTime)
		return false
	}
	return true
}

// Apply sweeps every backup in dir and, when removeUntagged is set, deletes
// what is left without tags.
func (a *AutoPrune) Apply(ctx context.Context, dir string, removeUntagged bool) (Report, error) {
	rep := Report{Dir: dir, Started: a.now()}

	files, err := ListBackups(a.fs, dir)
	if err != nil {
		rep.Finished = a.now()
		return rep, fmt.Errorf("listing %s: %w", dir, err)
	}

	res, err := a.AutoRemove(ctx, files)
	rep.SweepResult = res
	if err != nil {
		rep.Finished = a.now()
		return rep, err
	}

	rep.Kept = res.Files
	if removeUntagged {
		removed, failed := a.removeUntagged(ctx, res.Files)
		rep.Removed = removed
		rep.Failed = append(rep.Failed, failed...)
		rep.Kept = slices.DeleteFunc(slices.Clone(res.Files), func(p string) bool {
			return slices.Contains(removed, p)
		})
	}

	rep.Finished = a.now()
	a.metrics.SweepFinished(rep.Finished.Sub(rep.Started), rep.Finished)
	a.log.Info("retention sweep finished",
		"dir", dir,
		"files", len(files),
		"demoted", len(rep.Demoted),
		"removed", len(rep.Removed),
		"failed", len(rep.Failed),
		"kept", len(rep.Kept),
	)

	return rep, ctx.Err()
}

// ListBackups returns the backup files in dir. Hidden files, including the
// worker's in-flight ".tmp-" copies, are not backups.
func ListBackups(fsys fs.FS, dir string) ([]string, error) {
	all, err := fsys.List(dir)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(all, func(p string) bool {
		return strings.HasPrefix(filepath.Base(p), ".")
	}), nil
}
