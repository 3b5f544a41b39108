package tag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/metrics"
)

var (
	ErrNoFileName   = errors.New("path has no file name")
	ErrTargetExists = errors.New("rename target already exists")
	// ErrUnencodable means the bare name would be read back as part of the
	// tag prefix, e.g. a file called "Daily-".
	ErrUnencodable = errors.New("file name cannot carry a tag prefix")
)

// Tagger adds and removes tags by renaming files.
type Tagger struct {
	fs      fs.FS
	log     logging.Logger
	metrics *metrics.Collector
	now     func() time.Time
}

type Option func(*Tagger)

func WithClock(now func() time.Time) Option {
	return func(tg *Tagger) { tg.now = now }
}

func WithMetrics(m *metrics.Collector) Option {
	return func(tg *Tagger) { tg.metrics = m }
}

func NewTagger(fsys fs.FS, log logging.Logger, opts ...Option) *Tagger {
	if fsys == nil {
		fsys = fs.New()
	}
	tg := &Tagger{
		fs:  fsys,
		log: logging.With(log, "tag"),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(tg)
	}
	return tg
}

func (tg *Tagger) Now() time.Time {
	return tg.now()
}

// Tag gives a file every tier it currently qualifies for and returns its new path.
// On failure the last path the file is known to have is returned with the error.
func (tg *Tagger) Tag(ctx context.Context, path string) (string, error) {
	meta, err := tg.fs.Stat(path)
	if err != nil {
		return path, fmt.Errorf("reading metadata of %s: %w", path, err)
	}

	current := path
	for _, t := range ApplicableTags(meta, tg.now()) {
		next, err := tg.AddTag(ctx, t, current)
		if err != nil {
			return current, err
		}
		current = next
	}
	return current, nil
}

// AddTag renames path so its prefix includes t. Adding a tag that is already
// present is a caller bug, logged and otherwise ignored.
func (tg *Tagger) AddTag(ctx context.Context, t Tag, path string) (string, error) {
	dir, base, err := splitPath(path)
	if err != nil {
		tg.log.Error("cannot tag path", "path", path, "tag", t, "error", err)
		return path, err
	}

	tags, bare := Parse(base)
	if IsUntagged(tags) {
		tags = nil
	}
	if Has(tags, t) {
		tg.log.Warn("tag already present", "path", path, "tag", t)
		return path, nil
	}

	want := Normalize(append(slices.Clone(tags), t))
	newName := Format(want, bare)
	if got, gotBare := Parse(newName); !slices.Equal(got, want) || gotBare != bare {
		tg.log.Error("cannot tag path", "path", path, "tag", t, "error", ErrUnencodable)
		return path, fmt.Errorf("%w: %q", ErrUnencodable, base)
	}

	newPath := filepath.Join(dir, newName)
	if err := tg.rename(ctx, path, newPath); err != nil {
		return path, err
	}
	tg.metrics.TagAdded(t.String())
	tg.log.Debug("tag added", "from", path, "to", newPath, "tag", t)
	return newPath, nil
}

// RemoveTag renames path so its prefix no longer includes t.
// Removing an absent tag returns the path unchanged.
func (tg *Tagger) RemoveTag(ctx context.Context, t Tag, path string) (string, error) {
	dir, base, err := splitPath(path)
	if err != nil {
		tg.log.Error("cannot untag path", "path", path, "tag", t, "error", err)
		return path, err
	}

	tags, bare := Parse(base)
	if !Has(tags, t) {
		return path, nil
	}

	remaining := slices.DeleteFunc(slices.Clone(tags), func(x Tag) bool { return x == t })
	newPath := filepath.Join(dir, Format(remaining, bare))
	if err := tg.rename(ctx, path, newPath); err != nil {
		return path, err
	}
	tg.metrics.TagRemoved(t.String())
	tg.log.Debug("tag removed", "from", path, "to", newPath, "tag", t)
	return newPath, nil
}

// rename refuses to replace an existing file: two backups that differ only
// in their tag prefix must never collapse into one.
func (tg *Tagger) rename(ctx context.Context, from, to string) error {
	if from == to {
		return nil
	}
	if _, err := tg.fs.Stat(to); err == nil {
		tg.metrics.Failure("rename")
		return fmt.Errorf("renaming %s: %w: %s", from, ErrTargetExists, to)
	} else if !errors.Is(err, os.ErrNotExist) {
		tg.log.Warn("cannot stat rename target", "path", to, "error", err)
	}

	if err := tg.fs.Rename(ctx, from, to); err != nil {
		tg.metrics.Failure("rename")
		return fmt.Errorf("renaming %s to %s: %w", from, to, err)
	}
	return nil
}

func splitPath(path string) (string, string, error) {
	dir, base := filepath.Split(path)
	if base == "" || base == "." || base == ".." {
		return "", "", fmt.Errorf("%w: %q", ErrNoFileName, path)
	}
	return dir, base, nil
}
