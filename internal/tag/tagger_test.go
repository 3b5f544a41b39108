package tag

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string, mtime time.Time) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	if !mtime.IsZero() {
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	return path
}

func newTestTagger() *Tagger {
	return NewTagger(fs.New(), logging.Discard())
}

func TestAddTag(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "test.txt", time.Time{})

	got, err := newTestTagger().AddTag(context.Background(), Hourly, path)
	require.NoError(t, err)

	assert.Equal(t, "Hourly-test.txt", filepath.Base(got))
	assert.FileExists(t, got)
	assert.NoFileExists(t, path)
}

func TestAddTag_Idempotent(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "test.txt", time.Time{})
	tg := newTestTagger()

	first, err := tg.AddTag(context.Background(), Daily, path)
	require.NoError(t, err)
	second, err := tg.AddTag(context.Background(), Daily, first)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.FileExists(t, second)
}

func TestAddTag_BareNameLooksLikePrefix(t *testing.T) {
	for _, name := range []string{"Daily-", "weekly-Daily-"} {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := touch(t, dir, name, time.Time{})

			got, err := newTestTagger().AddTag(context.Background(), Hourly, path)
			require.ErrorIs(t, err, ErrUnencodable)
			assert.Equal(t, path, got)
			assert.FileExists(t, path)
		})
	}
}

func TestAddTag_RoundTrip(t *testing.T) {
	tiers := Tiers()
	tg := newTestTagger()

	// every subset of tiers, added in reverse order
	for mask := 1; mask < 1<<len(tiers); mask++ {
		var subset []Tag
		for i, tier := range tiers {
			if mask&(1<<i) != 0 {
				subset = append(subset, tier)
			}
		}

		dir := t.TempDir()
		path := touch(t, dir, "backup.tar", time.Time{})
		for i := len(subset) - 1; i >= 0; i-- {
			var err error
			path, err = tg.AddTag(context.Background(), subset[i], path)
			require.NoError(t, err)
		}

		tags, name := Parse(filepath.Base(path))
		assert.Equal(t, subset, tags, "mask %b", mask)
		assert.Equal(t, "backup.tar", name)
		assert.FileExists(t, path)
	}
}

func TestRemoveTag(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "Hourly-test.txt", time.Time{})

	got, err := newTestTagger().RemoveTag(context.Background(), Hourly, path)
	require.NoError(t, err)

	assert.Equal(t, "test.txt", filepath.Base(got))
	assert.FileExists(t, got)
	assert.NoFileExists(t, path)
}

func TestRemoveTag_KeepsOtherTags(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "Hourly-Daily-Weekly-test.txt", time.Time{})

	got, err := newTestTagger().RemoveTag(context.Background(), Daily, path)
	require.NoError(t, err)
	assert.Equal(t, "Hourly-Weekly-test.txt", filepath.Base(got))
}

func TestRemoveTag_AbsentIsNoop(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "Daily-test.txt", time.Time{})

	got, err := newTestTagger().RemoveTag(context.Background(), Hourly, path)
	require.NoError(t, err)
	assert.Equal(t, path, got)
	assert.FileExists(t, path)
}

func TestRemoveTag_RefusesToOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := touch(t, dir, "Hourly-test.txt", time.Time{})
	other := touch(t, dir, "test.txt", time.Time{})

	got, err := newTestTagger().RemoveTag(context.Background(), Hourly, path)
	require.ErrorIs(t, err, ErrTargetExists)
	assert.Equal(t, path, got)
	assert.FileExists(t, path)
	assert.FileExists(t, other)
}

func TestRename_MissingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gone.txt")

	got, err := newTestTagger().AddTag(context.Background(), Hourly, path)
	require.Error(t, err)
	assert.Equal(t, path, got)
}

func TestNoFileName(t *testing.T) {
	tg := newTestTagger()

	got, err := tg.AddTag(context.Background(), Hourly, "/")
	require.ErrorIs(t, err, ErrNoFileName)
	assert.Equal(t, "/", got)

	got, err = tg.RemoveTag(context.Background(), Hourly, "backups/")
	require.ErrorIs(t, err, ErrNoFileName)
	assert.Equal(t, "backups/", got)
}

func TestTag(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m := metrics.NewCollector("test", nil)
	tg := NewTagger(fs.New(), logging.Discard(), WithClock(func() time.Time { return now }), WithMetrics(m))

	tests := []struct {
		name string
		age  time.Duration
		want string
	}{
		{name: "fresh", age: 10 * time.Minute, want: "Hourly-Daily-Weekly-Monthly-Yearly-db.sql"},
		{name: "three days", age: 72 * time.Hour, want: "Weekly-Monthly-Yearly-db.sql"},
		{name: "ancient", age: 500 * 24 * time.Hour, want: "db.sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := touch(t, dir, "db.sql", now.Add(-tt.age))

			got, err := tg.Tag(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, filepath.Base(got))
			assert.FileExists(t, got)
		})
	}
}

func TestTag_MissingFile(t *testing.T) {
	_, err := newTestTagger().Tag(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}
