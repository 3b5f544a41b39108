package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry(t *testing.T) {
	retryBase = time.Millisecond
	t.Cleanup(func() { retryBase = 100 * time.Millisecond })

	t.Run("transient then success", func(t *testing.T) {
		calls := 0
		err := retry(context.Background(), "op", func() error {
			calls++
			if calls < 3 {
				return syscall.EBUSY
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error stops immediately", func(t *testing.T) {
		calls := 0
		err := retry(context.Background(), "op", func() error {
			calls++
			return os.ErrPermission
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrPermission)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		err := retry(context.Background(), "op", func() error {
			calls++
			return syscall.EAGAIN
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, syscall.EAGAIN)
		assert.Equal(t, maxRetries, calls)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := retry(ctx, "op", func() error { return nil })
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestOSFS(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	fsys := New()

	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("hello"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	meta, err := fsys.Stat(a)
	require.NoError(t, err)
	assert.Equal(t, int64(5), meta.Size)
	assert.True(t, meta.IsFile)
	assert.False(t, meta.IsDir)

	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fsys.Chtimes(a, mtime))
	meta, err = fsys.Stat(a)
	require.NoError(t, err)
	assert.True(t, meta.MTime.Equal(mtime))
	assert.Equal(t, 48*time.Hour, meta.Age(mtime.Add(48*time.Hour)))

	b := filepath.Join(dir, "b.txt")
	require.NoError(t, fsys.CopyFile(ctx, a, b))
	data, err := os.ReadFile(b)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	files, err := fsys.List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{a, b}, files)

	c := filepath.Join(dir, "c.txt")
	require.NoError(t, fsys.Rename(ctx, b, c))
	assert.NoFileExists(t, b)
	assert.FileExists(t, c)

	require.NoError(t, fsys.Remove(ctx, c))
	assert.NoFileExists(t, c)

	err = fsys.Remove(ctx, c)
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestSourceChanged(t *testing.T) {
	base := Metadata{Size: 10, MTime: time.Unix(100, 0), Inode: 7}

	tests := []struct {
		name string
		now  Metadata
		want bool
	}{
		{name: "unchanged", now: base, want: false},
		{name: "size", now: Metadata{Size: 11, MTime: base.MTime, Inode: 7}, want: true},
		{name: "mtime", now: Metadata{Size: 10, MTime: time.Unix(101, 0), Inode: 7}, want: true},
		{name: "inode", now: Metadata{Size: 10, MTime: base.MTime, Inode: 8}, want: true},
		{name: "unknown inode", now: Metadata{Size: 10, MTime: base.MTime}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sourceChanged(base, tt.now))
		})
	}
}

func TestCopyFile_KeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	require.NoError(t, os.WriteFile(src, []byte("secret"), 0o600))
	require.NoError(t, os.Chmod(src, 0o600))

	dst := filepath.Join(dir, "dst")
	require.NoError(t, New().CopyFile(context.Background(), src, dst))

	st, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")
	assert.Error(t, New().CopyFile(context.Background(), filepath.Join(dir, "nope"), dst))
	assert.NoFileExists(t, dst)
}
