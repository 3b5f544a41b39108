// Package fs defines the filesystem abstraction used by backup-retention.
// It provides the FS interface and the Metadata snapshot shared across the system,
// so the retention engine never calls the os package directly.
package fs

import (
	"context"
	"time"
)

type FS interface {
	Stat(path string) (Metadata, error)
	List(dir string) ([]string, error)
	CopyFile(ctx context.Context, src, dst string) error
	Rename(ctx context.Context, oldPath, newPath string) error
	Remove(ctx context.Context, path string) error
	Chtimes(path string, mtime time.Time) error
	MkdirAll(path string) error
	RemoveAll(path string) error
}
