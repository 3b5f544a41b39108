package fs

import (
	"context"
	"errors"
	"io"
	"os"
)

// implements file copying with retry and source-change detection.
// A copy is aborted if the source file changes mid-copy.

var ErrSourceChanged = errors.New("source changed during copy")

func copyWithRetry(ctx context.Context, f FS, src, dst string) error {
	orig, err := f.Stat(src)
	if err != nil {
		return err
	}

	return retry(ctx, "copy", func() error {
		now, err := f.Stat(src)
		if err != nil {
			return err
		}

		if sourceChanged(orig, now) {
			return ErrSourceChanged
		}

		return copyOnce(src, dst)
	})
}

func sourceChanged(orig, now Metadata) bool {
	if now.Inode != 0 && orig.Inode != 0 && now.Inode != orig.Inode {
		return true
	}
	if now.MTime.After(orig.MTime) {
		return true
	}
	return now.Size != orig.Size
}

// copyOnce writes src to dst with the source's permission bits. A failed
// copy leaves no partial dst behind.
func copyOnce(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	st, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, st.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(dst)
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}

	return out.Sync()
}
