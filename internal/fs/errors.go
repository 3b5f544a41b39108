package fs

import (
	"errors"
	"syscall"
)

// isTransient reports whether a filesystem error is worth retrying.
// Network mounts used as backup destinations surface these under load.
func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
