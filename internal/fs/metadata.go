package fs

import (
	"os"
	"time"
)

// Metadata is a point-in-time snapshot of a path's attributes.
// It is built on demand and never cached between decisions.
type Metadata struct {
	Path   string
	Size   int64
	MTime  time.Time
	IsDir  bool
	IsFile bool
	Inode  uint64
}

// FromFileInfo constructs Metadata from a path and os.FileInfo.
func FromFileInfo(path string, info os.FileInfo) Metadata {
	return Metadata{
		Path:   path,
		Size:   info.Size(),
		MTime:  info.ModTime().UTC(),
		IsDir:  info.IsDir(),
		IsFile: info.Mode().IsRegular(),
		Inode:  inodeOf(info),
	}
}

// Age returns how long ago the path was last modified, relative to now.
func (m Metadata) Age(now time.Time) time.Duration {
	return now.Sub(m.MTime)
}
