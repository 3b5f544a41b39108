package retention

import (
	"fmt"
	"time"

	"github.com/raoulx24/backup-retention/internal/tag"
)

// Change is one tag stripped from one file.
type Change struct {
	From string
	To   string
	Tag  tag.Tag
}

// Failure is a per-file operation that did not complete.
type Failure struct {
	Path string
	Op   string
	Err  error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Path, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// SweepResult summarises one AutoRemove call.
type SweepResult struct {
	Files   []string // current path of every file still present, deduplicated
	Demoted []Change
	Failed  []Failure
}

// Report summarises Apply: the sweep plus the removal of untagged files.
type Report struct {
	SweepResult
	Dir      string
	Started  time.Time
	Finished time.Time
	Removed  []string
	Kept     []string
}
