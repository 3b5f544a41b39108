package worker

import (
	"context"

	"github.com/raoulx24/backup-retention/internal/journal"
	"github.com/raoulx24/backup-retention/internal/retention"
)

// Sweep runs AutoRemove over the destination, removes untagged files when
// configured and records the run in the journal.
func (w *Worker) Sweep(ctx context.Context, trigger string) (retention.Report, error) {
	dest, _ := w.config()
	w.log.Debug("sweeping destination", "root", dest.Root, "trigger", trigger)

	if err := w.fs.MkdirAll(dest.Root); err != nil {
		return retention.Report{Dir: dest.Root}, err
	}

	rep, err := w.prune.Apply(ctx, dest.Root, dest.Retention.RemoveUntagged)
	if w.journal != nil && !rep.Started.IsZero() {
		run, events := journal.FromReport(trigger, rep)
		// Recording outlives a cancelled sweep.
		if jerr := w.journal.Record(context.WithoutCancel(ctx), run, events); jerr != nil {
			w.log.Error("recording sweep in journal", "error", jerr)
		}
	}

	return rep, err
}
