package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/journal"
	"github.com/raoulx24/backup-retention/internal/retention"
	"github.com/raoulx24/backup-retention/internal/worker"
)

func NewPruneCommand(opts *Options) *cobra.Command {
	var (
		policy       config.AutoPruneConfig
		keepUntagged bool
	)

	cmd := &cobra.Command{
		Use:   "prune [dir]",
		Short: "Sweep a backup directory once and delete untagged files",
		Long: `Sweep the destination directory (or dir) once: strip tiers from backups
that fall outside the policy and delete the files left without any tier.
Policy flags override the configuration.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			log, closer, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer closer.Close()

			dest := cfg.Destination
			if len(args) == 1 {
				dest.Root = args[0]
			}
			dest.Retention.AutoPrune = overridePolicy(cmd, dest.Retention.AutoPrune, policy)
			dest.Retention.RemoveUntagged = !keepUntagged
			if err := dest.Retention.AutoPrune.Validate(); err != nil {
				return err
			}

			fsys := fs.New()
			prune := retention.New(dest.Retention.AutoPrune, fsys, log)
			workerOpts := []worker.Option{worker.WithFS(fsys)}
			if cfg.Journal.Path != "" {
				store, err := journal.OpenSQLite(cfg.Journal.Path)
				if err != nil {
					return err
				}
				defer store.Close()
				workerOpts = append(workerOpts, worker.WithJournal(store))
			}

			w := worker.New(dest, prune, nil, nil, log, workerOpts...)
			rep, err := w.Sweep(cmd.Context(), worker.TriggerManual)

			out := cmd.OutOrStdout()
			for _, c := range rep.Demoted {
				fmt.Fprintf(out, "demoted  %s -> %s (%s)\n", filepath.Base(c.From), filepath.Base(c.To), c.Tag)
			}
			for _, p := range rep.Removed {
				fmt.Fprintf(out, "removed  %s\n", filepath.Base(p))
			}
			for _, f := range rep.Failed {
				fmt.Fprintf(out, "failed   %v\n", f)
			}
			fmt.Fprintf(out, "%d kept, %d demoted, %d removed, %d failed\n",
				len(rep.Kept), len(rep.Demoted), len(rep.Removed), len(rep.Failed))
			return err
		},
	}

	cmd.Flags().IntVar(&policy.Hours, "hours", 0, "hourly backups to keep")
	cmd.Flags().IntVar(&policy.Days, "days", 0, "daily backups to keep")
	cmd.Flags().IntVar(&policy.Weeks, "weeks", 0, "weekly backups to keep")
	cmd.Flags().IntVar(&policy.Months, "months", 0, "monthly backups to keep")
	cmd.Flags().IntVar(&policy.Years, "years", 0, "yearly backups to keep")
	cmd.Flags().IntVar(&policy.KeepLatest, "keep-latest", 0, "minimum number of backups new files are admitted against")
	cmd.Flags().BoolVar(&keepUntagged, "keep-untagged", false, "do not delete files left without tags")

	return cmd
}

// overridePolicy replaces the counts whose flags were set on the command line.
func overridePolicy(cmd *cobra.Command, base, flags config.AutoPruneConfig) config.AutoPruneConfig {
	set := func(name string, dst *int, v int) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("hours", &base.Hours, flags.Hours)
	set("days", &base.Days, flags.Days)
	set("weeks", &base.Weeks, flags.Weeks)
	set("months", &base.Months, flags.Months)
	set("years", &base.Years, flags.Years)
	set("keep-latest", &base.KeepLatest, flags.KeepLatest)
	return base
}
