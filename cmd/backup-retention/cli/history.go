package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/journal"
)

func NewHistoryCommand(opts *Options) *cobra.Command {
	var (
		limit int
		runID string
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent sweeps recorded in the journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			if cfg.Journal.Path == "" {
				return errors.New("journal is disabled (set journal.path)")
			}

			store, err := journal.OpenSQLite(cfg.Journal.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			defer tw.Flush()

			if runID != "" {
				events, err := store.Events(cmd.Context(), runID)
				if err != nil {
					return err
				}
				fmt.Fprintln(tw, "ACTION\tTAG\tPATH\tNEW PATH\tERROR")
				for _, e := range events {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.Action, e.Tag, e.Path, e.NewPath, e.Error)
				}
				return nil
			}

			runs, err := store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			fmt.Fprintln(tw, "ID\tSTARTED\tTRIGGER\tDIR\tDEMOTED\tREMOVED\tFAILED\tTOOK")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
					r.ID, humanize.Time(r.StartedAt), r.Trigger, r.Directory,
					r.Demoted, r.Removed, r.Failed, r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of runs to show, 0 for all")
	cmd.Flags().StringVar(&runID, "run", "", "show the events of one run")

	return cmd
}
