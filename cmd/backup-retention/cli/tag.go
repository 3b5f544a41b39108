package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/tag"
)

func NewTagCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "tag <file>...",
		Short: "Give files every retention tier their age qualifies for",
		Args:  cobra.MinimumNArgs(1),
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

			tagger := tag.NewTagger(fs.New(), log)
			var errs []error
			for _, path := range args {
				got, err := tagger.Tag(cmd.Context(), path)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), got)
			}
			return errors.Join(errs...)
		},
	}
}
