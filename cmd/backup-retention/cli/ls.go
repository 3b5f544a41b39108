package cli

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/retention"
	"github.com/raoulx24/backup-retention/internal/tag"
)

func NewListCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:     "ls [dir]",
		Aliases: []string{"list"},
		Short:   "List backups with their tiers, size and age",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.Load()
			if err != nil {
				return err
			}
			dir := cfg.Destination.Root
			if len(args) == 1 {
				dir = args[0]
			}

			fsys := fs.New()
			files, err := retention.ListBackups(fsys, dir)
			if err != nil {
				return fmt.Errorf("listing %s: %w", dir, err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTAGS\tSIZE\tMODIFIED")
			for _, path := range files {
				meta, err := fsys.Stat(path)
				if err != nil {
					fmt.Fprintf(tw, "%s\t?\t?\t%v\n", filepath.Base(path), err)
					continue
				}
				tags, name := tag.Parse(filepath.Base(path))
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					name, formatTags(tags), humanize.Bytes(uint64(meta.Size)), humanize.Time(meta.MTime))
			}
			return tw.Flush()
		},
	}
}

func formatTags(tags []tag.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tag.Normalize(tags) {
		names = append(names, t.String())
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ",")
}
