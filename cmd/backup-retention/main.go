package main

import (
	"fmt"
	"os"

	"github.com/raoulx24/backup-retention/cmd/backup-retention/cli"
)

var (
	version = "0.0.1-dev"
	commit  = "main"
)

func main() {
	info := cli.VersionInfo{Version: version, Commit: commit}
	opts := &cli.Options{}

	root := cli.NewRootCommand(info, opts)

	root.AddCommand(cli.NewVersionCommand(info))
	root.AddCommand(cli.NewRunCommand(opts))
	root.AddCommand(cli.NewPruneCommand(opts))
	root.AddCommand(cli.NewTagCommand(opts))
	root.AddCommand(cli.NewListCommand(opts))
	root.AddCommand(cli.NewHistoryCommand(opts))
	root.AddCommand(cli.NewConfigCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
