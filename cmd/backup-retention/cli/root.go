// Package cli holds the cobra commands of backup-retention.
package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/raoulx24/backup-retention/internal/config"
	"github.com/raoulx24/backup-retention/internal/logging"
)

type VersionInfo struct {
	Version string
	Commit  string
}

// Options carries the persistent flags to every command.
type Options struct {
	ConfigPath string
	LogLevel   string

	// configSet is true when --config was given explicitly; only then is a
	// missing file an error.
	configSet bool
}

func NewRootCommand(info VersionInfo, opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup-retention",
		Short: "Tag-based retention for backup files",
		Long: `backup-retention keeps a directory of backups within an hourly, daily,
weekly, monthly and yearly retention policy. Tiers are encoded in the file
names, so the directory itself is the only state.`,
		SilenceErrors: true,
		SilenceUsage:  true,

		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			opts.configSet = cmd.Flags().Changed("config")
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "config file")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level override (debug, info, warn, error)")

	cmd.Version = fmt.Sprintf("%s.%s", info.Version, info.Commit)

	return cmd
}

// Load reads the configuration and applies flag overrides.
func (o *Options) Load() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath, !o.configSet)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.LogLevel != "" {
		cfg.Logging.Level = o.LogLevel
	}
	return cfg, nil
}

func (o *Options) logger(cfg *config.Config) (*slog.Logger, io.Closer, error) {
	log, closer, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return log, closer, nil
}
