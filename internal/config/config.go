package config

import "time"

type Config struct {
	Source      SourceConfig      `yaml:"source"      envPrefix:"SOURCE_"`
	Destination DestinationConfig `yaml:"destination" envPrefix:"DESTINATION_"`
	Logging     LoggingConfig     `yaml:"logging"     envPrefix:"LOGGING_"`
	Metrics     MetricsConfig     `yaml:"metrics"     envPrefix:"METRICS_"`
	Journal     JournalConfig     `yaml:"journal"     envPrefix:"JOURNAL_"`
}

// SourceConfig describes the incoming directory new backup files are picked up from.
type SourceConfig struct {
	Path              string      `yaml:"path"              env:"PATH"`
	Pattern           string      `yaml:"pattern"           env:"PATTERN"` // glob matched against the file name
	RemoveAfterIngest bool        `yaml:"removeAfterIngest" env:"REMOVE_AFTER_INGEST"`
	Watch             WatchConfig `yaml:"watch"             envPrefix:"WATCH_"`
}

type WatchConfig struct {
	Mode            string        `yaml:"mode"            env:"MODE"`            // "auto", "poll", "fsnotify"
	PollInterval    time.Duration `yaml:"pollInterval"    env:"POLL_INTERVAL"`   // e.g. 5s
	DebounceWindow  time.Duration `yaml:"debounceWindow"  env:"DEBOUNCE_WINDOW"` // e.g. 500ms
	StabilityWindow time.Duration `yaml:"stabilityWindow" env:"STABILITY_WINDOW"`
}

type DestinationConfig struct {
	Root      string          `yaml:"root"      env:"ROOT"`
	Retention RetentionConfig `yaml:"retention" envPrefix:"RETENTION_"`
}

type RetentionConfig struct {
	AutoPrune      AutoPruneConfig `yaml:"autoPrune"      envPrefix:"AUTO_PRUNE_"`
	Schedule       string          `yaml:"schedule"       env:"SCHEDULE"` // cron expression, empty disables periodic sweeps
	RemoveUntagged bool            `yaml:"removeUntagged" env:"REMOVE_UNTAGGED"`
}

// AutoPruneConfig holds how many tagged copies to retain per tier.
// Counts, not durations: the window of a tier is count times the tier length.
type AutoPruneConfig struct {
	Hours      int `yaml:"hours"      env:"HOURS"`
	Days       int `yaml:"days"       env:"DAYS"`
	Weeks      int `yaml:"weeks"      env:"WEEKS"`
	Months     int `yaml:"months"     env:"MONTHS"`
	Years      int `yaml:"years"      env:"YEARS"`
	KeepLatest int `yaml:"keepLatest" env:"KEEP_LATEST"`
}

type LoggingConfig struct {
	Level    string         `yaml:"level"    env:"LEVEL"`  // "debug", "info", "warn", "error"
	Format   string         `yaml:"format"   env:"FORMAT"` // "json", "text"
	File     string         `yaml:"file"     env:"FILE"`
	Rotation RotationConfig `yaml:"rotation" envPrefix:"ROTATION_"`
}

type RotationConfig struct {
	MaxSize    int  `yaml:"maxSize"    env:"MAX_SIZE"` // megabytes
	MaxBackups int  `yaml:"maxBackups" env:"MAX_BACKUPS"`
	MaxAge     int  `yaml:"maxAge"     env:"MAX_AGE"` // days
	Compress   bool `yaml:"compress"   env:"COMPRESS"`
}

type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"   env:"ENABLED"`
	Listen    string `yaml:"listen"    env:"LISTEN"`
	Namespace string `yaml:"namespace" env:"NAMESPACE"`
}

type JournalConfig struct {
	Path string `yaml:"path" env:"PATH"` // sqlite file, empty disables the journal
}
