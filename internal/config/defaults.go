package config

import "time"

func DefaultAutoPrune() AutoPruneConfig {
	return AutoPruneConfig{
		Hours:      0,
		Days:       14,
		Weeks:      0,
		Months:     0,
		Years:      0,
		KeepLatest: 5,
	}
}

// Default returns the configuration used for every key the config file omits.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			Path:    "incoming",
			Pattern: "*",
			Watch: WatchConfig{
				Mode:            "auto",
				PollInterval:    5 * time.Second,
				DebounceWindow:  500 * time.Millisecond,
				StabilityWindow: 2 * time.Second,
			},
		},
		Destination: DestinationConfig{
			Root: "backups",
			Retention: RetentionConfig{
				AutoPrune:      DefaultAutoPrune(),
				Schedule:       "0 * * * *",
				RemoveUntagged: true,
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Rotation: RotationConfig{
				MaxSize:    128,
				MaxBackups: 5,
				MaxAge:     16,
			},
		},
		Metrics: MetricsConfig{
			Listen:    ":9108",
			Namespace: "backup_retention",
		},
	}
}
