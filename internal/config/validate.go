package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/robfig/cron/v3"
)

// InvalidError is returned when a config field holds an unusable value.
type InvalidError struct {
	Field  string
	Reason string
	Value  any
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid config: %s %s (got: %v)", e.Field, e.Reason, e.Value)
}

func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.Destination.Retention.AutoPrune.Validate())

	if s := c.Destination.Retention.Schedule; s != "" {
		if _, err := cron.ParseStandard(s); err != nil {
			errs = append(errs, &InvalidError{"destination.retention.schedule", "is not a cron expression", s})
		}
	}

	switch c.Source.Watch.Mode {
	case "auto", "poll", "fsnotify":
	default:
		errs = append(errs, &InvalidError{"source.watch.mode", "must be auto, poll or fsnotify", c.Source.Watch.Mode})
	}

	if c.Source.Watch.PollInterval <= 0 {
		errs = append(errs, &InvalidError{"source.watch.pollInterval", "must be positive", c.Source.Watch.PollInterval})
	}

	if _, err := filepath.Match(c.Source.Pattern, "probe"); err != nil {
		errs = append(errs, &InvalidError{"source.pattern", "is not a glob", c.Source.Pattern})
	}

	return errors.Join(errs...)
}

func (a AutoPruneConfig) Validate() error {
	counts := []struct {
		field string
		value int
	}{
		{"hours", a.Hours},
		{"days", a.Days},
		{"weeks", a.Weeks},
		{"months", a.Months},
		{"years", a.Years},
		{"keepLatest", a.KeepLatest},
	}

	var errs []error
	for _, c := range counts {
		if c.value < 0 {
			errs = append(errs, &InvalidError{"destination.retention.autoPrune." + c.field, "must be non-negative", c.value})
		}
	}
	return errors.Join(errs...)
}
