// Package rules combines admission rules into one "would this new file
// survive" decision.
package rules

import (
	"context"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/raoulx24/backup-retention/internal/logging"
	"github.com/raoulx24/backup-retention/internal/retention"
)

// Rule decides whether a prospective backup is worth writing.
type Rule interface {
	Name() string
	WouldKeep(ctx context.Context, existing []string, newPath string, meta fs.Metadata) bool
}

var _ Rule = (*retention.AutoPrune)(nil)

// Rules ANDs its configured rules. Nil rules are skipped; with no rules
// every file is kept.
type Rules struct {
	AutoPrune *retention.AutoPrune
	Extra     []Rule

	log logging.Logger
}

func New(autoPrune *retention.AutoPrune, log logging.Logger, extra ...Rule) *Rules {
	return &Rules{
		AutoPrune: autoPrune,
		Extra:     extra,
		log:       logging.With(log, "rules"),
	}
}

func (r *Rules) active() []Rule {
	var out []Rule
	if r.AutoPrune != nil {
		out = append(out, r.AutoPrune)
	}
	for _, rule := range r.Extra {
		if rule != nil {
			out = append(out, rule)
		}
	}
	return out
}

// WouldKeep returns false as soon as one rule rejects the file.
func (r *Rules) WouldKeep(ctx context.Context, existing []string, newPath string, meta fs.Metadata) bool {
	for _, rule := range r.active() {
		if !rule.WouldKeep(ctx, existing, newPath, meta) {
			r.logger().Debug("rule rejected new file", "rule", rule.Name(), "path", newPath)
			return false
		}
	}
	return true
}

func (r *Rules) logger() logging.Logger {
	if r.log == nil {
		return logging.Discard()
	}
	return r.log
}
