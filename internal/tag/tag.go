// Package tag implements the retention tiers and their encoding as a
// file name prefix.
//
// A backup file carries zero or more tiers in front of its original name,
// always in declaration order and joined with '-':
//
//	Hourly-Daily-Weekly-db.tar.gz
//
// The file name is the only record of tier membership. A name without a
// recognised prefix is untagged and parses as [None].
package tag

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/raoulx24/backup-retention/internal/fs"
)

type Tag int

const (
	None Tag = iota
	Hourly
	Daily
	Weekly
	Monthly
	Yearly
)

const day = 24 * time.Hour

var names = [...]string{
	None:    "None",
	Hourly:  "Hourly",
	Daily:   "Daily",
	Weekly:  "Weekly",
	Monthly: "Monthly",
	Yearly:  "Yearly",
}

var durations = [...]time.Duration{
	None:    0,
	Hourly:  time.Hour,
	Daily:   day,
	Weekly:  7 * day,
	Monthly: 30 * day,
	Yearly:  365 * day,
}

// All returns every variant in declaration order, None included.
func All() []Tag {
	return []Tag{None, Hourly, Daily, Weekly, Monthly, Yearly}
}

// Tiers returns the real retention tiers in declaration order.
func Tiers() []Tag {
	return []Tag{Hourly, Daily, Weekly, Monthly, Yearly}
}

func (t Tag) valid() bool {
	return t >= None && t <= Yearly
}

func (t Tag) String() string {
	if !t.valid() {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return names[t]
}

// Duration is the look-back window of the tier. None has none.
func (t Tag) Duration() time.Duration {
	if !t.valid() {
		return 0
	}
	return durations[t]
}

// Applicable reports whether a file with the given metadata is young enough
// for the tier at time now.
func (t Tag) Applicable(meta fs.Metadata, now time.Time) bool {
	if t == None {
		return false
	}
	return meta.Age(now) < t.Duration()
}

// ApplicableTags returns the tiers a file qualifies for at time now,
// in declaration order. The result never contains None; it is empty
// when the file is older than every tier.
func ApplicableTags(meta fs.Metadata, now time.Time) []Tag {
	tags := []Tag{}
	for _, t := range Tiers() {
		if t.Applicable(meta, now) {
			tags = append(tags, t)
		}
	}
	return tags
}

// ParseTag looks up a variant by name, ignoring case.
func ParseTag(s string) (Tag, error) {
	for _, t := range All() {
		if strings.EqualFold(s, t.String()) {
			return t, nil
		}
	}
	return None, fmt.Errorf("unknown tag %q", s)
}

// prefixPattern matches one or more leading "<tier>-" groups. Compiled once.
var prefixPattern = func() *regexp.Regexp {
	alts := make([]string, 0, len(Tiers()))
	for _, t := range Tiers() {
		alts = append(alts, regexp.QuoteMeta(t.String()))
	}
	return regexp.MustCompile(`(?i)^(?:(?:` + strings.Join(alts, "|") + `)-)+`)
}()

// Parse splits a file name into its tag prefix and the bare name.
// Tags are returned in the order found. A name without a prefix, or one that
// would be left empty once the prefix is removed, yields ([None], name).
func Parse(name string) ([]Tag, string) {
	loc := prefixPattern.FindStringIndex(name)
	if loc == nil || loc[1] == len(name) {
		return []Tag{None}, name
	}

	prefix := name[:loc[1]-1]
	parts := strings.Split(prefix, "-")
	tags := make([]Tag, 0, len(parts))
	for _, p := range parts {
		t, err := ParseTag(p)
		if err != nil {
			// unreachable: the pattern only admits tier names
			continue
		}
		tags = append(tags, t)
	}
	return tags, name[loc[1]:]
}

// Normalize drops None, removes duplicates and sorts by declaration order.
func Normalize(tags []Tag) []Tag {
	out := make([]Tag, 0, len(tags))
	for _, t := range tags {
		if t == None || !t.valid() || slices.Contains(out, t) {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return out
}

// Format encodes tags in front of name. The tag set is normalized first,
// so the prefix is always in declaration order.
func Format(tags []Tag, name string) string {
	set := Normalize(tags)
	if len(set) == 0 {
		return name
	}

	var b strings.Builder
	for _, t := range set {
		b.WriteString(t.String())
		b.WriteByte('-')
	}
	b.WriteString(name)
	return b.String()
}

// IsUntagged reports whether a parsed tag set means "no retention tier".
func IsUntagged(tags []Tag) bool {
	return len(tags) == 1 && tags[0] == None
}

// Has reports whether the tag set contains t.
func Has(tags []Tag, t Tag) bool {
	return slices.Contains(tags, t)
}
