package tag

import (
	"testing"
	"time"

	"github.com/raoulx24/backup-retention/internal/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration(t *testing.T) {
	tests := []struct {
		tag  Tag
		want time.Duration
	}{
		{None, 0},
		{Hourly, time.Hour},
		{Daily, 24 * time.Hour},
		{Weekly, 7 * 24 * time.Hour},
		{Monthly, 30 * 24 * time.Hour},
		{Yearly, 365 * 24 * time.Hour},
	}
	for _, tt := range tests {
		t.Run(tt.tag.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tag.Duration())
		})
	}
}

func TestOrdering(t *testing.T) {
	all := All()
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1], all[i])
	}
	assert.Equal(t, all[1:], Tiers())
}

func TestApplicableTags(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	tests := []struct {
		name string
		age  time.Duration
		want []Tag
	}{
		{name: "5 minutes", age: 5 * time.Minute, want: []Tag{Hourly, Daily, Weekly, Monthly, Yearly}},
		{name: "2 hours", age: 2 * time.Hour, want: []Tag{Daily, Weekly, Monthly, Yearly}},
		{name: "2 days", age: 2 * day, want: []Tag{Weekly, Monthly, Yearly}},
		{name: "2 weeks", age: 14 * day, want: []Tag{Monthly, Yearly}},
		{name: "60 days", age: 60 * day, want: []Tag{Yearly}},
		{name: "400 days", age: 400 * day, want: []Tag{}},
		{name: "exactly one hour", age: time.Hour, want: []Tag{Daily, Weekly, Monthly, Yearly}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta := fs.Metadata{MTime: now.Add(-tt.age)}
			assert.Equal(t, tt.want, ApplicableTags(meta, now))
		})
	}
}

func TestApplicable_NoneNeverApplies(t *testing.T) {
	now := time.Now()
	assert.False(t, None.Applicable(fs.Metadata{MTime: now}, now))
	assert.False(t, None.Applicable(fs.Metadata{MTime: now.Add(time.Hour)}, now))
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		wantTags []Tag
		wantName string
	}{
		{name: "test.txt", wantTags: []Tag{None}, wantName: "test.txt"},
		{name: "Hourly-test.txt", wantTags: []Tag{Hourly}, wantName: "test.txt"},
		{name: "Hourly-Daily-Weekly-file.txt", wantTags: []Tag{Hourly, Daily, Weekly}, wantName: "file.txt"},
		{name: "daily-MONTHLY-db.tar.gz", wantTags: []Tag{Daily, Monthly}, wantName: "db.tar.gz"},
		{name: "Yearly-2024-01-01.sql", wantTags: []Tag{Yearly}, wantName: "2024-01-01.sql"},
		{name: "Hourlyish-test.txt", wantTags: []Tag{None}, wantName: "Hourlyish-test.txt"},
		{name: "None-test.txt", wantTags: []Tag{None}, wantName: "None-test.txt"},
		{name: "report-Daily-x.txt", wantTags: []Tag{None}, wantName: "report-Daily-x.txt"},
		{name: "Daily-", wantTags: []Tag{None}, wantName: "Daily-"},
		{name: "", wantTags: []Tag{None}, wantName: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tags, name := Parse(tt.name)
			assert.Equal(t, tt.wantTags, tags)
			assert.Equal(t, tt.wantName, name)
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		tags []Tag
		want string
	}{
		{name: "no tags", tags: nil, want: "f.txt"},
		{name: "only none", tags: []Tag{None}, want: "f.txt"},
		{name: "sorted", tags: []Tag{Weekly, Hourly, Daily}, want: "Hourly-Daily-Weekly-f.txt"},
		{name: "none dropped", tags: []Tag{None, Yearly}, want: "Yearly-f.txt"},
		{name: "duplicates", tags: []Tag{Daily, Daily, Hourly}, want: "Hourly-Daily-f.txt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.tags, "f.txt"))
		})
	}
}

func TestParseTag(t *testing.T) {
	for _, want := range All() {
		got, err := ParseTag(want.String())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	got, err := ParseTag("weekly")
	require.NoError(t, err)
	assert.Equal(t, Weekly, got)

	_, err = ParseTag("fortnightly")
	assert.Error(t, err)
}

func TestIsUntagged(t *testing.T) {
	assert.True(t, IsUntagged([]Tag{None}))
	assert.False(t, IsUntagged([]Tag{}))
	assert.False(t, IsUntagged([]Tag{Hourly}))
	assert.False(t, IsUntagged([]Tag{None, Hourly}))
}
