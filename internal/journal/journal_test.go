package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raoulx24/backup-retention/internal/retention"
	"github.com/raoulx24/backup-retention/internal/tag"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenSQLite_RequiresPath(t *testing.T) {
	_, err := OpenSQLite("")
	assert.Error(t, err)
}

func TestFromReport(t *testing.T) {
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	rep := retention.Report{
		Dir:      "/backups",
		Started:  started,
		Finished: started.Add(time.Second),
		SweepResult: retention.SweepResult{
			Demoted: []retention.Change{{From: "/backups/Daily-a", To: "/backups/a", Tag: tag.Daily}},
			Failed:  []retention.Failure{{Path: "/backups/b", Op: "remove", Err: errors.New("busy")}},
		},
		Removed: []string{"/backups/a"},
	}

	run, events := FromReport("manual", rep)
	require.NotEmpty(t, run.ID)
	assert.Equal(t, "/backups", run.Directory)
	assert.Equal(t, "manual", run.Trigger)
	assert.Equal(t, 1, run.Demoted)
	assert.Equal(t, 1, run.Removed)
	assert.Equal(t, 1, run.Failed)

	require.Len(t, events, 3)
	assert.Equal(t, Event{RunID: run.ID, Action: ActionDemote, Tag: "Daily", Path: "/backups/Daily-a", NewPath: "/backups/a"}, events[0])
	assert.Equal(t, ActionRemove, events[1].Action)
	assert.Equal(t, ActionFailure, events[2].Action)
	assert.Contains(t, events[2].Error, "busy")
}

func TestSQLiteStore_RecordAndList(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	for i := range 3 {
		run := &Run{
			Directory: "/backups",
			Trigger:   "schedule",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Removed:   i,
		}
		events := []Event{{Action: ActionRemove, Path: "/backups/x"}}
		require.NoError(t, s.Record(ctx, run, events))
		require.NotEmpty(t, run.ID)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, 2, runs[0].Removed)
	assert.Equal(t, 0, runs[2].Removed)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	events, err := s.Events(ctx, runs[0].ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, runs[0].ID, events[0].RunID)
	assert.Equal(t, "/backups/x", events[0].Path)
}

func TestSQLiteStore_EventsUnknownRun(t *testing.T) {
	s := openTemp(t)
	_, err := s.Events(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestSQLiteStore_RecordNoEvents(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	run, events := FromReport("ingest", retention.Report{Dir: "/d", Started: time.Now(), Finished: time.Now()})
	require.NoError(t, s.Record(ctx, run, events))

	got, err := s.Events(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}
