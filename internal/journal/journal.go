// Package journal keeps a SQLite history of retention sweeps and the
// renames and deletions each one made.
package journal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/raoulx24/backup-retention/internal/retention"
)

// ErrRunNotFound is returned by Events for an unknown run id.
var ErrRunNotFound = errors.New("journal: run not found")

// Store persists sweep runs.
type Store interface {
	Record(ctx context.Context, run *Run, events []Event) error
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	Events(ctx context.Context, runID string) ([]Event, error)
	Close() error
}

var _ Store = (*SQLiteStore)(nil)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db   *gorm.DB
	path string
}

// OpenSQLite opens (creating if needed) the journal at path and migrates it.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("journal path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating journal dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1) // single writer
	sqlDB.SetMaxIdleConns(1)

	if err := db.AutoMigrate(&Run{}, &Event{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrating journal: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}

// Record stores the run and its events in one transaction.
func (s *SQLiteStore) Record(ctx context.Context, run *Run, events []Event) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Events").Create(run).Error; err != nil {
			return fmt.Errorf("recording run: %w", err)
		}
		if len(events) == 0 {
			return nil
		}
		for i := range events {
			events[i].RunID = run.ID
		}
		if err := tx.Create(&events).Error; err != nil {
			return fmt.Errorf("recording events: %w", err)
		}
		return nil
	})
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	var runs []Run
	q := s.db.WithContext(ctx).Order("started_at DESC").Order("id")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// Events returns the events of one run in the order they were recorded.
func (s *SQLiteStore) Events(ctx context.Context, runID string) ([]Event, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Run{}).Where("id = ?", runID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}

	var events []Event
	err := s.db.WithContext(ctx).Where("run_id = ?", runID).Order("id").Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.Close()
}

// FromReport converts a finished sweep into a run and its events.
func FromReport(trigger string, rep retention.Report) (*Run, []Event) {
	run := &Run{
		ID:         uuid.NewString(),
		Directory:  rep.Dir,
		Trigger:    trigger,
		StartedAt:  rep.Started.UTC(),
		FinishedAt: rep.Finished.UTC(),
		Demoted:    len(rep.Demoted),
		Removed:    len(rep.Removed),
		Failed:     len(rep.Failed),
	}

	events := make([]Event, 0, len(rep.Demoted)+len(rep.Removed)+len(rep.Failed))
	for _, c := range rep.Demoted {
		events = append(events, Event{
			RunID:   run.ID,
			Action:  ActionDemote,
			Tag:     c.Tag.String(),
			Path:    c.From,
			NewPath: c.To,
		})
	}
	for _, p := range rep.Removed {
		events = append(events, Event{RunID: run.ID, Action: ActionRemove, Path: p})
	}
	for _, f := range rep.Failed {
		events = append(events, Event{
			RunID:  run.ID,
			Action: ActionFailure,
			Path:   f.Path,
			Error:  f.Error(),
		})
	}
	return run, events
}
