package journal

import "time"

// Run is one retention sweep over one directory.
type Run struct {
	ID         string    `gorm:"type:text;primaryKey"`
	Directory  string    `gorm:"type:text;not null;index"`
	Trigger    string    `gorm:"type:text;not null"` // "schedule", "ingest", "manual", "startup"
	StartedAt  time.Time `gorm:"index"`
	FinishedAt time.Time
	Demoted    int `gorm:"default:0"`
	Removed    int `gorm:"default:0"`
	Failed     int `gorm:"default:0"`

	Events []Event `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// Event is one file-level action taken during a run.
type Event struct {
	ID      uint   `gorm:"primaryKey"`
	RunID   string `gorm:"type:text;not null;index"`
	Action  string `gorm:"type:text;not null"` // ActionDemote, ActionRemove, ActionFailure
	Tag     string `gorm:"type:text"`
	Path    string `gorm:"type:text;not null"`
	NewPath string `gorm:"type:text"`
	Error   string `gorm:"type:text"`

	CreatedAt time.Time
}

const (
	ActionDemote  = "demote"
	ActionRemove  = "remove"
	ActionFailure = "failure"
)
