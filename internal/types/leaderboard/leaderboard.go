package leaderboard

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one participant's standing as seen by a specific viewer.
// TotalSteps is confirmed+pending for the viewer's own row and confirmed-only
// for everyone else; pending magnitudes of other participants are never
// exposed.
type Entry struct {
	UserID         uuid.UUID `json:"user_id"`
	Username       string    `json:"username"`
	ImageURL       *string   `json:"image_url"`
	Rank           int       `json:"rank"`
	TotalSteps     int       `json:"total_steps"`
	ConfirmedSteps int       `json:"confirmed_steps"`
	PendingSteps   *int      `json:"pending_steps,omitempty"`
	Points         int       `json:"points"`
	IsViewer       bool      `json:"is_viewer"`
}

// SnapshotEntry is a participant's settled step count for the last finalized
// date, visible to every viewer.
type SnapshotEntry struct {
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	StepCount int       `json:"step_count"`
}

type Leaderboard struct {
	ChallengeID       uuid.UUID       `json:"challenge_id"`
	Entries           []*Entry        `json:"entries"`
	EditCutoffDate    time.Time       `json:"edit_cutoff_date"`
	LastFinalizedDate *time.Time      `json:"last_finalized_date,omitempty"`
	LastFinalized     []SnapshotEntry `json:"last_finalized,omitempty"`
}

type DayStatus string

const (
	DayFinalized DayStatus = "finalized"
	DayPending   DayStatus = "pending"
)

// DayEntry is one participant's row within one day of the breakdown. Steps is
// nil for other participants on a pending day; rank order and points remain
// visible.
type DayEntry struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Rank     int       `json:"rank"`
	Steps    *int      `json:"steps,omitempty"`
	Points   int       `json:"points"`
}

type Day struct {
	Date    time.Time  `json:"date"`
	Status  DayStatus  `json:"status"`
	Entries []*DayEntry `json:"entries"`
}

type Breakdown struct {
	ChallengeID uuid.UUID `json:"challenge_id"`
	Days        []*Day    `json:"days"`
}
