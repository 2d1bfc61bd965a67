package steps

import (
	"time"

	"github.com/google/uuid"
)

// Step count bounds for a single day. Entries outside this range are rejected
// before they reach storage.
const (
	MinDailySteps = 0
	MaxDailySteps = 200000
)

// Entry is one user's step count for one calendar date. It is globally
// scoped, not per challenge: a day's steps are a single physical quantity
// shared by every challenge the user is in.
type Entry struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"userId" db:"user_id"`
	Date      time.Time `json:"date" db:"date"`
	StepCount int       `json:"stepCount" db:"step_count"`
	Source    string    `json:"source" db:"source"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

type UpsertRequest struct {
	Date      string `json:"date"`
	StepCount int    `json:"stepCount"`
	Source    string `json:"source"`
}
