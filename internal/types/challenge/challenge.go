package challenge

import (
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeCumulative  Mode = "cumulative"
	ModeDailyWinner Mode = "daily_winner"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

type RecurringInterval string

const (
	RecurringWeekly  RecurringInterval = "weekly"
	RecurringMonthly RecurringInterval = "monthly"
)

// Challenge is a timeboxed competition. StartDate and EndDate are inclusive
// calendar dates; Timezone is the challenge's single source of truth for
// "what day is it", independent of any participant's personal timezone.
type Challenge struct {
	ID                uuid.UUID          `json:"id" db:"id"`
	Title             string             `json:"title" db:"title"`
	Description       *string            `json:"description,omitempty" db:"description"`
	CreatorID         uuid.UUID          `json:"creatorId" db:"creator_id"`
	StartDate         time.Time          `json:"startDate" db:"start_date"`
	EndDate           time.Time          `json:"endDate" db:"end_date"`
	Mode              Mode               `json:"mode" db:"mode"`
	InviteCode        string             `json:"inviteCode" db:"invite_code"`
	Status            Status             `json:"status" db:"status"`
	Timezone          string             `json:"timezone" db:"timezone"`
	IsRecurring       bool               `json:"isRecurring" db:"is_recurring"`
	RecurringInterval *RecurringInterval `json:"recurringInterval,omitempty" db:"recurring_interval"`
	CreatedAt         time.Time          `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time          `json:"updatedAt" db:"updated_at"`
}

type Participant struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChallengeID uuid.UUID `json:"challengeId" db:"challenge_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	JoinedAt    time.Time `json:"joinedAt" db:"joined_at"`
}

type CreateRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	StartDate         string `json:"startDate"`
	EndDate           string `json:"endDate"`
	Mode              Mode   `json:"mode"`
	Timezone          string `json:"timezone"`
	IsRecurring       bool   `json:"isRecurring"`
	RecurringInterval string `json:"recurringInterval"`
}

type JoinRequest struct {
	InviteCode string `json:"inviteCode"`
}

func ValidMode(mode Mode) bool {
	return mode == ModeCumulative || mode == ModeDailyWinner
}

func ValidRecurringInterval(interval RecurringInterval) bool {
	return interval == RecurringWeekly || interval == RecurringMonthly
}
