package goals

import (
	"time"

	"github.com/google/uuid"
)

const (
	DefaultDailyTarget  = 10000
	DefaultWeeklyTarget = 70000
)

type UserGoals struct {
	ID               uuid.UUID  `json:"id" db:"id"`
	UserID           uuid.UUID  `json:"userId" db:"user_id"`
	DailyStepTarget  int        `json:"dailyStepTarget" db:"daily_step_target"`
	WeeklyStepTarget int        `json:"weeklyStepTarget" db:"weekly_step_target"`
	Paused           bool       `json:"paused" db:"paused"`
	CurrentStreak    int        `json:"currentStreak" db:"current_streak"`
	LongestStreak    int        `json:"longestStreak" db:"longest_streak"`
	LastAchievedDate *time.Time `json:"lastAchievedDate,omitempty" db:"last_achieved_date"`
	CreatedAt        time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time  `json:"updatedAt" db:"updated_at"`
}

type UpdateRequest struct {
	DailyStepTarget  *int  `json:"dailyStepTarget"`
	WeeklyStepTarget *int  `json:"weeklyStepTarget"`
	Paused           *bool `json:"paused"`
}
