package points

import (
	"time"

	"github.com/google/uuid"
)

// Points awarded to the top three finishers of a finalized day in a
// daily_winner challenge.
var RankPoints = [3]int{3, 2, 1}

// DailyPoints is unique per (challenge, user, date) and written at most once
// per date per challenge.
type DailyPoints struct {
	ID          uuid.UUID `json:"id" db:"id"`
	ChallengeID uuid.UUID `json:"challengeId" db:"challenge_id"`
	UserID      uuid.UUID `json:"userId" db:"user_id"`
	Date        time.Time `json:"date" db:"date"`
	Points      int       `json:"points" db:"points"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}
