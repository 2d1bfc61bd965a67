package badge

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeDailyWinner     Type = "daily_winner"
	TypeChallengeWinner Type = "challenge_winner"
)

// StreakMilestones are the streak lengths that earn a streak_<N> badge.
// Several may be awarded in one pass when a long streak is discovered
// retroactively.
var StreakMilestones = []int{3, 7, 14, 30, 60, 100, 180, 365}

// StreakType returns the badge type for a streak milestone, e.g. streak_7.
func StreakType(milestone int) Type {
	return Type(fmt.Sprintf("streak_%d", milestone))
}

// UserBadge is unique per (user, type): awarding is create-if-absent, and a
// second award silently reports nothing to do.
type UserBadge struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      uuid.UUID  `json:"userId" db:"user_id"`
	Type        Type       `json:"type" db:"type"`
	ChallengeID *uuid.UUID `json:"challengeId,omitempty" db:"challenge_id"`
	AwardedAt   time.Time  `json:"awardedAt" db:"awarded_at"`
}
