package notification

import (
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/types/badge"
)

type Type string

const (
	TypeBadgeAwarded    Type = "badge_awarded"
	TypeDailyWinner     Type = "daily_winner"
	TypeChallengeWinner Type = "challenge_winner"
	TypeStreakMilestone Type = "streak_milestone"
)

type Notification struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	UserID      uuid.UUID   `json:"userId" db:"user_id"`
	Type        Type        `json:"type" db:"type"`
	Title       string      `json:"title" db:"title"`
	Message     string      `json:"message" db:"message"`
	BadgeType   *badge.Type `json:"badgeType,omitempty" db:"badge_type"`
	ChallengeID *uuid.UUID  `json:"challengeId,omitempty" db:"challenge_id"`
	IsRead      bool        `json:"isRead" db:"is_read"`
	CreatedAt   time.Time   `json:"createdAt" db:"created_at"`
}
