// Package repository defines the persistence contracts the engine depends on.
// Implementations live in postgres (production) and memory (tests). Duplicate
// key conditions surface as distinguishable "already exists" outcomes (false
// or nil results), never as corrupted state.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/types/badge"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/goals"
	"stepRivalsAPI/internal/types/notification"
	"stepRivalsAPI/internal/types/points"
	"stepRivalsAPI/internal/types/steps"
	"stepRivalsAPI/internal/types/user"
)

type UserRepository interface {
	Create(ctx context.Context, u *user.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	Update(ctx context.Context, u *user.User) error
}

type SessionRepository interface {
	Create(ctx context.Context, s *user.Session) error
	GetByTokenID(ctx context.Context, tokenID string) (*user.Session, error)
	Revoke(ctx context.Context, tokenID string, at time.Time) error
}

type ChallengeRepository interface {
	Create(ctx context.Context, c *challenge.Challenge) error
	GetByID(ctx context.Context, id uuid.UUID) (*challenge.Challenge, error)
	GetByInviteCode(ctx context.Context, code string) (*challenge.Challenge, error)
	// UpdateStatus moves a challenge from one status to the next and reports
	// whether the row actually changed. A false result means another pass got
	// there first; status never moves backward.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to challenge.Status) (bool, error)
	ListByStatus(ctx context.Context, status challenge.Status) ([]*challenge.Challenge, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error)
	InviteCodeExists(ctx context.Context, code string) (bool, error)
}

// ParticipantInfo carries the participant joined with display fields, the
// shape every ranking and visibility computation works from.
type ParticipantInfo struct {
	UserID   uuid.UUID
	Username string
	ImageURL *string
	JoinedAt time.Time
}

type ParticipantRepository interface {
	// Join enrolls the user and reports false when already enrolled.
	Join(ctx context.Context, challengeID, userID uuid.UUID, joinedAt time.Time) (bool, error)
	IsParticipant(ctx context.Context, challengeID, userID uuid.UUID) (bool, error)
	List(ctx context.Context, challengeID uuid.UUID) ([]ParticipantInfo, error)
}

type StepRepository interface {
	Upsert(ctx context.Context, entry *steps.Entry) error
	Get(ctx context.Context, userID uuid.UUID, date time.Time) (*steps.Entry, error)
	// ListSince returns the user's entries with date >= since, newest first.
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*steps.Entry, error)
	SumRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error)
	// StepsForDate returns step counts keyed by user for one date; users with
	// no entry are absent from the map.
	StepsForDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) (map[uuid.UUID]int, error)
}

type DailyPointsRepository interface {
	ExistsForDate(ctx context.Context, challengeID uuid.UUID, date time.Time) (bool, error)
	// Award writes one row and reports false on a duplicate (challenge, user,
	// date).
	Award(ctx context.Context, dp *points.DailyPoints) (bool, error)
	ListForDate(ctx context.Context, challengeID uuid.UUID, date time.Time) ([]*points.DailyPoints, error)
	TotalsByUser(ctx context.Context, challengeID uuid.UUID) (map[uuid.UUID]int, error)
}

type BadgeRepository interface {
	// Award creates the badge if absent and reports false when already held.
	Award(ctx context.Context, b *badge.UserBadge) (bool, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error)
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type NotificationRepository interface {
	Create(ctx context.Context, n *notification.Notification) error
	ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID) error
}

type GoalsRepository interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*goals.UserGoals, error)
	Update(ctx context.Context, g *goals.UserGoals) error
	UpdateStreak(ctx context.Context, userID uuid.UUID, current, longest int, lastAchieved *time.Time) error
}

// SplitTotals is one participant's step total split at the edit cutoff.
type SplitTotals struct {
	Confirmed int
	Pending   int
}

// LeaderboardRepository provides the aggregate queries the read path needs so
// that ranking does not load every raw entry.
type LeaderboardRepository interface {
	// SplitTotals sums step counts per participant over [start, end], split
	// into confirmed (date < cutoff) and pending (date >= cutoff).
	SplitTotals(ctx context.Context, challengeID uuid.UUID, start, end, cutoff time.Time) (map[uuid.UUID]SplitTotals, error)
	// RangeTotals sums step counts per participant over the full inclusive
	// range, used for the cumulative final winner.
	RangeTotals(ctx context.Context, challengeID uuid.UUID, start, end time.Time) (map[uuid.UUID]int, error)
}
