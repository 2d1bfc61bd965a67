package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/badge"
	"stepRivalsAPI/internal/types/goals"
	"stepRivalsAPI/internal/types/notification"
	"stepRivalsAPI/internal/types/steps"
)

// streakWindowDays covers the largest streak milestone plus a margin so a
// long-unrecorded streak is still discovered in one pass.
const streakWindowDays = 370

// StreakService recomputes a user's daily-goal streak after every accepted
// step edit and awards milestone badges.
type StreakService struct {
	goals         repository.GoalsRepository
	steps         repository.StepRepository
	badges        repository.BadgeRepository
	notifications repository.NotificationRepository
	clock         clock.Clock
}

func NewStreakService(
	goalsRepo repository.GoalsRepository,
	stepsRepo repository.StepRepository,
	badgesRepo repository.BadgeRepository,
	notificationsRepo repository.NotificationRepository,
	clk clock.Clock,
) *StreakService {
	return &StreakService{
		goals:         goalsRepo,
		steps:         stepsRepo,
		badges:        badgesRepo,
		notifications: notificationsRepo,
		clock:         clk,
	}
}

// Recalculate walks the user's recent entries backward from today and updates
// streak state. The current streak counts consecutive days meeting the daily
// target ending today or yesterday; a missing day breaks the chain the same
// as a below-target day. Longest streak never decreases.
func (s *StreakService) Recalculate(ctx context.Context, userID uuid.UUID, timezone string) (*goals.UserGoals, error) {
	userGoals, err := s.goals.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	if userGoals.Paused {
		return userGoals, nil
	}

	now := s.clock.Now()
	today, err := timeutil.DateIn(timezone, now)
	if err != nil {
		return nil, err
	}

	windowStart := today.AddDate(0, 0, -streakWindowDays)
	entries, err := s.steps.ListSince(ctx, userID, windowStart)
	if err != nil {
		return nil, fmt.Errorf("failed to load step entries: %w", err)
	}

	current, lastAchieved := computeStreak(entries, today, userGoals.DailyStepTarget)

	longest := userGoals.LongestStreak
	if current > longest {
		longest = current
	}

	if err := s.goals.UpdateStreak(ctx, userID, current, longest, lastAchieved); err != nil {
		return nil, fmt.Errorf("failed to update streak: %w", err)
	}

	if err := s.awardMilestones(ctx, userID, current); err != nil {
		return nil, err
	}

	userGoals.CurrentStreak = current
	userGoals.LongestStreak = longest
	userGoals.LastAchievedDate = lastAchieved
	return userGoals, nil
}

// computeStreak returns the current streak length and the most recent date
// (today or yesterday) that met the target, or nil if neither did.
func computeStreak(entries []*steps.Entry, today time.Time, target int) (int, *time.Time) {
	byDate := make(map[string]int, len(entries))
	for _, entry := range entries {
		byDate[entry.Date.Format(timeutil.DateLayout)] = entry.StepCount
	}
	met := func(date time.Time) bool {
		return byDate[date.Format(timeutil.DateLayout)] >= target && target > 0
	}

	yesterday := today.AddDate(0, 0, -1)

	var anchor time.Time
	switch {
	case met(today):
		anchor = today
	case met(yesterday):
		anchor = yesterday
	default:
		return 0, nil
	}

	streak := 0
	for d := anchor; met(d); d = d.AddDate(0, 0, -1) {
		streak++
	}
	achieved := anchor
	return streak, &achieved
}

func (s *StreakService) awardMilestones(ctx context.Context, userID uuid.UUID, streak int) error {
	now := s.clock.Now()
	for _, milestone := range badge.StreakMilestones {
		if milestone > streak {
			continue
		}
		badgeType := badge.StreakType(milestone)
		awarded, err := s.badges.Award(ctx, &badge.UserBadge{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      badgeType,
			AwardedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to award %s badge: %w", badgeType, err)
		}
		if !awarded {
			continue
		}
		note := &notification.Notification{
			ID:        uuid.New(),
			UserID:    userID,
			Type:      notification.TypeStreakMilestone,
			Title:     fmt.Sprintf("%d-day streak!", milestone),
			Message:   fmt.Sprintf("You hit your daily step goal %d days in a row.", milestone),
			BadgeType: &badgeType,
			CreatedAt: now,
		}
		if err := s.notifications.Create(ctx, note); err != nil {
			return fmt.Errorf("failed to create streak notification: %w", err)
		}
	}
	return nil
}
