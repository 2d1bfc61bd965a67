package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/leaderboard"
)

// LeaderboardService builds the standings a given viewer is allowed to see.
// It shares the edit-window computation with the write path so the two can
// never disagree on which dates are still pending.
type LeaderboardService struct {
	challenges   repository.ChallengeRepository
	participants repository.ParticipantRepository
	steps        repository.StepRepository
	dailyPoints  repository.DailyPointsRepository
	leaderboard  repository.LeaderboardRepository
	clock        clock.Clock
}

func NewLeaderboardService(
	challengesRepo repository.ChallengeRepository,
	participantsRepo repository.ParticipantRepository,
	stepsRepo repository.StepRepository,
	dailyPointsRepo repository.DailyPointsRepository,
	leaderboardRepo repository.LeaderboardRepository,
	clk clock.Clock,
) *LeaderboardService {
	return &LeaderboardService{
		challenges:   challengesRepo,
		participants: participantsRepo,
		steps:        stepsRepo,
		dailyPoints:  dailyPointsRepo,
		leaderboard:  leaderboardRepo,
		clock:        clk,
	}
}

// Get builds the leaderboard for one viewer. The viewer sees their own
// confirmed+pending total; everyone else's total is confirmed-only, so nobody
// can react to a rival's still-editable score. Ranking itself uses
// confirmed-only (cumulative) or points (daily_winner) uniformly, so rank
// order is the same for every viewer.
func (s *LeaderboardService) Get(ctx context.Context, challengeID, viewerID uuid.UUID) (*leaderboard.Leaderboard, error) {
	c, members, err := s.loadForViewer(ctx, challengeID, viewerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	cutoff, err := timeutil.EditCutoffDate(c.Timezone, now)
	if err != nil {
		return nil, err
	}

	splits, err := s.leaderboard.SplitTotals(ctx, c.ID, c.StartDate, c.EndDate, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load step totals: %w", err)
	}
	pointTotals, err := s.dailyPoints.TotalsByUser(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load point totals: %w", err)
	}

	rankScores := make(map[uuid.UUID]int, len(members))
	for _, m := range members {
		if c.Mode == challenge.ModeDailyWinner {
			rankScores[m.UserID] = pointTotals[m.UserID]
		} else {
			rankScores[m.UserID] = splits[m.UserID].Confirmed
		}
	}
	ranked := rankByCount(members, rankScores)

	entries := make([]*leaderboard.Entry, 0, len(ranked))
	for i, m := range ranked {
		split := splits[m.UserID]
		entry := &leaderboard.Entry{
			UserID:         m.UserID,
			Username:       m.Username,
			ImageURL:       m.ImageURL,
			Rank:           i + 1,
			ConfirmedSteps: split.Confirmed,
			TotalSteps:     split.Confirmed,
			Points:         pointTotals[m.UserID],
			IsViewer:       m.UserID == viewerID,
		}
		if m.UserID == viewerID {
			pending := split.Pending
			entry.PendingSteps = &pending
			entry.TotalSteps = split.Confirmed + split.Pending
		}
		entries = append(entries, entry)
	}

	result := &leaderboard.Leaderboard{
		ChallengeID:    c.ID,
		Entries:        entries,
		EditCutoffDate: cutoff,
	}

	// Last finalized date, clamped to the challenge range. Its per-user
	// snapshot is settled and safe for every viewer.
	lastFinalized := cutoff.AddDate(0, 0, -1)
	if lastFinalized.After(c.EndDate) {
		lastFinalized = c.EndDate
	}
	if !lastFinalized.Before(c.StartDate) {
		result.LastFinalizedDate = &lastFinalized

		userIDs := make([]uuid.UUID, len(members))
		for i, m := range members {
			userIDs[i] = m.UserID
		}
		counts, err := s.steps.StepsForDate(ctx, userIDs, lastFinalized)
		if err != nil {
			return nil, fmt.Errorf("failed to load finalized snapshot: %w", err)
		}
		for _, m := range rankByCount(members, counts) {
			result.LastFinalized = append(result.LastFinalized, leaderboard.SnapshotEntry{
				UserID:    m.UserID,
				Username:  m.Username,
				StepCount: counts[m.UserID],
			})
		}
	}

	return result, nil
}

// Breakdown returns one record per elapsed challenge day, newest first. On a
// finalized day everyone's steps and points are visible; on a pending day
// only the viewer's own count is revealed, while rank order and any points
// already awarded remain visible.
func (s *LeaderboardService) Breakdown(ctx context.Context, challengeID, viewerID uuid.UUID) (*leaderboard.Breakdown, error) {
	c, members, err := s.loadForViewer(ctx, challengeID, viewerID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	today, err := timeutil.DateIn(c.Timezone, now)
	if err != nil {
		return nil, err
	}
	cutoff, err := timeutil.EditCutoffDate(c.Timezone, now)
	if err != nil {
		return nil, err
	}

	end := c.EndDate
	if today.Before(end) {
		end = today
	}
	dates := timeutil.DatesBetween(c.StartDate, end)

	userIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}

	result := &leaderboard.Breakdown{ChallengeID: c.ID}
	for i := len(dates) - 1; i >= 0; i-- {
		date := dates[i]
		counts, err := s.steps.StepsForDate(ctx, userIDs, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load steps for %s: %w", date.Format(timeutil.DateLayout), err)
		}
		awarded, err := s.dailyPoints.ListForDate(ctx, c.ID, date)
		if err != nil {
			return nil, fmt.Errorf("failed to load points for %s: %w", date.Format(timeutil.DateLayout), err)
		}
		pointsByUser := make(map[uuid.UUID]int, len(awarded))
		for _, dp := range awarded {
			pointsByUser[dp.UserID] = dp.Points
		}

		day := &leaderboard.Day{
			Date:   date,
			Status: dayStatus(date, cutoff),
		}
		for rank, m := range rankByCount(members, counts) {
			entry := &leaderboard.DayEntry{
				UserID:   m.UserID,
				Username: m.Username,
				Rank:     rank + 1,
				Points:   pointsByUser[m.UserID],
			}
			if day.Status == leaderboard.DayFinalized || m.UserID == viewerID {
				count := counts[m.UserID]
				entry.Steps = &count
			}
			day.Entries = append(day.Entries, entry)
		}
		result.Days = append(result.Days, day)
	}
	return result, nil
}

func dayStatus(date, cutoff time.Time) leaderboard.DayStatus {
	if date.Before(cutoff) {
		return leaderboard.DayFinalized
	}
	return leaderboard.DayPending
}

func (s *LeaderboardService) loadForViewer(ctx context.Context, challengeID, viewerID uuid.UUID) (*challenge.Challenge, []repository.ParticipantInfo, error) {
	c, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: challenge", apperr.ErrNotFound)
	}
	member, err := s.participants.IsParticipant(ctx, challengeID, viewerID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, nil, fmt.Errorf("%w: not a participant", apperr.ErrForbidden)
	}
	members, err := s.participants.List(ctx, challengeID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return c, members, nil
}
