package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/badge"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/notification"
	"stepRivalsAPI/internal/types/points"
	"stepRivalsAPI/utils"
)

const inviteCodeAttempts = 10

// ChallengeService owns the challenge lifecycle: creation, membership, and
// the pending -> active -> completed state machine with daily scoring, final
// winner computation and recurring regeneration. Every transition is
// idempotent so a duplicated cron pass cannot double-award anything.
type ChallengeService struct {
	challenges    repository.ChallengeRepository
	participants  repository.ParticipantRepository
	steps         repository.StepRepository
	dailyPoints   repository.DailyPointsRepository
	badges        repository.BadgeRepository
	notifications repository.NotificationRepository
	leaderboard   repository.LeaderboardRepository
	clock         clock.Clock
}

func NewChallengeService(
	challengesRepo repository.ChallengeRepository,
	participantsRepo repository.ParticipantRepository,
	stepsRepo repository.StepRepository,
	dailyPointsRepo repository.DailyPointsRepository,
	badgesRepo repository.BadgeRepository,
	notificationsRepo repository.NotificationRepository,
	leaderboardRepo repository.LeaderboardRepository,
	clk clock.Clock,
) *ChallengeService {
	return &ChallengeService{
		challenges:    challengesRepo,
		participants:  participantsRepo,
		steps:         stepsRepo,
		dailyPoints:   dailyPointsRepo,
		badges:        badgesRepo,
		notifications: notificationsRepo,
		leaderboard:   leaderboardRepo,
		clock:         clk,
	}
}

func (s *ChallengeService) Create(ctx context.Context, creatorID uuid.UUID, req *challenge.CreateRequest) (*challenge.Challenge, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", apperr.ErrValidation)
	}
	if !challenge.ValidMode(req.Mode) {
		return nil, fmt.Errorf("%w: unknown mode %q", apperr.ErrValidation, req.Mode)
	}
	if !timeutil.ValidTimezone(req.Timezone) {
		return nil, fmt.Errorf("%w: unknown timezone %q", apperr.ErrValidation, req.Timezone)
	}

	startDate, err := timeutil.ParseDate(req.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	endDate, err := timeutil.ParseDate(req.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("%w: end date before start date", apperr.ErrValidation)
	}

	var interval *challenge.RecurringInterval
	if req.IsRecurring {
		parsed := challenge.RecurringInterval(req.RecurringInterval)
		if !challenge.ValidRecurringInterval(parsed) {
			return nil, fmt.Errorf("%w: unknown recurring interval %q", apperr.ErrValidation, req.RecurringInterval)
		}
		interval = &parsed
	}

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	c := &challenge.Challenge{
		ID:                uuid.New(),
		Title:             title,
		CreatorID:         creatorID,
		StartDate:         startDate,
		EndDate:           endDate,
		Mode:              req.Mode,
		InviteCode:        code,
		Status:            challenge.StatusPending,
		Timezone:          req.Timezone,
		IsRecurring:       req.IsRecurring,
		RecurringInterval: interval,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if description := strings.TrimSpace(req.Description); description != "" {
		c.Description = &description
	}

	if err := s.challenges.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	// Creator auto-joins. Join is idempotent so a retry after a partial
	// failure is harmless.
	if _, err := s.participants.Join(ctx, c.ID, creatorID, now); err != nil {
		return nil, fmt.Errorf("failed to enroll creator: %w", err)
	}

	return c, nil
}

func (s *ChallengeService) uniqueInviteCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < inviteCodeAttempts; attempt++ {
		code, err := utils.GenerateInviteCode()
		if err != nil {
			return "", err
		}
		exists, err := s.challenges.InviteCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check invite code: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New("failed to generate a unique invite code")
}

// JoinByInviteCode enrolls the user in the challenge behind the code.
// An unknown code is NOT_FOUND; joining twice is CONFLICT with no duplicate
// participant row.
func (s *ChallengeService) JoinByInviteCode(ctx context.Context, userID uuid.UUID, code string) (*challenge.Challenge, error) {
	c, err := s.challenges.GetByInviteCode(ctx, strings.TrimSpace(code))
	if err != nil {
		return nil, fmt.Errorf("%w: invite code", apperr.ErrNotFound)
	}

	joined, err := s.participants.Join(ctx, c.ID, userID, s.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("failed to join challenge: %w", err)
	}
	if !joined {
		return nil, fmt.Errorf("%w: already a participant", apperr.ErrConflict)
	}
	return c, nil
}

// Get returns the challenge to one of its participants.
func (s *ChallengeService) Get(ctx context.Context, challengeID, viewerID uuid.UUID) (*challenge.Challenge, error) {
	c, err := s.challenges.GetByID(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("%w: challenge", apperr.ErrNotFound)
	}
	member, err := s.participants.IsParticipant(ctx, challengeID, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to check membership: %w", err)
	}
	if !member {
		return nil, fmt.Errorf("%w: not a participant", apperr.ErrForbidden)
	}
	return c, nil
}

func (s *ChallengeService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error) {
	list, err := s.challenges.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	if list == nil {
		list = []*challenge.Challenge{}
	}
	return list, nil
}

func (s *ChallengeService) Participants(ctx context.Context, challengeID, viewerID uuid.UUID) ([]repository.ParticipantInfo, error) {
	if _, err := s.Get(ctx, challengeID, viewerID); err != nil {
		return nil, err
	}
	members, err := s.participants.List(ctx, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return members, nil
}

// ActivatePending flips every pending challenge whose local today has reached
// its start date. Safe to re-run: already-active challenges are not selected.
func (s *ChallengeService) ActivatePending(ctx context.Context) (int, error) {
	pending, err := s.challenges.ListByStatus(ctx, challenge.StatusPending)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending challenges: %w", err)
	}

	now := s.clock.Now()
	activated := 0
	for _, c := range pending {
		today, err := timeutil.DateIn(c.Timezone, now)
		if err != nil {
			log.Printf("ActivatePending: challenge %s has bad timezone %q: %v", c.ID, c.Timezone, err)
			continue
		}
		if today.Before(c.StartDate) {
			continue
		}
		changed, err := s.challenges.UpdateStatus(ctx, c.ID, challenge.StatusPending, challenge.StatusActive)
		if err != nil {
			return activated, fmt.Errorf("failed to activate challenge %s: %w", c.ID, err)
		}
		if changed {
			activated++
		}
	}
	return activated, nil
}

// ScoreFinalizedDays awards daily points for yesterday in every active
// daily_winner challenge whose local clock is past the edit cutover. A date
// already holding points for a challenge is skipped, which makes re-runs
// no-ops.
func (s *ChallengeService) ScoreFinalizedDays(ctx context.Context) (int, error) {
	active, err := s.challenges.ListByStatus(ctx, challenge.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to list active challenges: %w", err)
	}

	now := s.clock.Now()
	scored := 0
	for _, c := range active {
		if c.Mode != challenge.ModeDailyWinner {
			continue
		}
		hour, err := timeutil.HourIn(c.Timezone, now)
		if err != nil {
			log.Printf("ScoreFinalizedDays: challenge %s has bad timezone %q: %v", c.ID, c.Timezone, err)
			continue
		}
		if hour < timeutil.EditCutoverHour {
			continue
		}
		yesterday, err := timeutil.YesterdayIn(c.Timezone, now)
		if err != nil {
			continue
		}
		if yesterday.Before(c.StartDate) || yesterday.After(c.EndDate) {
			continue
		}
		exists, err := s.dailyPoints.ExistsForDate(ctx, c.ID, yesterday)
		if err != nil {
			return scored, fmt.Errorf("failed to check daily points for %s: %w", c.ID, err)
		}
		if exists {
			continue
		}
		if err := s.scoreDay(ctx, c, yesterday); err != nil {
			return scored, err
		}
		scored++
	}
	return scored, nil
}

// scoreDay ranks all participants by the date's steps and awards 3/2/1 to the
// top three. A participant with zero steps earns nothing even when ranked in
// the top three; the day's winner gets the daily_winner badge, create-if-
// absent.
func (s *ChallengeService) scoreDay(ctx context.Context, c *challenge.Challenge, date time.Time) error {
	members, err := s.participants.List(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants for %s: %w", c.ID, err)
	}
	if len(members) == 0 {
		return nil
	}

	userIDs := make([]uuid.UUID, len(members))
	for i, m := range members {
		userIDs[i] = m.UserID
	}
	counts, err := s.steps.StepsForDate(ctx, userIDs, date)
	if err != nil {
		return fmt.Errorf("failed to load steps for %s: %w", c.ID, err)
	}

	ranked := rankByCount(members, counts)

	now := s.clock.Now()
	for i := 0; i < len(ranked) && i < len(points.RankPoints); i++ {
		if counts[ranked[i].UserID] <= 0 {
			continue
		}
		if _, err := s.dailyPoints.Award(ctx, &points.DailyPoints{
			ID:          uuid.New(),
			ChallengeID: c.ID,
			UserID:      ranked[i].UserID,
			Date:        date,
			Points:      points.RankPoints[i],
			CreatedAt:   now,
		}); err != nil {
			return fmt.Errorf("failed to award daily points for %s: %w", c.ID, err)
		}
	}

	winner := ranked[0]
	if counts[winner.UserID] > 0 {
		if err := s.awardBadge(ctx, winner.UserID, badge.TypeDailyWinner, c,
			"Daily winner!",
			fmt.Sprintf("You won the day in %q with %d steps.", c.Title, counts[winner.UserID]),
			notification.TypeDailyWinner,
		); err != nil {
			return err
		}
	}
	return nil
}

// FinalizeEnded completes every active challenge whose end date has passed and
// whose final day is settled, computes the overall winner, and regenerates
// recurring challenges. The status update doubles as the idempotence guard:
// only the pass that actually flips the status does the winner work.
func (s *ChallengeService) FinalizeEnded(ctx context.Context) (int, error) {
	active, err := s.challenges.ListByStatus(ctx, challenge.StatusActive)
	if err != nil {
		return 0, fmt.Errorf("failed to list active challenges: %w", err)
	}

	now := s.clock.Now()
	finalized := 0
	for _, c := range active {
		hour, err := timeutil.HourIn(c.Timezone, now)
		if err != nil {
			log.Printf("FinalizeEnded: challenge %s has bad timezone %q: %v", c.ID, c.Timezone, err)
			continue
		}
		if hour < timeutil.EditCutoverHour {
			continue
		}
		today, err := timeutil.DateIn(c.Timezone, now)
		if err != nil {
			continue
		}
		if !c.EndDate.Before(today) {
			continue
		}

		changed, err := s.challenges.UpdateStatus(ctx, c.ID, challenge.StatusActive, challenge.StatusCompleted)
		if err != nil {
			return finalized, fmt.Errorf("failed to complete challenge %s: %w", c.ID, err)
		}
		if !changed {
			continue
		}
		finalized++

		if err := s.awardFinalWinner(ctx, c); err != nil {
			return finalized, err
		}
		if c.IsRecurring && c.RecurringInterval != nil {
			if err := s.regenerateRecurring(ctx, c); err != nil {
				return finalized, err
			}
		}
	}
	return finalized, nil
}

func (s *ChallengeService) awardFinalWinner(ctx context.Context, c *challenge.Challenge) error {
	members, err := s.participants.List(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants for %s: %w", c.ID, err)
	}
	if len(members) == 0 {
		return nil
	}

	var scores map[uuid.UUID]int
	switch c.Mode {
	case challenge.ModeDailyWinner:
		scores, err = s.dailyPoints.TotalsByUser(ctx, c.ID)
	default:
		scores, err = s.leaderboard.RangeTotals(ctx, c.ID, c.StartDate, c.EndDate)
	}
	if err != nil {
		return fmt.Errorf("failed to compute final scores for %s: %w", c.ID, err)
	}

	ranked := rankByCount(members, scores)
	winner := ranked[0]
	// No winner is recognized on an all-zero board.
	if scores[winner.UserID] <= 0 {
		return nil
	}

	return s.awardBadge(ctx, winner.UserID, badge.TypeChallengeWinner, c,
		"Challenge winner!",
		fmt.Sprintf("You won %q.", c.Title),
		notification.TypeChallengeWinner,
	)
}

// regenerateRecurring creates the next occurrence: weekly shifts the start by
// seven days, monthly by one calendar month; the new end preserves the
// original duration. Every participant of the completed run is re-enrolled.
func (s *ChallengeService) regenerateRecurring(ctx context.Context, c *challenge.Challenge) error {
	durationDays := int(c.EndDate.Sub(c.StartDate).Hours() / 24)

	var nextStart time.Time
	switch *c.RecurringInterval {
	case challenge.RecurringWeekly:
		nextStart = c.StartDate.AddDate(0, 0, 7)
	case challenge.RecurringMonthly:
		nextStart = c.StartDate.AddDate(0, 1, 0)
	default:
		return fmt.Errorf("challenge %s has unknown recurring interval %q", c.ID, *c.RecurringInterval)
	}
	nextEnd := nextStart.AddDate(0, 0, durationDays)

	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return err
	}

	now := s.clock.Now()
	next := &challenge.Challenge{
		ID:                uuid.New(),
		Title:             c.Title,
		Description:       c.Description,
		CreatorID:         c.CreatorID,
		StartDate:         nextStart,
		EndDate:           nextEnd,
		Mode:              c.Mode,
		InviteCode:        code,
		Status:            challenge.StatusPending,
		Timezone:          c.Timezone,
		IsRecurring:       true,
		RecurringInterval: c.RecurringInterval,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.challenges.Create(ctx, next); err != nil {
		return fmt.Errorf("failed to create recurring challenge for %s: %w", c.ID, err)
	}

	members, err := s.participants.List(ctx, c.ID)
	if err != nil {
		return fmt.Errorf("failed to list participants for %s: %w", c.ID, err)
	}
	for _, m := range members {
		if _, err := s.participants.Join(ctx, next.ID, m.UserID, now); err != nil {
			return fmt.Errorf("failed to re-enroll participant %s: %w", m.UserID, err)
		}
	}

	log.Printf("Regenerated recurring challenge %q: %s -> %s", c.Title, c.ID, next.ID)
	return nil
}

func (s *ChallengeService) awardBadge(
	ctx context.Context,
	userID uuid.UUID,
	badgeType badge.Type,
	c *challenge.Challenge,
	title, message string,
	noteType notification.Type,
) error {
	challengeID := c.ID
	awarded, err := s.badges.Award(ctx, &badge.UserBadge{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        badgeType,
		ChallengeID: &challengeID,
		AwardedAt:   s.clock.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to award %s badge: %w", badgeType, err)
	}
	// Repeat wins are covered by the existing badge; only a fresh award is
	// worth a notification.
	if !awarded {
		return nil
	}
	note := &notification.Notification{
		ID:          uuid.New(),
		UserID:      userID,
		Type:        noteType,
		Title:       title,
		Message:     message,
		BadgeType:   &badgeType,
		ChallengeID: &challengeID,
		CreatedAt:   s.clock.Now(),
	}
	if err := s.notifications.Create(ctx, note); err != nil {
		return fmt.Errorf("failed to create badge notification: %w", err)
	}
	return nil
}

// rankByCount orders participants by score descending, breaking ties by
// earliest join time and then user id so every store ranks identically.
func rankByCount(members []repository.ParticipantInfo, scores map[uuid.UUID]int) []repository.ParticipantInfo {
	ranked := make([]repository.ParticipantInfo, len(members))
	copy(ranked, members)
	sort.SliceStable(ranked, func(i, j int) bool {
		si, sj := scores[ranked[i].UserID], scores[ranked[j].UserID]
		if si != sj {
			return si > sj
		}
		if !ranked[i].JoinedAt.Equal(ranked[j].JoinedAt) {
			return ranked[i].JoinedAt.Before(ranked[j].JoinedAt)
		}
		return ranked[i].UserID.String() < ranked[j].UserID.String()
	})
	return ranked
}
