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
	"stepRivalsAPI/internal/types/steps"
)

// StepService owns the global step ledger: one entry per user per calendar
// date, editable only inside the edit window of the user's own timezone.
type StepService struct {
	steps   repository.StepRepository
	users   repository.UserRepository
	streaks *StreakService
	clock   clock.Clock
}

func NewStepService(
	stepsRepo repository.StepRepository,
	usersRepo repository.UserRepository,
	streaks *StreakService,
	clk clock.Clock,
) *StepService {
	return &StepService{
		steps:   stepsRepo,
		users:   usersRepo,
		streaks: streaks,
		clock:   clk,
	}
}

// Upsert records the user's step count for a date, then recomputes the streak.
// The edit window is enforced here, not by storage: today is always editable,
// yesterday only before the local cutover hour, anything older is frozen.
func (s *StepService) Upsert(ctx context.Context, userID uuid.UUID, req *steps.UpsertRequest) (*steps.Entry, error) {
	if req.StepCount < steps.MinDailySteps || req.StepCount > steps.MaxDailySteps {
		return nil, fmt.Errorf("%w: step count must be between %d and %d",
			apperr.ErrValidation, steps.MinDailySteps, steps.MaxDailySteps)
	}

	date, err := timeutil.ParseDate(req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}

	now := s.clock.Now()
	editable, err := timeutil.IsEditable(date, u.Timezone, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	if !editable {
		return nil, fmt.Errorf("%w: date %s is outside the edit window",
			apperr.ErrValidation, date.Format(timeutil.DateLayout))
	}

	source := req.Source
	if source == "" {
		source = "manual"
	}

	entry := &steps.Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		StepCount: req.StepCount,
		Source:    source,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.steps.Upsert(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save step entry: %w", err)
	}

	if _, err := s.streaks.Recalculate(ctx, userID, u.Timezone); err != nil {
		return nil, fmt.Errorf("failed to recalculate streak: %w", err)
	}

	return entry, nil
}

// Recent returns the user's entries for the trailing number of days, newest
// first.
func (s *StepService) Recent(ctx context.Context, userID uuid.UUID, days int) ([]*steps.Entry, error) {
	if days <= 0 {
		days = 30
	}
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	today, err := timeutil.DateIn(u.Timezone, s.clock.Now())
	if err != nil {
		return nil, err
	}
	entries, err := s.steps.ListSince(ctx, userID, today.AddDate(0, 0, -(days-1)))
	if err != nil {
		return nil, fmt.Errorf("failed to list step entries: %w", err)
	}
	if entries == nil {
		entries = []*steps.Entry{}
	}
	return entries, nil
}

// EditWindow reports the current cutoff dates for the user's timezone so
// clients can grey out frozen days.
func (s *StepService) EditWindow(ctx context.Context, userID uuid.UUID) (cutoff, lastFinalized time.Time, err error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: user", apperr.ErrNotFound)
	}
	now := s.clock.Now()
	cutoff, err = timeutil.EditCutoffDate(u.Timezone, now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	lastFinalized = cutoff.AddDate(0, 0, -1)
	return cutoff, lastFinalized, nil
}
