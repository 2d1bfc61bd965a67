package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/types/goals"
)

type GoalsRepo struct{ store *Store }

func (s *Store) Goals() *GoalsRepo { return &GoalsRepo{store: s} }

func (r *GoalsRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*goals.UserGoals, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if g, ok := r.store.userGoals[userID]; ok {
		copied := *g
		return &copied, nil
	}
	now := time.Now()
	g := &goals.UserGoals{
		ID:               uuid.New(),
		UserID:           userID,
		DailyStepTarget:  goals.DefaultDailyTarget,
		WeeklyStepTarget: goals.DefaultWeeklyTarget,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	r.store.userGoals[userID] = g
	copied := *g
	return &copied, nil
}

func (r *GoalsRepo) Update(ctx context.Context, g *goals.UserGoals) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.userGoals[g.UserID]; !ok {
		return apperr.ErrNotFound
	}
	copied := *g
	copied.UpdatedAt = time.Now()
	r.store.userGoals[g.UserID] = &copied
	return nil
}

func (r *GoalsRepo) UpdateStreak(ctx context.Context, userID uuid.UUID, current, longest int, lastAchieved *time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	g, ok := r.store.userGoals[userID]
	if !ok {
		return apperr.ErrNotFound
	}
	g.CurrentStreak = current
	g.LongestStreak = longest
	g.LastAchievedDate = lastAchieved
	g.UpdatedAt = time.Now()
	return nil
}
