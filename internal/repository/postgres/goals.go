package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/types/goals"
)

type GoalsRepo struct{ db *pgxpool.Pool }

func (s *Store) Goals() *GoalsRepo { return &GoalsRepo{db: s.db} }

// GetOrCreate inserts defaults on first touch so every user always has a
// goals row.
func (r *GoalsRepo) GetOrCreate(ctx context.Context, userID uuid.UUID) (*goals.UserGoals, error) {
	query := `
	INSERT INTO user_goals (id, user_id, daily_step_target, weekly_step_target, paused, current_streak, longest_streak, created_at, updated_at)
	VALUES ($1, $2, $3, $4, false, 0, 0, now(), now())
	ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
	RETURNING id, user_id, daily_step_target, weekly_step_target, paused, current_streak, longest_streak, last_achieved_date, created_at, updated_at
	`

	g := &goals.UserGoals{}
	err := r.db.QueryRow(ctx, query, uuid.New(), userID, goals.DefaultDailyTarget, goals.DefaultWeeklyTarget).Scan(
		&g.ID,
		&g.UserID,
		&g.DailyStepTarget,
		&g.WeeklyStepTarget,
		&g.Paused,
		&g.CurrentStreak,
		&g.LongestStreak,
		&g.LastAchievedDate,
		&g.CreatedAt,
		&g.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get or create goals: %w", err)
	}

	return g, nil
}

func (r *GoalsRepo) Update(ctx context.Context, g *goals.UserGoals) error {
	query := `
	UPDATE user_goals
	SET daily_step_target = $2, weekly_step_target = $3, paused = $4, updated_at = $5
	WHERE user_id = $1
	`

	tag, err := r.db.Exec(ctx, query, g.UserID, g.DailyStepTarget, g.WeeklyStepTarget, g.Paused, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update goals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

func (r *GoalsRepo) UpdateStreak(ctx context.Context, userID uuid.UUID, current, longest int, lastAchieved *time.Time) error {
	query := `
	UPDATE user_goals
	SET current_streak = $2, longest_streak = $3, last_achieved_date = $4, updated_at = now()
	WHERE user_id = $1
	`

	tag, err := r.db.Exec(ctx, query, userID, current, longest, lastAchieved)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
