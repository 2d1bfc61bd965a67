package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/types/points"
)

type PointsRepo struct{ db *pgxpool.Pool }

func (s *Store) DailyPoints() *PointsRepo { return &PointsRepo{db: s.db} }

func (r *PointsRepo) ExistsForDate(ctx context.Context, challengeID uuid.UUID, date time.Time) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM daily_points WHERE challenge_id = $1 AND date = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, challengeID, date).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check daily points: %w", err)
	}

	return exists, nil
}

func (r *PointsRepo) Award(ctx context.Context, dp *points.DailyPoints) (bool, error) {
	query := `
	INSERT INTO daily_points (id, challenge_id, user_id, date, points, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (challenge_id, user_id, date) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, dp.ID, dp.ChallengeID, dp.UserID, dp.Date, dp.Points, dp.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to award daily points: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *PointsRepo) ListForDate(ctx context.Context, challengeID uuid.UUID, date time.Time) ([]*points.DailyPoints, error) {
	query := `
	SELECT id, challenge_id, user_id, date, points, created_at
	FROM daily_points
	WHERE challenge_id = $1 AND date = $2
	ORDER BY points DESC
	`

	rows, err := r.db.Query(ctx, query, challengeID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list daily points: %w", err)
	}
	defer rows.Close()

	var awarded []*points.DailyPoints
	for rows.Next() {
		dp := &points.DailyPoints{}
		if err := rows.Scan(&dp.ID, &dp.ChallengeID, &dp.UserID, &dp.Date, &dp.Points, &dp.CreatedAt); err != nil {
			return nil, err
		}
		awarded = append(awarded, dp)
	}

	return awarded, rows.Err()
}

func (r *PointsRepo) TotalsByUser(ctx context.Context, challengeID uuid.UUID) (map[uuid.UUID]int, error) {
	query := `
	SELECT user_id, COALESCE(SUM(points), 0)
	FROM daily_points
	WHERE challenge_id = $1
	GROUP BY user_id
	`

	rows, err := r.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to total daily points: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]int)
	for rows.Next() {
		var userID uuid.UUID
		var total int
		if err := rows.Scan(&userID, &total); err != nil {
			return nil, err
		}
		totals[userID] = total
	}

	return totals, rows.Err()
}
