package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/repository"
)

type LeaderboardRepo struct{ db *pgxpool.Pool }

func (s *Store) Leaderboard() *LeaderboardRepo { return &LeaderboardRepo{db: s.db} }

func (r *LeaderboardRepo) SplitTotals(ctx context.Context, challengeID uuid.UUID, start, end, cutoff time.Time) (map[uuid.UUID]repository.SplitTotals, error) {
	query := `
	SELECT cp.user_id,
	       COALESCE(SUM(se.step_count) FILTER (WHERE se.date < $4), 0),
	       COALESCE(SUM(se.step_count) FILTER (WHERE se.date >= $4), 0)
	FROM challenge_participants cp
	LEFT JOIN step_entries se
	  ON se.user_id = cp.user_id AND se.date BETWEEN $2 AND $3
	WHERE cp.challenge_id = $1
	GROUP BY cp.user_id
	`

	rows, err := r.db.Query(ctx, query, challengeID, start, end, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to load split totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[uuid.UUID]repository.SplitTotals)
	for rows.Next() {
		var userID uuid.UUID
		var t repository.SplitTotals
		if err := rows.Scan(&userID, &t.Confirmed, &t.Pending); err != nil {
			return nil, err
		}
		totals[userID] = t
	}

	return totals, rows.Err()
}

func (r *LeaderboardRepo) RangeTotals(ctx context.Context, challengeID uuid.UUID, start, end time.Time) (map[uuid.UUID]int, error) {
	query := `
	SELECT cp.user_id, COALESCE(SUM(se.step_count), 0)
	FROM challenge_participants cp
	LEFT JOIN step_entries se
	  ON se.user_id = cp.user_id AND se.date BETWEEN $2 AND $3
	WHERE cp.challenge_id = $1
	GROUP BY cp.user_id
	`

	rows, err := r.db.Query(ctx, query, challengeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to load range totals: %w", err)
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
