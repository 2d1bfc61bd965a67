package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/types/badge"
)

type BadgeRepo struct{ db *pgxpool.Pool }

func (s *Store) Badges() *BadgeRepo { return &BadgeRepo{db: s.db} }

func (r *BadgeRepo) Award(ctx context.Context, b *badge.UserBadge) (bool, error) {
	query := `
	INSERT INTO user_badges (id, user_id, type, challenge_id, awarded_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, type) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, b.ID, b.UserID, b.Type, b.ChallengeID, b.AwardedAt)
	if err != nil {
		return false, fmt.Errorf("failed to award badge: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *BadgeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error) {
	query := `
	SELECT id, user_id, type, challenge_id, awarded_at
	FROM user_badges
	WHERE user_id = $1
	ORDER BY awarded_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list badges: %w", err)
	}
	defer rows.Close()

	var badges []*badge.UserBadge
	for rows.Next() {
		b := &badge.UserBadge{}
		if err := rows.Scan(&b.ID, &b.UserID, &b.Type, &b.ChallengeID, &b.AwardedAt); err != nil {
			return nil, err
		}
		badges = append(badges, b)
	}

	return badges, rows.Err()
}

func (r *BadgeRepo) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `SELECT COUNT(*) FROM user_badges WHERE user_id = $1`

	var count int
	if err := r.db.QueryRow(ctx, query, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count badges: %w", err)
	}

	return count, nil
}
