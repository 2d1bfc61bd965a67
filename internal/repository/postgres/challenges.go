package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/types/challenge"
)

type ChallengeRepo struct{ db *pgxpool.Pool }

func (s *Store) Challenges() *ChallengeRepo { return &ChallengeRepo{db: s.db} }

const challengeColumns = `id, title, description, creator_id, start_date, end_date, mode, invite_code, status, timezone, is_recurring, recurring_interval, created_at, updated_at`

func scanChallenge(row pgx.Row) (*challenge.Challenge, error) {
	c := &challenge.Challenge{}
	err := row.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.CreatorID,
		&c.StartDate,
		&c.EndDate,
		&c.Mode,
		&c.InviteCode,
		&c.Status,
		&c.Timezone,
		&c.IsRecurring,
		&c.RecurringInterval,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (r *ChallengeRepo) Create(ctx context.Context, c *challenge.Challenge) error {
	query := `
	INSERT INTO challenges (` + challengeColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		c.ID,
		c.Title,
		c.Description,
		c.CreatorID,
		c.StartDate,
		c.EndDate,
		c.Mode,
		c.InviteCode,
		c.Status,
		c.Timezone,
		c.IsRecurring,
		c.RecurringInterval,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create challenge: %w", err)
	}

	return nil
}

func (r *ChallengeRepo) GetByID(ctx context.Context, id uuid.UUID) (*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE id = $1`

	c, err := scanChallenge(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}

	return c, nil
}

func (r *ChallengeRepo) GetByInviteCode(ctx context.Context, code string) (*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE upper(invite_code) = upper($1)`

	c, err := scanChallenge(r.db.QueryRow(ctx, query, code))
	if err != nil {
		return nil, notFound(err)
	}

	return c, nil
}

func (r *ChallengeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to challenge.Status) (bool, error) {
	query := `
	UPDATE challenges
	SET status = $3, updated_at = now()
	WHERE id = $1 AND status = $2
	`

	tag, err := r.db.Exec(ctx, query, id, from, to)
	if err != nil {
		return false, fmt.Errorf("failed to update challenge status: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ChallengeRepo) ListByStatus(ctx context.Context, status challenge.Status) ([]*challenge.Challenge, error) {
	query := `SELECT ` + challengeColumns + ` FROM challenges WHERE status = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}

	return challenges, rows.Err()
}

func (r *ChallengeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error) {
	query := `
	SELECT ` + challengeColumns + `
	FROM challenges c
	JOIN challenge_participants cp ON cp.challenge_id = c.id
	WHERE cp.user_id = $1
	ORDER BY c.start_date DESC, c.created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user challenges: %w", err)
	}
	defer rows.Close()

	var challenges []*challenge.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		challenges = append(challenges, c)
	}

	return challenges, rows.Err()
}

func (r *ChallengeRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM challenges WHERE upper(invite_code) = upper($1))`

	var exists bool
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check invite code: %w", err)
	}

	return exists, nil
}

type ParticipantRepo struct{ db *pgxpool.Pool }

func (s *Store) Participants() *ParticipantRepo { return &ParticipantRepo{db: s.db} }

func (r *ParticipantRepo) Join(ctx context.Context, challengeID, userID uuid.UUID, joinedAt time.Time) (bool, error) {
	query := `
	INSERT INTO challenge_participants (id, challenge_id, user_id, joined_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (challenge_id, user_id) DO NOTHING
	`

	tag, err := r.db.Exec(ctx, query, uuid.New(), challengeID, userID, joinedAt)
	if err != nil {
		return false, fmt.Errorf("failed to join challenge: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

func (r *ParticipantRepo) IsParticipant(ctx context.Context, challengeID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM challenge_participants WHERE challenge_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, challengeID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check participant: %w", err)
	}

	return exists, nil
}

func (r *ParticipantRepo) List(ctx context.Context, challengeID uuid.UUID) ([]repository.ParticipantInfo, error) {
	query := `
	SELECT cp.user_id, u.username, u.image_url, cp.joined_at
	FROM challenge_participants cp
	JOIN users u ON u.id = cp.user_id
	WHERE cp.challenge_id = $1
	ORDER BY cp.joined_at, cp.user_id::text
	`

	rows, err := r.db.Query(ctx, query, challengeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []repository.ParticipantInfo
	for rows.Next() {
		var p repository.ParticipantInfo
		if err := rows.Scan(&p.UserID, &p.Username, &p.ImageURL, &p.JoinedAt); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
