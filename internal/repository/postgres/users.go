package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/types/user"
)

type UserRepo struct{ db *pgxpool.Pool }

func (s *Store) Users() *UserRepo { return &UserRepo{db: s.db} }

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	query := `
	INSERT INTO users (id, email, username, password_hash, timezone, image_url, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.Exec(
		ctx,
		query,
		u.ID,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.Timezone,
		u.ImageURL,
		u.CreatedAt,
		u.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	query := `
	SELECT id, email, username, password_hash, timezone, image_url, created_at, updated_at
	FROM users
	WHERE id = $1
	`

	u := &user.User{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Timezone,
		&u.ImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return u, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := `
	SELECT id, email, username, password_hash, timezone, image_url, created_at, updated_at
	FROM users
	WHERE lower(email) = lower($1)
	`

	u := &user.User{}
	err := r.db.QueryRow(ctx, query, email).Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.Timezone,
		&u.ImageURL,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, u *user.User) error {
	query := `
	UPDATE users
	SET username = $2, timezone = $3, image_url = $4, updated_at = $5
	WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, u.ID, u.Username, u.Timezone, u.ImageURL, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	return nil
}

type SessionRepo struct{ db *pgxpool.Pool }

func (s *Store) Sessions() *SessionRepo { return &SessionRepo{db: s.db} }

func (r *SessionRepo) Create(ctx context.Context, sess *user.Session) error {
	query := `
	INSERT INTO sessions (id, user_id, token_id, expires_at, revoked_at, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.Exec(ctx, query, sess.ID, sess.UserID, sess.TokenID, sess.ExpiresAt, sess.RevokedAt, sess.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *SessionRepo) GetByTokenID(ctx context.Context, tokenID string) (*user.Session, error) {
	query := `
	SELECT id, user_id, token_id, expires_at, revoked_at, created_at
	FROM sessions
	WHERE token_id = $1
	`

	sess := &user.Session{}
	err := r.db.QueryRow(ctx, query, tokenID).Scan(
		&sess.ID,
		&sess.UserID,
		&sess.TokenID,
		&sess.ExpiresAt,
		&sess.RevokedAt,
		&sess.CreatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return sess, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, tokenID string, at time.Time) error {
	query := `
	UPDATE sessions
	SET revoked_at = $2
	WHERE token_id = $1 AND revoked_at IS NULL
	`

	tag, err := r.db.Exec(ctx, query, tokenID, at)
	if err != nil {
		return fmt.Errorf("failed to revoke session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.ErrNotFound
	}

	return nil
}
