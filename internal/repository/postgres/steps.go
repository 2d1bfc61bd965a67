package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"stepRivalsAPI/internal/types/steps"
)

type StepRepo struct{ db *pgxpool.Pool }

func (s *Store) Steps() *StepRepo { return &StepRepo{db: s.db} }

func (r *StepRepo) Upsert(ctx context.Context, entry *steps.Entry) error {
	query := `
	INSERT INTO step_entries (id, user_id, date, step_count, source, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (user_id, date)
	DO UPDATE SET step_count = EXCLUDED.step_count, source = EXCLUDED.source, updated_at = EXCLUDED.updated_at
	RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx,
		query,
		entry.ID,
		entry.UserID,
		entry.Date,
		entry.StepCount,
		entry.Source,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert step entry: %w", err)
	}

	return nil
}

func (r *StepRepo) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*steps.Entry, error) {
	query := `
	SELECT id, user_id, date, step_count, source, created_at, updated_at
	FROM step_entries
	WHERE user_id = $1 AND date = $2
	`

	entry := &steps.Entry{}
	err := r.db.QueryRow(ctx, query, userID, date).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Date,
		&entry.StepCount,
		&entry.Source,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}

	return entry, nil
}

func (r *StepRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*steps.Entry, error) {
	query := `
	SELECT id, user_id, date, step_count, source, created_at, updated_at
	FROM step_entries
	WHERE user_id = $1 AND date >= $2
	ORDER BY date DESC
	`

	rows, err := r.db.Query(ctx, query, userID, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list step entries: %w", err)
	}
	defer rows.Close()

	var entries []*steps.Entry
	for rows.Next() {
		entry := &steps.Entry{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Date,
			&entry.StepCount,
			&entry.Source,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

func (r *StepRepo) SumRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	query := `
	SELECT COALESCE(SUM(step_count), 0)
	FROM step_entries
	WHERE user_id = $1 AND date BETWEEN $2 AND $3
	`

	var total int
	if err := r.db.QueryRow(ctx, query, userID, start, end).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum step entries: %w", err)
	}

	return total, nil
}

func (r *StepRepo) StepsForDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) (map[uuid.UUID]int, error) {
	query := `
	SELECT user_id, step_count
	FROM step_entries
	WHERE user_id = ANY($1) AND date = $2
	`

	rows, err := r.db.Query(ctx, query, userIDs, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps for date: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var userID uuid.UUID
		var count int
		if err := rows.Scan(&userID, &count); err != nil {
			return nil, err
		}
		counts[userID] = count
	}

	return counts, rows.Err()
}
