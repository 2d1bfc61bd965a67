package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/timeutil"
)

type LeaderboardRepo struct{ store *Store }

func (s *Store) Leaderboard() *LeaderboardRepo { return &LeaderboardRepo{store: s} }

func (r *LeaderboardRepo) SplitTotals(ctx context.Context, challengeID uuid.UUID, start, end, cutoff time.Time) (map[uuid.UUID]repository.SplitTotals, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	start = timeutil.Normalize(start)
	end = timeutil.Normalize(end)
	cutoff = timeutil.Normalize(cutoff)

	result := make(map[uuid.UUID]repository.SplitTotals)
	for _, p := range r.store.participants[challengeID] {
		totals := repository.SplitTotals{}
		for _, entry := range r.store.stepEntries[p.UserID] {
			if entry.Date.Before(start) || entry.Date.After(end) {
				continue
			}
			if entry.Date.Before(cutoff) {
				totals.Confirmed += entry.StepCount
			} else {
				totals.Pending += entry.StepCount
			}
		}
		result[p.UserID] = totals
	}
	return result, nil
}

func (r *LeaderboardRepo) RangeTotals(ctx context.Context, challengeID uuid.UUID, start, end time.Time) (map[uuid.UUID]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	start = timeutil.Normalize(start)
	end = timeutil.Normalize(end)

	result := make(map[uuid.UUID]int)
	for _, p := range r.store.participants[challengeID] {
		total := 0
		for _, entry := range r.store.stepEntries[p.UserID] {
			if !entry.Date.Before(start) && !entry.Date.After(end) {
				total += entry.StepCount
			}
		}
		result[p.UserID] = total
	}
	return result, nil
}
