package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/points"
)

type PointsRepo struct{ store *Store }

func (s *Store) DailyPoints() *PointsRepo { return &PointsRepo{store: s} }

func (r *PointsRepo) ExistsForDate(ctx context.Context, challengeID uuid.UUID, date time.Time) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byUser := r.store.dailyPoints[challengeID][date.Format(timeutil.DateLayout)]
	return len(byUser) > 0, nil
}

func (r *PointsRepo) Award(ctx context.Context, dp *points.DailyPoints) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := dp.Date.Format(timeutil.DateLayout)
	byDate, ok := r.store.dailyPoints[dp.ChallengeID]
	if !ok {
		byDate = make(map[string]map[uuid.UUID]*points.DailyPoints)
		r.store.dailyPoints[dp.ChallengeID] = byDate
	}
	byUser, ok := byDate[key]
	if !ok {
		byUser = make(map[uuid.UUID]*points.DailyPoints)
		byDate[key] = byUser
	}
	if _, exists := byUser[dp.UserID]; exists {
		return false, nil
	}
	copied := *dp
	byUser[dp.UserID] = &copied
	return true, nil
}

func (r *PointsRepo) ListForDate(ctx context.Context, challengeID uuid.UUID, date time.Time) ([]*points.DailyPoints, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*points.DailyPoints
	for _, dp := range r.store.dailyPoints[challengeID][date.Format(timeutil.DateLayout)] {
		copied := *dp
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Points > result[j].Points
	})
	return result, nil
}

func (r *PointsRepo) TotalsByUser(ctx context.Context, challengeID uuid.UUID) (map[uuid.UUID]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	totals := make(map[uuid.UUID]int)
	for _, byUser := range r.store.dailyPoints[challengeID] {
		for userID, dp := range byUser {
			totals[userID] += dp.Points
		}
	}
	return totals, nil
}
