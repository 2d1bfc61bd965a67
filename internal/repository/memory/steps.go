package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/steps"
)

type StepRepo struct{ store *Store }

func (s *Store) Steps() *StepRepo { return &StepRepo{store: s} }

func (r *StepRepo) Upsert(ctx context.Context, entry *steps.Entry) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := entry.Date.Format(timeutil.DateLayout)
	byDate, ok := r.store.stepEntries[entry.UserID]
	if !ok {
		byDate = make(map[string]*steps.Entry)
		r.store.stepEntries[entry.UserID] = byDate
	}
	copied := *entry
	if existing, ok := byDate[key]; ok {
		copied.ID = existing.ID
		copied.CreatedAt = existing.CreatedAt
	}
	byDate[key] = &copied
	return nil
}

func (r *StepRepo) Get(ctx context.Context, userID uuid.UUID, date time.Time) (*steps.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	entry, ok := r.store.stepEntries[userID][date.Format(timeutil.DateLayout)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *entry
	return &copied, nil
}

func (r *StepRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*steps.Entry, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	since = timeutil.Normalize(since)
	var result []*steps.Entry
	for _, entry := range r.store.stepEntries[userID] {
		if !entry.Date.Before(since) {
			copied := *entry
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Date.After(result[j].Date)
	})
	return result, nil
}

func (r *StepRepo) SumRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	start = timeutil.Normalize(start)
	end = timeutil.Normalize(end)
	total := 0
	for _, entry := range r.store.stepEntries[userID] {
		if !entry.Date.Before(start) && !entry.Date.After(end) {
			total += entry.StepCount
		}
	}
	return total, nil
}

func (r *StepRepo) StepsForDate(ctx context.Context, userIDs []uuid.UUID, date time.Time) (map[uuid.UUID]int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	key := date.Format(timeutil.DateLayout)
	result := make(map[uuid.UUID]int)
	for _, userID := range userIDs {
		if entry, ok := r.store.stepEntries[userID][key]; ok {
			result[userID] = entry.StepCount
		}
	}
	return result, nil
}
