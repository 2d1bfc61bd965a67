package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/repository"
	"stepRivalsAPI/internal/types/challenge"
)

type ChallengeRepo struct{ store *Store }

func (s *Store) Challenges() *ChallengeRepo { return &ChallengeRepo{store: s} }

func (r *ChallengeRepo) Create(ctx context.Context, c *challenge.Challenge) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.challenges {
		if strings.EqualFold(existing.InviteCode, c.InviteCode) {
			return apperr.ErrConflict
		}
	}
	copied := *c
	r.store.challenges[c.ID] = &copied
	return nil
}

func (r *ChallengeRepo) GetByID(ctx context.Context, id uuid.UUID) (*challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	c, ok := r.store.challenges[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *ChallengeRepo) GetByInviteCode(ctx context.Context, code string) (*challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.challenges {
		if strings.EqualFold(c.InviteCode, code) {
			copied := *c
			return &copied, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (r *ChallengeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to challenge.Status) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	c, ok := r.store.challenges[id]
	if !ok {
		return false, apperr.ErrNotFound
	}
	if c.Status != from {
		return false, nil
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	return true, nil
}

func (r *ChallengeRepo) ListByStatus(ctx context.Context, status challenge.Status) ([]*challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*challenge.Challenge
	for _, c := range r.store.challenges {
		if c.Status == status {
			copied := *c
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *ChallengeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*challenge.Challenge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*challenge.Challenge
	for challengeID, members := range r.store.participants {
		for _, p := range members {
			if p.UserID == userID {
				if c, ok := r.store.challenges[challengeID]; ok {
					copied := *c
					result = append(result, &copied)
				}
				break
			}
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *ChallengeRepo) InviteCodeExists(ctx context.Context, code string) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, c := range r.store.challenges {
		if strings.EqualFold(c.InviteCode, code) {
			return true, nil
		}
	}
	return false, nil
}

type ParticipantRepo struct{ store *Store }

func (s *Store) Participants() *ParticipantRepo { return &ParticipantRepo{store: s} }

func (r *ParticipantRepo) Join(ctx context.Context, challengeID, userID uuid.UUID, joinedAt time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, p := range r.store.participants[challengeID] {
		if p.UserID == userID {
			return false, nil
		}
	}
	r.store.participants[challengeID] = append(r.store.participants[challengeID], &challenge.Participant{
		ID:          uuid.New(),
		ChallengeID: challengeID,
		UserID:      userID,
		JoinedAt:    joinedAt,
	})
	return true, nil
}

func (r *ParticipantRepo) IsParticipant(ctx context.Context, challengeID, userID uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, p := range r.store.participants[challengeID] {
		if p.UserID == userID {
			return true, nil
		}
	}
	return false, nil
}

func (r *ParticipantRepo) List(ctx context.Context, challengeID uuid.UUID) ([]repository.ParticipantInfo, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []repository.ParticipantInfo
	for _, p := range r.store.participants[challengeID] {
		info := repository.ParticipantInfo{
			UserID:   p.UserID,
			JoinedAt: p.JoinedAt,
		}
		if u, ok := r.store.users[p.UserID]; ok {
			info.Username = u.Username
			info.ImageURL = u.ImageURL
		}
		result = append(result, info)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].JoinedAt.Equal(result[j].JoinedAt) {
			return result[i].JoinedAt.Before(result[j].JoinedAt)
		}
		return result[i].UserID.String() < result[j].UserID.String()
	})
	return result, nil
}
