package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/types/badge"
	"stepRivalsAPI/internal/types/notification"
)

type BadgeRepo struct{ store *Store }

func (s *Store) Badges() *BadgeRepo { return &BadgeRepo{store: s} }

func (r *BadgeRepo) Award(ctx context.Context, b *badge.UserBadge) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	held, ok := r.store.badges[b.UserID]
	if !ok {
		held = make(map[badge.Type]*badge.UserBadge)
		r.store.badges[b.UserID] = held
	}
	if _, exists := held[b.Type]; exists {
		return false, nil
	}
	copied := *b
	held[b.Type] = &copied
	return true, nil
}

func (r *BadgeRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*badge.UserBadge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*badge.UserBadge
	for _, b := range r.store.badges[userID] {
		copied := *b
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].AwardedAt.Before(result[j].AwardedAt)
	})
	return result, nil
}

func (r *BadgeRepo) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return len(r.store.badges[userID]), nil
}

type NotificationRepo struct{ store *Store }

func (s *Store) Notifications() *NotificationRepo { return &NotificationRepo{store: s} }

func (r *NotificationRepo) Create(ctx context.Context, n *notification.Notification) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	copied := *n
	r.store.notes = append(r.store.notes, &copied)
	return nil
}

func (r *NotificationRepo) ListForUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]*notification.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*notification.Notification
	for _, n := range r.store.notes {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		copied := *n
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *NotificationRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, n := range r.store.notes {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (r *NotificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, n := range r.store.notes {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return true, nil
		}
	}
	return false, nil
}

func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, n := range r.store.notes {
		if n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}
