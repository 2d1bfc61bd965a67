// Package memory is an in-process implementation of the repository contracts,
// used by unit tests and local development. A single Store satisfies every
// repository interface over shared maps guarded by one mutex.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/types/badge"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/goals"
	"stepRivalsAPI/internal/types/notification"
	"stepRivalsAPI/internal/types/points"
	"stepRivalsAPI/internal/types/steps"
	"stepRivalsAPI/internal/types/user"
)

type Store struct {
	mu sync.RWMutex

	users        map[uuid.UUID]*user.User
	sessions     map[string]*user.Session
	challenges   map[uuid.UUID]*challenge.Challenge
	participants map[uuid.UUID][]*challenge.Participant
	stepEntries  map[uuid.UUID]map[string]*steps.Entry
	dailyPoints  map[uuid.UUID]map[string]map[uuid.UUID]*points.DailyPoints
	badges       map[uuid.UUID]map[badge.Type]*badge.UserBadge
	notes        []*notification.Notification
	userGoals    map[uuid.UUID]*goals.UserGoals
}

func NewStore() *Store {
	return &Store{
		users:        make(map[uuid.UUID]*user.User),
		sessions:     make(map[string]*user.Session),
		challenges:   make(map[uuid.UUID]*challenge.Challenge),
		participants: make(map[uuid.UUID][]*challenge.Participant),
		stepEntries:  make(map[uuid.UUID]map[string]*steps.Entry),
		dailyPoints:  make(map[uuid.UUID]map[string]map[uuid.UUID]*points.DailyPoints),
		badges:       make(map[uuid.UUID]map[badge.Type]*badge.UserBadge),
		userGoals:    make(map[uuid.UUID]*goals.UserGoals),
	}
}
