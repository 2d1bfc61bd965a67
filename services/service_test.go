package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/clock"
	"stepRivalsAPI/internal/repository/memory"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/steps"
	"stepRivalsAPI/internal/types/user"
)

// fixture wires every service over one in-memory store with a frozen clock.
type fixture struct {
	store        *memory.Store
	clock        clock.Fixed
	users        *UserService
	steps        *StepService
	streaks      *StreakService
	challenges   *ChallengeService
	leaderboards *LeaderboardService
	cron         *CronService
}

func newFixture(now time.Time) *fixture {
	return newFixtureAt(memory.NewStore(), now)
}

// advance rebuilds the fixture's services around a later instant while keeping
// the store, simulating the passage of time between requests.
func (f *fixture) advance(now time.Time) *fixture {
	return newFixtureAt(f.store, now)
}

func newFixtureAt(store *memory.Store, now time.Time) *fixture {
	clk := clock.Fixed{Instant: now}

	streaks := NewStreakService(store.Goals(), store.Steps(), store.Badges(), store.Notifications(), clk)
	stepSvc := NewStepService(store.Steps(), store.Users(), streaks, clk)
	challengeSvc := NewChallengeService(
		store.Challenges(),
		store.Participants(),
		store.Steps(),
		store.DailyPoints(),
		store.Badges(),
		store.Notifications(),
		store.Leaderboard(),
		clk,
	)
	leaderboardSvc := NewLeaderboardService(
		store.Challenges(),
		store.Participants(),
		store.Steps(),
		store.DailyPoints(),
		store.Leaderboard(),
		clk,
	)
	userSvc := NewUserService(
		store.Users(),
		store.Sessions(),
		store.Goals(),
		store.Steps(),
		store.Badges(),
		store.Challenges(),
		clk,
		[]byte("test-secret"),
	)
	cronSvc := NewCronService(challengeSvc, clk)

	return &fixture{
		store:        store,
		clock:        clk,
		users:        userSvc,
		steps:        stepSvc,
		streaks:      streaks,
		challenges:   challengeSvc,
		leaderboards: leaderboardSvc,
		cron:         cronSvc,
	}
}

func (f *fixture) addUser(t *testing.T, username, timezone string) *user.User {
	t.Helper()
	now := f.clock.Now()
	u := &user.User{
		ID:           uuid.New(),
		Email:        username + "@example.com",
		Username:     username,
		PasswordHash: "x",
		Timezone:     timezone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := f.store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return u
}

func (f *fixture) addChallenge(t *testing.T, creator uuid.UUID, req *challenge.CreateRequest) *challenge.Challenge {
	t.Helper()
	c, err := f.challenges.Create(context.Background(), creator, req)
	if err != nil {
		t.Fatalf("create challenge: %v", err)
	}
	return c
}

func (f *fixture) join(t *testing.T, c *challenge.Challenge, userID uuid.UUID) {
	t.Helper()
	if _, err := f.challenges.JoinByInviteCode(context.Background(), userID, c.InviteCode); err != nil {
		t.Fatalf("join challenge: %v", err)
	}
}

// putSteps writes an entry straight into storage, bypassing the edit window,
// so tests can seed history.
func (f *fixture) putSteps(t *testing.T, userID uuid.UUID, date time.Time, count int) {
	t.Helper()
	now := f.clock.Now()
	err := f.store.Steps().Upsert(context.Background(), &steps.Entry{
		ID:        uuid.New(),
		UserID:    userID,
		Date:      date,
		StepCount: count,
		Source:    "manual",
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed steps: %v", err)
	}
}
