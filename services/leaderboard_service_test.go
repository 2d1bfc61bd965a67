package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/challenge"
	"stepRivalsAPI/internal/types/leaderboard"
)

// setupBoard builds a cumulative challenge running 2026-03-01..2026-03-20 with
// two members, steps on a settled day and on a still-pending day, viewed at
// 2026-03-10 09:00 UTC (cutoff = 2026-03-09).
func setupBoard(t *testing.T) (*fixture, *challenge.Challenge, uuid.UUID, uuid.UUID) {
	t.Helper()
	f := newFixture(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	anna := f.addUser(t, "anna", "UTC")
	boris := f.addUser(t, "boris", "UTC")

	c := f.addChallenge(t, anna.ID, &challenge.CreateRequest{
		Title:     "March",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-20",
		Mode:      challenge.ModeCumulative,
		Timezone:  "UTC",
	})
	f.join(t, c, boris.ID)

	// Settled days (before the 03-09 cutoff).
	f.putSteps(t, anna.ID, timeutil.Date(2026, 3, 7), 4000)
	f.putSteps(t, anna.ID, timeutil.Date(2026, 3, 8), 6000)
	f.putSteps(t, boris.ID, timeutil.Date(2026, 3, 8), 9000)
	// Pending days (editable as of the viewing instant).
	f.putSteps(t, anna.ID, timeutil.Date(2026, 3, 9), 5000)
	f.putSteps(t, boris.ID, timeutil.Date(2026, 3, 10), 7000)

	f = f.advance(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	if _, err := f.challenges.ActivatePending(context.Background()); err != nil {
		t.Fatalf("ActivatePending: %v", err)
	}
	return f, c, anna.ID, boris.ID
}

func TestLeaderboardViewerSeesOwnPendingSteps(t *testing.T) {
	f, c, anna, boris := setupBoard(t)
	ctx := context.Background()

	board, err := f.leaderboards.Get(ctx, c.ID, anna)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if !board.EditCutoffDate.Equal(timeutil.Date(2026, 3, 9)) {
		t.Errorf("EditCutoffDate = %s", board.EditCutoffDate.Format(timeutil.DateLayout))
	}

	byUser := make(map[uuid.UUID]*leaderboard.Entry)
	for _, e := range board.Entries {
		byUser[e.UserID] = e
	}

	self := byUser[anna]
	if self.ConfirmedSteps != 10000 {
		t.Errorf("own ConfirmedSteps = %d, want 10000", self.ConfirmedSteps)
	}
	if self.PendingSteps == nil || *self.PendingSteps != 5000 {
		t.Errorf("own PendingSteps = %v, want 5000", self.PendingSteps)
	}
	if self.TotalSteps != 15000 {
		t.Errorf("own TotalSteps = %d, want confirmed+pending", self.TotalSteps)
	}
	if !self.IsViewer {
		t.Error("viewer row must be flagged")
	}

	rival := byUser[boris]
	if rival.PendingSteps != nil {
		t.Errorf("rival PendingSteps = %v, want hidden", rival.PendingSteps)
	}
	if rival.TotalSteps != 9000 {
		t.Errorf("rival TotalSteps = %d, want confirmed-only 9000", rival.TotalSteps)
	}
}

func TestLeaderboardRankIsViewerIndependent(t *testing.T) {
	f, c, anna, boris := setupBoard(t)
	ctx := context.Background()

	forAnna, err := f.leaderboards.Get(ctx, c.ID, anna)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	forBoris, err := f.leaderboards.Get(ctx, c.ID, boris)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if len(forAnna.Entries) != len(forBoris.Entries) {
		t.Fatalf("entry counts differ: %d vs %d", len(forAnna.Entries), len(forBoris.Entries))
	}
	for i := range forAnna.Entries {
		if forAnna.Entries[i].UserID != forBoris.Entries[i].UserID {
			t.Fatalf("rank order differs between viewers at position %d", i)
		}
	}
	// Anna leads on confirmed steps even though Boris has more total walked.
	if forAnna.Entries[0].UserID != anna {
		t.Errorf("rank 1 = %s, want the confirmed-steps leader", forAnna.Entries[0].Username)
	}
}

func TestLeaderboardLastFinalizedSnapshot(t *testing.T) {
	f, c, anna, boris := setupBoard(t)
	ctx := context.Background()

	board, err := f.leaderboards.Get(ctx, c.ID, boris)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if board.LastFinalizedDate == nil || !board.LastFinalizedDate.Equal(timeutil.Date(2026, 3, 8)) {
		t.Fatalf("LastFinalizedDate = %v, want 2026-03-08", board.LastFinalizedDate)
	}
	if len(board.LastFinalized) != 2 {
		t.Fatalf("snapshot rows = %d, want 2", len(board.LastFinalized))
	}
	// March 8: boris 9000, anna 6000 for every viewer.
	if board.LastFinalized[0].UserID != boris || board.LastFinalized[0].StepCount != 9000 {
		t.Errorf("snapshot leader = %+v", board.LastFinalized[0])
	}
	if board.LastFinalized[1].UserID != anna || board.LastFinalized[1].StepCount != 6000 {
		t.Errorf("snapshot runner-up = %+v", board.LastFinalized[1])
	}
}

func TestLeaderboardNoFinalizedDateBeforeChallengeData(t *testing.T) {
	f := newFixture(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	anna := f.addUser(t, "anna", "UTC")
	c := f.addChallenge(t, anna.ID, &challenge.CreateRequest{
		Title:     "Fresh",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-20",
		Mode:      challenge.ModeCumulative,
		Timezone:  "UTC",
	})

	// Viewing on the first morning: the cutoff is 02-28, before the start, so
	// nothing is finalized yet.
	f = f.advance(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC))
	board, err := f.leaderboards.Get(context.Background(), c.ID, anna.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if board.LastFinalizedDate != nil {
		t.Errorf("LastFinalizedDate = %v, want nil on day one", board.LastFinalizedDate)
	}
	if len(board.LastFinalized) != 0 {
		t.Errorf("snapshot = %v, want empty", board.LastFinalized)
	}
}

func TestLeaderboardAccessControl(t *testing.T) {
	f, c, _, _ := setupBoard(t)
	outsider := f.addUser(t, "outsider", "UTC")
	ctx := context.Background()

	if _, err := f.leaderboards.Get(ctx, c.ID, outsider.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("outsider Get = %v, want forbidden", err)
	}
	if _, err := f.leaderboards.Get(ctx, uuid.New(), outsider.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown challenge = %v, want not found", err)
	}
}

func TestBreakdownHidesPendingRivalSteps(t *testing.T) {
	f, c, anna, boris := setupBoard(t)
	ctx := context.Background()

	breakdown, err := f.leaderboards.Breakdown(ctx, c.ID, anna)
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}

	// 03-01 through 03-10, newest first.
	if len(breakdown.Days) != 10 {
		t.Fatalf("days = %d, want 10", len(breakdown.Days))
	}
	if !breakdown.Days[0].Date.Equal(timeutil.Date(2026, 3, 10)) {
		t.Errorf("first day = %s, want newest", breakdown.Days[0].Date.Format(timeutil.DateLayout))
	}

	byDate := make(map[string]*leaderboard.Day)
	for _, d := range breakdown.Days {
		byDate[d.Date.Format(timeutil.DateLayout)] = d
	}

	pendingDay := byDate["2026-03-10"]
	if pendingDay.Status != leaderboard.DayPending {
		t.Errorf("03-10 status = %s, want pending", pendingDay.Status)
	}
	for _, e := range pendingDay.Entries {
		switch e.UserID {
		case anna:
			if e.Steps == nil {
				t.Error("viewer's own pending steps must be visible")
			}
		case boris:
			if e.Steps != nil {
				t.Errorf("rival pending steps = %d, want hidden", *e.Steps)
			}
		}
	}

	finalizedDay := byDate["2026-03-08"]
	if finalizedDay.Status != leaderboard.DayFinalized {
		t.Errorf("03-08 status = %s, want finalized", finalizedDay.Status)
	}
	for _, e := range finalizedDay.Entries {
		if e.Steps == nil {
			t.Errorf("finalized steps for %s must be visible", e.Username)
		}
	}
	// Rank on the finalized day follows the counts.
	if finalizedDay.Entries[0].UserID != boris {
		t.Errorf("03-08 rank 1 = %s, want boris", finalizedDay.Entries[0].Username)
	}
}

func TestBreakdownShowsPointsOnScoredDays(t *testing.T) {
	f := newFixture(time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC))
	anna := f.addUser(t, "anna", "UTC")
	boris := f.addUser(t, "boris", "UTC")

	c := f.addChallenge(t, anna.ID, dailyWinnerRequest())
	f.join(t, c, boris.ID)

	ctx := context.Background()
	f.putSteps(t, anna.ID, timeutil.Date(2026, 3, 9), 8000)
	f.putSteps(t, boris.ID, timeutil.Date(2026, 3, 9), 6000)

	f = f.advance(time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC))
	if _, err := f.challenges.ActivatePending(ctx); err != nil {
		t.Fatalf("ActivatePending: %v", err)
	}
	if _, err := f.challenges.ScoreFinalizedDays(ctx); err != nil {
		t.Fatalf("ScoreFinalizedDays: %v", err)
	}

	breakdown, err := f.leaderboards.Breakdown(ctx, c.ID, boris.ID)
	if err != nil {
		t.Fatalf("Breakdown: %v", err)
	}
	var scoredDay *leaderboard.Day
	for _, d := range breakdown.Days {
		if d.Date.Equal(timeutil.Date(2026, 3, 9)) {
			scoredDay = d
		}
	}
	if scoredDay == nil {
		t.Fatal("missing 2026-03-09 in breakdown")
	}
	for _, e := range scoredDay.Entries {
		switch e.UserID {
		case anna.ID:
			if e.Points != 3 {
				t.Errorf("anna points = %d, want 3", e.Points)
			}
		case boris.ID:
			if e.Points != 2 {
				t.Errorf("boris points = %d, want 2", e.Points)
			}
		}
	}
}
