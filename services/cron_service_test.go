package services

import (
	"context"
	"testing"
	"time"

	"stepRivalsAPI/internal/timeutil"
	"stepRivalsAPI/internal/types/challenge"
)

// One pass activates, scores and finalizes in order; a second identical pass
// must be a complete no-op.
func TestRunPassIsIdempotent(t *testing.T) {
	f := newFixture(time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC))
	anna := f.addUser(t, "anna", "UTC")
	boris := f.addUser(t, "boris", "UTC")

	c := f.addChallenge(t, anna.ID, &challenge.CreateRequest{
		Title:     "Week one",
		StartDate: "2026-03-01",
		EndDate:   "2026-03-07",
		Mode:      challenge.ModeDailyWinner,
		Timezone:  "UTC",
	})
	f.join(t, c, boris.ID)

	ctx := context.Background()
	for d := 1; d <= 7; d++ {
		f.putSteps(t, anna.ID, timeutil.Date(2026, 3, d), 8000)
		f.putSteps(t, boris.ID, timeutil.Date(2026, 3, d), 6000)
	}

	// The challenge ended yesterday; the afternoon pass settles everything.
	f = f.advance(time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC))

	first, err := f.cron.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if !first.Success {
		t.Errorf("first pass Success = false, error %q", first.Error)
	}
	if first.Activated != 1 {
		t.Errorf("Activated = %d, want 1", first.Activated)
	}
	// Only 03-07 is yesterday relative to this pass; earlier days were missed
	// while no pass ran and stay unscored.
	if first.DaysScored != 1 {
		t.Errorf("DaysScored = %d, want 1", first.DaysScored)
	}
	if first.Finalized != 1 {
		t.Errorf("Finalized = %d, want 1", first.Finalized)
	}

	second, err := f.cron.RunPass(ctx)
	if err != nil {
		t.Fatalf("RunPass rerun: %v", err)
	}
	if second.Activated != 0 || second.DaysScored != 0 || second.Finalized != 0 {
		t.Errorf("second pass = %+v, want all zeros", second)
	}

	got, err := f.store.Challenges().GetByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != challenge.StatusCompleted {
		t.Errorf("Status = %s, want completed", got.Status)
	}
}

// A pass that both activates and finalizes nothing still succeeds.
func TestRunPassEmpty(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 8, 13, 0, 0, 0, time.UTC))
	summary, err := f.cron.RunPass(context.Background())
	if err != nil {
		t.Fatalf("RunPass: %v", err)
	}
	if !summary.Success || summary.Activated != 0 || summary.DaysScored != 0 || summary.Finalized != 0 {
		t.Errorf("summary = %+v", summary)
	}
}
