package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"stepRivalsAPI/internal/apperr"
	"stepRivalsAPI/internal/types/steps"
)

func TestUpsertStepsRespectsEditWindow(t *testing.T) {
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		now     time.Time
		date    string
		wantErr bool
	}{
		{"today in the morning", morning, "2026-03-10", false},
		{"yesterday in the morning", morning, "2026-03-09", false},
		{"two days ago", morning, "2026-03-08", true},
		{"yesterday after the cutover", afternoon, "2026-03-09", true},
		{"today after the cutover", afternoon, "2026-03-10", false},
		{"tomorrow", morning, "2026-03-11", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(tt.now)
			u := f.addUser(t, "walker", "UTC")

			_, err := f.steps.Upsert(context.Background(), u.ID, &steps.UpsertRequest{
				Date:      tt.date,
				StepCount: 5000,
			})
			if tt.wantErr {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("Upsert = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Errorf("Upsert: %v", err)
			}
		})
	}
}

func TestUpsertStepsUsesTheUsersTimezone(t *testing.T) {
	// 13:00 UTC is 08:00 in New York: yesterday is still open there even
	// though UTC is past its cutover.
	f := newFixture(time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC))
	u := f.addUser(t, "traveler", "America/New_York")

	if _, err := f.steps.Upsert(context.Background(), u.ID, &steps.UpsertRequest{
		Date:      "2026-03-09",
		StepCount: 4000,
	}); err != nil {
		t.Errorf("Upsert in user's local morning: %v", err)
	}
}

func TestUpsertStepsBounds(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	u := f.addUser(t, "walker", "UTC")
	ctx := context.Background()

	for _, count := range []int{-1, steps.MaxDailySteps + 1} {
		if _, err := f.steps.Upsert(ctx, u.ID, &steps.UpsertRequest{
			Date:      "2026-03-10",
			StepCount: count,
		}); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("Upsert(%d) = %v, want validation error", count, err)
		}
	}

	// Zero is a legitimate recorded value, distinct from no entry.
	entry, err := f.steps.Upsert(ctx, u.ID, &steps.UpsertRequest{Date: "2026-03-10", StepCount: 0})
	if err != nil {
		t.Fatalf("Upsert(0): %v", err)
	}
	if entry.StepCount != 0 {
		t.Errorf("StepCount = %d, want 0", entry.StepCount)
	}
}

func TestUpsertStepsOverwritesSameDay(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	u := f.addUser(t, "walker", "UTC")
	ctx := context.Background()

	if _, err := f.steps.Upsert(ctx, u.ID, &steps.UpsertRequest{Date: "2026-03-10", StepCount: 3000}); err != nil {
		t.Fatalf("first Upsert: %v", err)
	}
	if _, err := f.steps.Upsert(ctx, u.ID, &steps.UpsertRequest{Date: "2026-03-10", StepCount: 8000, Source: "healthkit"}); err != nil {
		t.Fatalf("second Upsert: %v", err)
	}

	entries, err := f.steps.Recent(ctx, u.ID, 7)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want the single overwritten row", len(entries))
	}
	if entries[0].StepCount != 8000 || entries[0].Source != "healthkit" {
		t.Errorf("entry = %+v, want the second write", entries[0])
	}
}

func TestUpsertStepsDefaultsSource(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	u := f.addUser(t, "walker", "UTC")

	entry, err := f.steps.Upsert(context.Background(), u.ID, &steps.UpsertRequest{Date: "2026-03-10", StepCount: 100})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if entry.Source != "manual" {
		t.Errorf("Source = %q, want manual", entry.Source)
	}
}

func TestEditWindow(t *testing.T) {
	f := newFixture(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	u := f.addUser(t, "walker", "UTC")

	cutoff, lastFinalized, err := f.steps.EditWindow(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("EditWindow: %v", err)
	}
	if cutoff.Format("2006-01-02") != "2026-03-09" {
		t.Errorf("cutoff = %s, want 2026-03-09", cutoff.Format("2006-01-02"))
	}
	if lastFinalized.Format("2006-01-02") != "2026-03-08" {
		t.Errorf("lastFinalized = %s, want 2026-03-08", lastFinalized.Format("2006-01-02"))
	}
}
