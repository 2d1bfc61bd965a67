package timeutil

import (
	"testing"
	"time"
)

func TestEditCutoffDate(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		now      time.Time
		want     time.Time
	}{
		{
			name:     "before noon yesterday is still editable",
			timezone: "UTC",
			now:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			want:     Date(2026, 3, 9),
		},
		{
			name:     "at noon the cutoff moves to today",
			timezone: "UTC",
			now:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
			want:     Date(2026, 3, 10),
		},
		{
			name:     "cutoff follows the local clock not UTC",
			timezone: "Asia/Tokyo",
			now:      time.Date(2026, 3, 10, 5, 0, 0, 0, time.UTC), // 14:00 in Tokyo
			want:     Date(2026, 3, 10),
		},
		{
			name:     "local morning in a negative offset zone",
			timezone: "America/New_York",
			now:      time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC), // 10:00 in New York (EDT)
			want:     Date(2026, 3, 9),
		},
		{
			name:     "month boundary",
			timezone: "UTC",
			now:      time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
			want:     Date(2026, 2, 28),
		},
		{
			name:     "year boundary",
			timezone: "UTC",
			now:      time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC),
			want:     Date(2025, 12, 31),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EditCutoffDate(tt.timezone, tt.now)
			if err != nil {
				t.Fatalf("EditCutoffDate: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("EditCutoffDate = %s, want %s", got.Format(DateLayout), tt.want.Format(DateLayout))
			}
		})
	}

	if _, err := EditCutoffDate("Not/AZone", time.Now()); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestLastFinalizedDate(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	got, err := LastFinalizedDate("UTC", now)
	if err != nil {
		t.Fatalf("LastFinalizedDate: %v", err)
	}
	// Cutoff is yesterday, so the day before that is the last settled one.
	if want := Date(2026, 3, 8); !got.Equal(want) {
		t.Errorf("LastFinalizedDate = %s, want %s", got.Format(DateLayout), want.Format(DateLayout))
	}
}

func TestIsEditable(t *testing.T) {
	morning := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	afternoon := time.Date(2026, 3, 10, 13, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		date time.Time
		now  time.Time
		want bool
	}{
		{"today in the morning", Date(2026, 3, 10), morning, true},
		{"yesterday in the morning", Date(2026, 3, 9), morning, true},
		{"two days ago in the morning", Date(2026, 3, 8), morning, false},
		{"today in the afternoon", Date(2026, 3, 10), afternoon, true},
		{"yesterday in the afternoon", Date(2026, 3, 9), afternoon, false},
		{"tomorrow is never editable", Date(2026, 3, 11), morning, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsEditable(tt.date, "UTC", tt.now)
			if err != nil {
				t.Fatalf("IsEditable: %v", err)
			}
			if got != tt.want {
				t.Errorf("IsEditable(%s) = %v, want %v", tt.date.Format(DateLayout), got, tt.want)
			}
		})
	}
}

func TestDateInAcrossDSTTransition(t *testing.T) {
	// US DST starts 2026-03-08 at 02:00 local; the calendar still advances one
	// day at a time.
	before, err := DateIn("America/New_York", time.Date(2026, 3, 8, 6, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DateIn: %v", err)
	}
	after, err := DateIn("America/New_York", time.Date(2026, 3, 9, 6, 30, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("DateIn: %v", err)
	}
	if !before.Equal(Date(2026, 3, 8)) || !after.Equal(Date(2026, 3, 9)) {
		t.Errorf("DateIn across DST = %s, %s", before.Format(DateLayout), after.Format(DateLayout))
	}
}

func TestDatesBetween(t *testing.T) {
	dates := DatesBetween(Date(2026, 2, 27), Date(2026, 3, 2))
	if len(dates) != 4 {
		t.Fatalf("DatesBetween returned %d dates, want 4", len(dates))
	}
	if !dates[0].Equal(Date(2026, 2, 27)) || !dates[3].Equal(Date(2026, 3, 2)) {
		t.Errorf("DatesBetween endpoints = %s .. %s", dates[0].Format(DateLayout), dates[3].Format(DateLayout))
	}

	if got := DatesBetween(Date(2026, 3, 2), Date(2026, 3, 1)); got != nil {
		t.Errorf("DatesBetween with start after end = %v, want nil", got)
	}

	single := DatesBetween(Date(2026, 3, 1), Date(2026, 3, 1))
	if len(single) != 1 {
		t.Errorf("DatesBetween single day returned %d dates", len(single))
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		date time.Time
		want time.Time
	}{
		{Date(2026, 3, 9), Date(2026, 3, 9)},  // Monday
		{Date(2026, 3, 11), Date(2026, 3, 9)}, // Wednesday
		{Date(2026, 3, 15), Date(2026, 3, 9)}, // Sunday
	}
	for _, tt := range tests {
		if got := WeekStart(tt.date); !got.Equal(tt.want) {
			t.Errorf("WeekStart(%s) = %s, want %s",
				tt.date.Format(DateLayout), got.Format(DateLayout), tt.want.Format(DateLayout))
		}
	}
}

func TestParseDate(t *testing.T) {
	got, err := ParseDate("2026-03-10")
	if err != nil {
		t.Fatalf("ParseDate: %v", err)
	}
	if !got.Equal(Date(2026, 3, 10)) {
		t.Errorf("ParseDate = %v", got)
	}

	for _, bad := range []string{"", "10-03-2026", "2026-13-01", "not a date"} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q) should fail", bad)
		}
	}
}

func TestValidTimezone(t *testing.T) {
	if !ValidTimezone("Europe/Sofia") {
		t.Error("Europe/Sofia should be valid")
	}
	if ValidTimezone("") || ValidTimezone("Mars/Olympus") {
		t.Error("bogus timezones should be invalid")
	}
}
