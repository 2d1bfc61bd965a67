package timeutil

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// EditCutoverHour is the local hour at which yesterday stops being editable.
const EditCutoverHour = 12

// Date builds a calendar date: midnight UTC with no time-of-day component.
// All date arithmetic in the engine works on these normalized values.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Normalize strips the time-of-day and location from a timestamp, keeping the
// calendar day it already denotes.
func Normalize(value time.Time) time.Time {
	year, month, day := value.Date()
	return Date(year, month, day)
}

// ParseDate parses a YYYY-MM-DD string into a normalized calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return Normalize(parsed), nil
}

// DateIn returns the calendar date at the given instant in the given IANA
// timezone.
func DateIn(timezone string, instant time.Time) (time.Time, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	year, month, day := instant.In(location).Date()
	return Date(year, month, day), nil
}

// HourIn returns the local hour of day (0-23) at the given instant.
func HourIn(timezone string, instant time.Time) (int, error) {
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return 0, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return instant.In(location).Hour(), nil
}

// YesterdayIn returns the previous calendar date in the given timezone.
// AddDate borrows across month and year boundaries.
func YesterdayIn(timezone string, instant time.Time) (time.Time, error) {
	today, err := DateIn(timezone, instant)
	if err != nil {
		return time.Time{}, err
	}
	return today.AddDate(0, 0, -1), nil
}

// DatesBetween returns the ordered, inclusive sequence of calendar dates from
// start through end. Returns nil when start is after end.
func DatesBetween(start, end time.Time) []time.Time {
	start = Normalize(start)
	end = Normalize(end)

	var dates []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}
	return dates
}

// WeekStart returns the Monday that starts the week containing the date.
func WeekStart(date time.Time) time.Time {
	date = Normalize(date)
	offset := int(date.Weekday()) - int(time.Monday)
	if offset < 0 {
		offset += 7
	}
	return date.AddDate(0, 0, -offset)
}

// EditCutoffDate returns the earliest date still editable as of now in the
// given timezone: yesterday while the local hour is before the cutover, today
// afterwards. The write path and the read path share this one computation so
// they can never disagree on what is still pending.
func EditCutoffDate(timezone string, now time.Time) (time.Time, error) {
	today, err := DateIn(timezone, now)
	if err != nil {
		return time.Time{}, err
	}
	hour, err := HourIn(timezone, now)
	if err != nil {
		return time.Time{}, err
	}
	if hour < EditCutoverHour {
		return today.AddDate(0, 0, -1), nil
	}
	return today, nil
}

// LastFinalizedDate returns the most recent date guaranteed to no longer
// change: the edit cutoff minus one day.
func LastFinalizedDate(timezone string, now time.Time) (time.Time, error) {
	cutoff, err := EditCutoffDate(timezone, now)
	if err != nil {
		return time.Time{}, err
	}
	return cutoff.AddDate(0, 0, -1), nil
}

// IsEditable reports whether a step entry for the given date may still be
// written as of now: on or after the edit cutoff, and not in the future.
func IsEditable(date time.Time, timezone string, now time.Time) (bool, error) {
	cutoff, err := EditCutoffDate(timezone, now)
	if err != nil {
		return false, err
	}
	today, err := DateIn(timezone, now)
	if err != nil {
		return false, err
	}
	date = Normalize(date)
	return !date.Before(cutoff) && !date.After(today), nil
}

// ValidTimezone reports whether the name resolves as an IANA timezone.
func ValidTimezone(timezone string) bool {
	if timezone == "" {
		return false
	}
	_, err := time.LoadLocation(timezone)
	return err == nil
}
