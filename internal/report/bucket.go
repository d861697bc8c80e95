package report

import (
	"fmt"
	"time"
)

// Range is a canonical UTC reporting window: From aligned to 00:00:00.000,
// To aligned to 23:59:59.999 of their calendar days.
type Range struct {
	From time.Time
	To   time.Time
}

// NormalizeRange converts an arbitrary start/end pair into a canonical
// Range, swapping the endpoints when start is after end.
func NormalizeRange(start time.Time, end time.Time) Range {
	start, end = start.UTC(), end.UTC()
	if start.After(end) {
		start, end = end, start
	}
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999_000_000, time.UTC)
	return Range{From: from, To: to}
}

// DayRange is the canonical single-day window containing day.
func DayRange(day time.Time) Range {
	return NormalizeRange(day, day)
}

// LastNWeeks is the canonical window covering the n*7 calendar days
// ending at now.
func LastNWeeks(n int, now time.Time) Range {
	if n < 1 {
		n = 1
	}
	end := now.UTC()
	start := end.AddDate(0, 0, -7*n+1)
	return NormalizeRange(start, end)
}

func (r Range) Contains(t time.Time) bool {
	t = t.UTC()
	return !t.Before(r.From) && !t.After(r.To)
}

// Bucket key printers. Hour keys are "HH:00", day keys YYYY-MM-DD,
// week keys YYYY-Www per the ISO-8601 rule (the week's Thursday decides
// the year), month keys YYYY-MM.

func HourKey(t time.Time) string {
	return t.UTC().Format("15:00")
}

func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func WeekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

func MonthKey(t time.Time) string {
	return t.UTC().Format("2006-01")
}

const (
	PeriodDaily   = "daily"
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

func IsPeriod(period string) bool {
	switch period {
	case PeriodDaily, PeriodWeekly, PeriodMonthly:
		return true
	default:
		return false
	}
}

// PeriodKey maps a timestamp to its bucket key for the given granularity.
func PeriodKey(t time.Time, period string) string {
	switch period {
	case PeriodWeekly:
		return WeekKey(t)
	case PeriodMonthly:
		return MonthKey(t)
	default:
		return DayKey(t)
	}
}

// HourKeys returns all 24 hour keys of a day, in order.
func HourKeys() []string {
	keys := make([]string, 0, 24)
	for hour := 0; hour < 24; hour++ {
		keys = append(keys, fmt.Sprintf("%02d:00", hour))
	}
	return keys
}

// DayKeys returns every day key in r, in order. Downstream consumers rely
// on every bucket being present even when no record falls into it.
func DayKeys(r Range) []string {
	keys := make([]string, 0, 32)
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		keys = append(keys, DayKey(d))
	}
	return keys
}

// WeekKeys returns every ISO week key touched by r, in order.
func WeekKeys(r Range) []string {
	keys := make([]string, 0, 16)
	last := ""
	for d := r.From; !d.After(r.To); d = d.AddDate(0, 0, 1) {
		key := WeekKey(d)
		if key != last {
			keys = append(keys, key)
			last = key
		}
	}
	return keys
}

// MonthKeys returns every month key touched by r, in order.
func MonthKeys(r Range) []string {
	keys := make([]string, 0, 12)
	for m := time.Date(r.From.Year(), r.From.Month(), 1, 0, 0, 0, 0, time.UTC); !m.After(r.To); m = m.AddDate(0, 1, 0) {
		keys = append(keys, MonthKey(m))
	}
	return keys
}

// PeriodKeys enumerates all bucket keys of r for the given granularity.
func PeriodKeys(r Range, period string) []string {
	switch period {
	case PeriodWeekly:
		return WeekKeys(r)
	case PeriodMonthly:
		return MonthKeys(r)
	default:
		return DayKeys(r)
	}
}
