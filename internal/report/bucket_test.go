package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeRangeSwapsAndAligns(t *testing.T) {
	start := time.Date(2026, 3, 10, 17, 45, 12, 0, time.UTC)
	end := time.Date(2026, 3, 2, 3, 0, 0, 0, time.UTC)

	r := NormalizeRange(start, end)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), r.From)
	assert.Equal(t, time.Date(2026, 3, 10, 23, 59, 59, 999_000_000, time.UTC), r.To)
}

func TestDayRangeContainsWholeDayOnly(t *testing.T) {
	r := DayRange(time.Date(2026, 5, 14, 13, 30, 0, 0, time.UTC))

	assert.True(t, r.Contains(time.Date(2026, 5, 14, 0, 0, 0, 0, time.UTC)))
	assert.True(t, r.Contains(time.Date(2026, 5, 14, 23, 59, 59, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)))
	assert.False(t, r.Contains(time.Date(2026, 5, 13, 23, 59, 59, 0, time.UTC)))
}

func TestHourKeysComplete(t *testing.T) {
	keys := HourKeys()

	require.Len(t, keys, 24)
	assert.Equal(t, "00:00", keys[0])
	assert.Equal(t, "09:00", keys[9])
	assert.Equal(t, "23:00", keys[23])
}

func TestDayKeysEnumerateRange(t *testing.T) {
	r := NormalizeRange(
		time.Date(2026, 1, 30, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC),
	)

	keys := DayKeys(r)

	assert.Equal(t, []string{"2026-01-30", "2026-01-31", "2026-02-01", "2026-02-02"}, keys)
}

func TestWeekKeyFollowsISORule(t *testing.T) {
	// 2026-01-01 falls in ISO week 2026-W01; 2027-01-01 falls in 2026-W53.
	assert.Equal(t, "2026-W01", WeekKey(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2026-W53", WeekKey(time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)))
}

func TestWeekKeysDeduplicateConsecutiveDays(t *testing.T) {
	r := NormalizeRange(
		time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), // Monday
		time.Date(2026, 6, 14, 0, 0, 0, 0, time.UTC),
	)

	keys := WeekKeys(r)

	assert.Equal(t, []string{"2026-W23", "2026-W24"}, keys)
}

func TestMonthKeysSpanRange(t *testing.T) {
	r := NormalizeRange(
		time.Date(2025, 11, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC),
	)

	keys := MonthKeys(r)

	assert.Equal(t, []string{"2025-11", "2025-12", "2026-01", "2026-02"}, keys)
}

func TestLastNWeeksCoversExactWindow(t *testing.T) {
	now := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)

	r := LastNWeeks(2, now)

	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), r.From)
	assert.Len(t, DayKeys(r), 14)
}

func TestPeriodKeyDispatch(t *testing.T) {
	ts := time.Date(2026, 4, 8, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-04-08", PeriodKey(ts, PeriodDaily))
	assert.Equal(t, "2026-W15", PeriodKey(ts, PeriodWeekly))
	assert.Equal(t, "2026-04", PeriodKey(ts, PeriodMonthly))
}

func TestIsPeriod(t *testing.T) {
	assert.True(t, IsPeriod(PeriodDaily))
	assert.True(t, IsPeriod(PeriodWeekly))
	assert.True(t, IsPeriod(PeriodMonthly))
	assert.False(t, IsPeriod("hourly"))
	assert.False(t, IsPeriod(""))
}
