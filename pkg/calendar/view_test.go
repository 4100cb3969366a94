package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestViewRange(t *testing.T) {
	location, _ := time.LoadLocation("Europe/Warsaw")
	ref := time.Date(2025, time.March, 12, 15, 30, 0, 0, location) // a Wednesday

	t.Run("every mode brackets the reference instant", func(t *testing.T) {
		for _, mode := range []ViewMode{ViewDay, ViewWeek, ViewBiweek, ViewMonth, ViewYear} {
			start, end := ViewRange(mode, ref, location)
			assert.False(t, ref.Before(start), "mode %s: start after ref", mode)
			assert.False(t, ref.After(end), "mode %s: end before ref", mode)
			assert.True(t, start.Before(end), "mode %s: empty range", mode)
		}
	})

	t.Run("day covers local midnight to end of day", func(t *testing.T) {
		start, end := ViewRange(ViewDay, ref, location)
		assert.Equal(t, time.Date(2025, time.March, 12, 0, 0, 0, 0, location), start)
		assert.Equal(t, start.AddDate(0, 0, 1).Add(-time.Millisecond), end)
	})

	t.Run("week starts on Monday", func(t *testing.T) {
		start, _ := ViewRange(ViewWeek, ref, location)
		assert.Equal(t, time.Monday, start.Weekday())
		assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, location), start)
	})

	t.Run("biweek spans exactly 14 days", func(t *testing.T) {
		start, end := ViewRange(ViewBiweek, ref, location)
		assert.Equal(t, start.AddDate(0, 0, 14).Add(-time.Millisecond), end)
	})

	t.Run("month covers first to last day", func(t *testing.T) {
		start, end := ViewRange(ViewMonth, ref, location)
		assert.Equal(t, time.Date(2025, time.March, 1, 0, 0, 0, 0, location), start)
		assert.Equal(t, time.April, end.Month())
		assert.Equal(t, 1, end.Day())
	})

	t.Run("unknown mode falls back to day", func(t *testing.T) {
		start, end := ViewRange(ViewMode("agenda"), ref, location)
		dayStart, dayEnd := ViewRange(ViewDay, ref, location)
		assert.Equal(t, dayStart, start)
		assert.Equal(t, dayEnd, end)
	})
}

func TestMonthDays(t *testing.T) {
	location, _ := time.LoadLocation("Europe/Warsaw")

	t.Run("grid is a whole number of weeks starting Monday", func(t *testing.T) {
		for month := time.January; month <= time.December; month++ {
			ref := time.Date(2025, month, 15, 12, 0, 0, 0, location)
			days := MonthDays(ref, location)
			assert.Equal(t, 0, len(days)%7, "month %s", month)
			assert.Equal(t, time.Monday, days[0].Weekday(), "month %s", month)
			assert.Equal(t, time.Sunday, days[len(days)-1].Weekday(), "month %s", month)
		}
	})

	t.Run("June 2025 grid runs from May 26 through July 6", func(t *testing.T) {
		days := MonthDays(time.Date(2025, time.June, 10, 0, 0, 0, 0, location), location)
		assert.Len(t, days, 42)
		assert.Equal(t, time.Date(2025, time.May, 26, 0, 0, 0, 0, location), days[0])
		assert.Equal(t, time.Date(2025, time.July, 6, 0, 0, 0, 0, location), days[len(days)-1])
	})

	t.Run("every day of the month is present", func(t *testing.T) {
		days := MonthDays(time.Date(2025, time.February, 1, 0, 0, 0, 0, location), location)
		inMonth := 0
		for _, d := range days {
			if d.Month() == time.February {
				inMonth++
			}
		}
		assert.Equal(t, 28, inMonth)
	})
}

func TestWeekDays(t *testing.T) {
	location, _ := time.LoadLocation("UTC")
	ref := time.Date(2025, time.March, 16, 23, 0, 0, 0, location) // a Sunday

	days := WeekDays(ref, location)
	assert.Len(t, days, 7)
	assert.Equal(t, time.Date(2025, time.March, 10, 0, 0, 0, 0, location), days[0])
	assert.Equal(t, time.Date(2025, time.March, 16, 0, 0, 0, 0, location), days[6])

	biweek := BiWeekDays(ref, location)
	assert.Len(t, biweek, 14)
	assert.Equal(t, days[0], biweek[0])
	assert.Equal(t, time.Date(2025, time.March, 23, 0, 0, 0, 0, location), biweek[13])
}

func TestEventsForDay(t *testing.T) {
	location, _ := time.LoadLocation("Europe/Warsaw")
	day := time.Date(2025, time.March, 12, 0, 0, 0, 0, location)

	at := func(h, m int) time.Time {
		return time.Date(2025, time.March, 12, h, m, 0, 0, location)
	}

	events := []Event{
		{ID: "morning", Start: at(9, 0), End: at(10, 0)},
		{ID: "ends-at-midnight", Start: at(-2, 0), End: day}, // previous day 22:00 to 00:00
		{ID: "crosses-midnight", Start: at(23, 0), End: at(25, 0)},
		{ID: "next-day", Start: at(24, 0), End: at(25, 0)},
	}

	matched := EventsForDay(events, day, location)
	ids := make([]string, 0, len(matched))
	for _, e := range matched {
		ids = append(ids, e.ID)
	}
	assert.Contains(t, ids, "morning")
	assert.Contains(t, ids, "crosses-midnight")
	assert.NotContains(t, ids, "ends-at-midnight")
	assert.NotContains(t, ids, "next-day")
}

func TestSnapToInterval(t *testing.T) {
	base := func(m int) time.Time {
		return time.Date(2025, time.March, 12, 10, m, 42, 0, time.UTC)
	}

	t.Run("rounds to the nearest half hour by default", func(t *testing.T) {
		assert.Equal(t, 0, SnapToInterval(base(10), 0).Minute())
		assert.Equal(t, 30, SnapToInterval(base(20), 0).Minute())
		assert.Equal(t, 30, SnapToInterval(base(44), 0).Minute())
	})

	t.Run("honours a custom interval and zeroes seconds", func(t *testing.T) {
		snapped := SnapToInterval(base(7), 15*time.Minute)
		assert.Equal(t, 0, snapped.Minute())
		assert.Equal(t, 0, snapped.Second())
		assert.Equal(t, 15, SnapToInterval(base(8), 15*time.Minute).Minute())
	})
}

func TestDateAtMinutes(t *testing.T) {
	location, _ := time.LoadLocation("Europe/Warsaw")
	base := time.Date(2025, time.March, 12, 17, 45, 0, 0, location)

	got := DateAtMinutes(base, 9*60+30, location)
	assert.Equal(t, time.Date(2025, time.March, 12, 9, 30, 0, 0, location), got)
	assert.Equal(t, 9*60+30, MinutesFromMidnight(got, location))
}
