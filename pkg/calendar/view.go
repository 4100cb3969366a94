package calendar

import "time"

// ViewMode is the calendar's display granularity.
type ViewMode string

const (
	ViewDay    ViewMode = "day"
	ViewWeek   ViewMode = "week"
	ViewBiweek ViewMode = "biweek"
	ViewMonth  ViewMode = "month"
	ViewYear   ViewMode = "year"
)

// endOfPeriodOffset backs the inclusive range ends: the last representable
// instant at the wire's millisecond precision before the next period starts.
const endOfPeriodOffset = -time.Millisecond

// StartOfDay returns local midnight of ref's calendar day in loc.
func StartOfDay(ref time.Time, loc *time.Location) time.Time {
	t := ref.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns local midnight of the Monday of ref's week in loc.
func StartOfWeek(ref time.Time, loc *time.Location) time.Time {
	day := StartOfDay(ref, loc)
	// time.Weekday counts Sunday as 0; the calendar weeks here start Monday.
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// StartOfMonth returns local midnight of the first day of ref's month in loc.
func StartOfMonth(ref time.Time, loc *time.Location) time.Time {
	t := ref.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// StartOfYear returns local midnight of January 1st of ref's year in loc.
func StartOfYear(ref time.Time, loc *time.Location) time.Time {
	t := ref.In(loc)
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, loc)
}

// ViewRange returns the inclusive [start, end] instant pair bounding the view
// around ref, computed on loc's local calendar. Biweek spans the reference
// week plus the following week. An unrecognized mode falls back to day.
func ViewRange(mode ViewMode, ref time.Time, loc *time.Location) (time.Time, time.Time) {
	switch mode {
	case ViewWeek:
		start := StartOfWeek(ref, loc)
		return start, start.AddDate(0, 0, 7).Add(endOfPeriodOffset)
	case ViewBiweek:
		start := StartOfWeek(ref, loc)
		return start, start.AddDate(0, 0, 14).Add(endOfPeriodOffset)
	case ViewMonth:
		start := StartOfMonth(ref, loc)
		return start, start.AddDate(0, 1, 0).Add(endOfPeriodOffset)
	case ViewYear:
		start := StartOfYear(ref, loc)
		return start, start.AddDate(1, 0, 0).Add(endOfPeriodOffset)
	case ViewDay:
		fallthrough
	default:
		start := StartOfDay(ref, loc)
		return start, start.AddDate(0, 0, 1).Add(endOfPeriodOffset)
	}
}

// WeekDays returns the 7 days of ref's week in loc, starting Monday.
func WeekDays(ref time.Time, loc *time.Location) []time.Time {
	return consecutiveDays(StartOfWeek(ref, loc), 7)
}

// BiWeekDays returns 14 days starting from the Monday of ref's week.
func BiWeekDays(ref time.Time, loc *time.Location) []time.Time {
	return consecutiveDays(StartOfWeek(ref, loc), 14)
}

// MonthDays returns the full month-view display grid for ref's month in loc:
// leading days of the prior month back to Monday, every day of the month, and
// trailing days of the next month completing the final week row. The result
// length is always a multiple of 7.
func MonthDays(ref time.Time, loc *time.Location) []time.Time {
	monthStart := StartOfMonth(ref, loc)
	nextMonth := monthStart.AddDate(0, 1, 0)
	lastDay := nextMonth.AddDate(0, 0, -1)

	gridStart := StartOfWeek(monthStart, loc)
	gridEnd := StartOfWeek(lastDay, loc).AddDate(0, 0, 7)

	var days []time.Time
	for d := gridStart; d.Before(gridEnd); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// YearMonths returns the 12 first-of-month dates of ref's year in loc.
func YearMonths(ref time.Time, loc *time.Location) []time.Time {
	yearStart := StartOfYear(ref, loc)
	months := make([]time.Time, 0, 12)
	for i := 0; i < 12; i++ {
		months = append(months, yearStart.AddDate(0, i, 0))
	}
	return months
}

// RangesOverlap reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func RangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && aEnd.After(bStart)
}

// EventsForDay returns the events whose [Start, End) interval overlaps the
// day's local [00:00, 24:00) window in loc. An event ending exactly at the
// day's midnight does not belong to that day.
func EventsForDay(events []Event, day time.Time, loc *time.Location) []Event {
	dayStart := StartOfDay(day, loc)
	dayEnd := dayStart.AddDate(0, 0, 1)

	matched := make([]Event, 0, len(events))
	for _, e := range events {
		if RangesOverlap(e.Start, e.End, dayStart, dayEnd) {
			matched = append(matched, e)
		}
	}
	return matched
}

// SnapToInterval rounds t's wall-clock minutes to the nearest interval,
// zeroing seconds. A non-positive interval defaults to 30 minutes.
func SnapToInterval(t time.Time, interval time.Duration) time.Time {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	minutes := time.Duration(t.Minute()) * time.Minute
	snapped := ((minutes + interval/2) / interval) * interval
	hourStart := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), 0, 0, 0, t.Location())
	return hourStart.Add(snapped)
}

// MinutesFromMidnight returns t's wall-clock offset from local midnight in loc.
func MinutesFromMidnight(t time.Time, loc *time.Location) int {
	local := t.In(loc)
	return local.Hour()*60 + local.Minute()
}

// DateAtMinutes returns base's calendar day in loc at the given offset from
// midnight.
func DateAtMinutes(base time.Time, minutes int, loc *time.Location) time.Time {
	day := StartOfDay(base, loc)
	return day.Add(time.Duration(minutes) * time.Minute)
}

func consecutiveDays(start time.Time, n int) []time.Time {
	days := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		days = append(days, start.AddDate(0, 0, i))
	}
	return days
}
