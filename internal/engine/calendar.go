package engine

import "time"

// Window describes the month the aggregation runs over, derived from a
// reference instant. It is never stored; every request recomputes it.
type Window struct {
	ReferenceDate time.Time
	StartOfMonth  time.Time
	EndOfMonth    time.Time
	DaysInMonth   int
	DaysElapsed   int // 1-based day of month
	DaysRemaining int // inclusive of the reference day, always >= 1
}

// MonthWindow computes the aggregation window for the month containing
// ref, evaluated in loc.
//
// DaysRemaining counts the reference day itself (daysInMonth - day + 1).
// That inclusive convention is a product decision the frontend depends
// on; it also guarantees the value never reaches zero, so safe-to-spend
// divisions need no extra guard.
func MonthWindow(ref time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)

	year, month, day := ref.Date()
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	// Day 0 of the next month is the last day of this one.
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, loc)
	end := time.Date(year, month+1, 1, 0, 0, 0, 0, loc).Add(-time.Nanosecond)

	daysInMonth := last.Day()
	remaining := daysInMonth - day + 1
	if remaining < 1 {
		remaining = 1
	}

	return Window{
		ReferenceDate: ref,
		StartOfMonth:  start,
		EndOfMonth:    end,
		DaysInMonth:   daysInMonth,
		DaysElapsed:   day,
		DaysRemaining: remaining,
	}
}

// WeekSpan holds the Monday-start boundaries of the reference week and
// the week before it.
type WeekSpan struct {
	ThisWeekStart time.Time
	LastWeekStart time.Time
}

// WeekBounds computes ISO (Monday-start) week boundaries around ref.
func WeekBounds(ref time.Time, loc *time.Location) WeekSpan {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)

	daysFromMonday := int(ref.Weekday()) - 1
	if ref.Weekday() == time.Sunday {
		daysFromMonday = 6
	}

	year, month, day := ref.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, loc)
	thisWeek := midnight.AddDate(0, 0, -daysFromMonday)

	return WeekSpan{
		ThisWeekStart: thisWeek,
		LastWeekStart: thisWeek.AddDate(0, 0, -7),
	}
}
