package engine

import (
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
)

var weekdayNames = [7]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// DayTotal is one weekday's spend in the two compared weeks.
type DayTotal struct {
	Date     time.Time // this week's date for the slot
	DayName  string
	ThisWeek float64
	LastWeek float64
}

// WeeklyComparison compares the reference week against the one before
// it, Monday to Sunday.
type WeeklyComparison struct {
	Span             WeekSpan
	Days             [7]DayTotal
	ThisWeekTotal    float64
	LastWeekTotal    float64
	PercentageChange float64
	ExpensesAnalyzed int
}

// CompareWeeks buckets expenses into the 7 weekday slots of the
// reference week and the previous week. An expense belongs to a slot
// when its timestamp falls within that local calendar day. A zero
// last-week total maps to a 0% change, not a division error.
func CompareWeeks(expenses []domain.Expense, ref time.Time, loc *time.Location) WeeklyComparison {
	if loc == nil {
		loc = time.UTC
	}
	span := WeekBounds(ref, loc)

	var thisCents, lastCents [7]int64
	analyzed := 0

	for i := range expenses {
		t := expenses[i].CreatedAt.In(loc)
		cents := Cents(expenses[i].Amount)

		switch {
		case !t.Before(span.ThisWeekStart) && t.Before(span.ThisWeekStart.AddDate(0, 0, 7)):
			day := daysBetween(span.ThisWeekStart, t)
			thisCents[day] += cents
			analyzed++
		case !t.Before(span.LastWeekStart) && t.Before(span.ThisWeekStart):
			day := daysBetween(span.LastWeekStart, t)
			lastCents[day] += cents
			analyzed++
		}
	}

	cmp := WeeklyComparison{Span: span, ExpensesAnalyzed: analyzed}
	var thisTotal, lastTotal int64
	for i := 0; i < 7; i++ {
		cmp.Days[i] = DayTotal{
			Date:     span.ThisWeekStart.AddDate(0, 0, i),
			DayName:  weekdayNames[i],
			ThisWeek: float64(thisCents[i]) / 100,
			LastWeek: float64(lastCents[i]) / 100,
		}
		thisTotal += thisCents[i]
		lastTotal += lastCents[i]
	}

	cmp.ThisWeekTotal = float64(thisTotal) / 100
	cmp.LastWeekTotal = float64(lastTotal) / 100
	if lastTotal > 0 {
		cmp.PercentageChange = (cmp.ThisWeekTotal - cmp.LastWeekTotal) / cmp.LastWeekTotal * 100
	}

	return cmp
}

// daysBetween counts whole local days from start to t, clamped to [0,6].
// AddDate handles DST transitions; a plain duration division would not.
func daysBetween(start, t time.Time) int {
	for i := 0; i < 7; i++ {
		next := start.AddDate(0, 0, i+1)
		if t.Before(next) {
			return i
		}
	}
	return 6
}
