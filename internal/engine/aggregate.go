package engine

import (
	"math"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
)

// CategorySum is one category's accumulated spend. Amounts accumulate
// as integer cents so the per-category sums and the grand total can
// never drift apart, no matter how many records are folded in.
type CategorySum struct {
	Cents int64
	Count int
}

// Amount returns the accumulated spend in currency units.
func (s CategorySum) Amount() float64 {
	return float64(s.Cents) / 100
}

// Aggregation is the result of a single pass over an expense list.
type Aggregation struct {
	TotalCents int64
	Categories map[string]CategorySum
}

// Total returns the grand total in currency units.
func (a *Aggregation) Total() float64 {
	return float64(a.TotalCents) / 100
}

// Count returns the number of aggregated records.
func (a *Aggregation) Count() int {
	n := 0
	for _, s := range a.Categories {
		n += s.Count
	}
	return n
}

// PercentOfTotal returns a category's share of total spend, rounded to
// one decimal place. A zero total yields 0 for every category.
func (a *Aggregation) PercentOfTotal(category string) float64 {
	if a.TotalCents == 0 {
		return 0
	}
	s, ok := a.Categories[category]
	if !ok {
		return 0
	}
	return Round1(float64(s.Cents) / float64(a.TotalCents) * 100)
}

// Aggregate folds expenses into per-category totals and a grand total
// in one pass. Records outside [from, to) are skipped when either bound
// is non-zero. Empty categories land in the "other" bucket rather than
// being dropped.
//
// It rejects records whose amount is negative or non-finite; merely
// empty input is not an error.
func Aggregate(expenses []domain.Expense, from, to time.Time) (*Aggregation, error) {
	agg := &Aggregation{Categories: make(map[string]CategorySum)}

	for i := range expenses {
		e := &expenses[i]
		if math.IsNaN(e.Amount) || math.IsInf(e.Amount, 0) {
			return nil, &domain.ErrValidation{Field: "amount", Message: "must be a finite number"}
		}
		if e.Amount < 0 {
			return nil, &domain.ErrValidation{Field: "amount", Message: "must not be negative"}
		}
		if !from.IsZero() && e.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && !e.CreatedAt.Before(to) {
			continue
		}

		category := e.Category
		if category == "" {
			category = domain.CategoryOther
		}

		cents := Cents(e.Amount)
		s := agg.Categories[category]
		s.Cents += cents
		s.Count++
		agg.Categories[category] = s
		agg.TotalCents += cents
	}

	return agg, nil
}

// Cents converts a 2dp currency amount to integer cents. Every
// accumulation over expense amounts goes through this one conversion.
func Cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Round2 rounds to two decimal places. Applied at the serialization
// boundary only; internal accumulation keeps full precision.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Round1 rounds to one decimal place (percentages).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
