package engine

import (
	"math"

	"github.com/expensesink/expensesink-api/internal/domain"
)

// DefaultMonthlyBudget is the monthly budget used when no onboarding
// profile exists. Zero deliberately signals "unconfigured": callers get
// Personalized=false and degrade the UI instead of showing numbers
// derived from a guessed budget.
const DefaultMonthlyBudget = 0.0

// DefaultCurrency is used until onboarding records a preference.
const DefaultCurrency = "USD"

// BudgetInputs is the resolved budget configuration for one user.
type BudgetInputs struct {
	MonthlyBudget   float64
	TotalFixedCosts float64
	Currency        string
	Personalized    bool
}

// ResolveProfile turns an onboarding profile (possibly nil or
// incomplete) into budget inputs. A missing profile is not an error:
// fixed costs resolve to 0 and the monthly budget falls back to
// DefaultMonthlyBudget.
func ResolveProfile(p *domain.OnboardingProfile) BudgetInputs {
	if p == nil || !p.IsComplete {
		return BudgetInputs{
			MonthlyBudget: DefaultMonthlyBudget,
			Currency:      DefaultCurrency,
		}
	}

	var fixed float64
	for _, fc := range p.FixedCosts {
		fixed += fc.Amount
	}

	currency := p.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	return BudgetInputs{
		MonthlyBudget:   p.MonthlyBudget,
		TotalFixedCosts: fixed,
		Currency:        currency,
		Personalized:    true,
	}
}

// Projection holds the time-based safe-to-spend figures.
type Projection struct {
	DiscretionaryBudget   float64
	AvailableAmount       float64
	DailySafeAmount       float64
	WeeklySafeAmount      float64
	WeeksRemaining        int
	ExpectedSpendByNow    float64
	SpendingPace          float64
	CurrentDailyAverage   float64
	ProjectedMonthlyTotal float64
}

// Project combines the resolved budget, the month-to-date spend, and
// the calendar into safe-to-spend figures.
//
// DiscretionaryBudget may go negative when fixed costs exceed the
// monthly budget — a valid, reportable state. Safe amounts clamp at
// zero and every division is guarded, so all outputs are finite.
func Project(in BudgetInputs, totalSpent float64, w Window) Projection {
	discretionary := in.MonthlyBudget - in.TotalFixedCosts
	available := discretionary - totalSpent

	daysRemaining := w.DaysRemaining
	if daysRemaining < 1 {
		daysRemaining = 1
	}
	weeksRemaining := int(math.Ceil(float64(daysRemaining) / 7))

	daily := math.Max(0, available) / float64(daysRemaining)
	weekly := math.Max(0, available) / float64(weeksRemaining)

	var expected, pace float64
	if w.DaysInMonth > 0 {
		expected = discretionary / float64(w.DaysInMonth) * float64(w.DaysElapsed)
	}
	if expected > 0 {
		pace = totalSpent / expected * 100
	}

	var dailyAvg, projected float64
	if w.DaysElapsed > 0 {
		dailyAvg = totalSpent / float64(w.DaysElapsed)
		projected = dailyAvg * float64(w.DaysInMonth)
	}

	return Projection{
		DiscretionaryBudget:   discretionary,
		AvailableAmount:       available,
		DailySafeAmount:       daily,
		WeeklySafeAmount:      weekly,
		WeeksRemaining:        weeksRemaining,
		ExpectedSpendByNow:    expected,
		SpendingPace:          pace,
		CurrentDailyAverage:   dailyAvg,
		ProjectedMonthlyTotal: projected,
	}
}
