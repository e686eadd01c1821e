// Package engine is the budget aggregation engine: the one place that
// turns (onboarding profile, category budgets, expense history,
// calendar date) into the numbers the frontend shows — discretionary
// budget, daily/weekly safe-to-spend, spending pace, per-category
// budget health, and insight messages.
//
// Every endpoint that reports budget math goes through Compute so the
// dashboard, safe-to-spend, analytics, and budget views can never
// disagree with each other. The package is pure: no I/O, no clock
// reads, no shared state. Callers fetch inputs, pass a reference time,
// and serialize the result; rounding to 2 decimal places happens at
// that serialization boundary, never in here.
package engine

import (
	"github.com/expensesink/expensesink-api/internal/domain"
)

// Result is the full aggregation output for one user and one
// reference date. Ephemeral: recomputed per request, never stored.
type Result struct {
	Window      Window
	Inputs      BudgetInputs
	Aggregation *Aggregation
	Projection  Projection
	PerCategory map[string]CategoryHealth
	Insights    []Insight
}

// TotalSpent is the month-to-date spend in currency units.
func (r *Result) TotalSpent() float64 {
	return r.Aggregation.Total()
}

// Compute runs the full pipeline: aggregate the month's expenses,
// resolve the profile into budget inputs, project safe-to-spend
// figures, evaluate per-category health, and derive insights.
//
// Expenses are filtered to [startOfMonth, reference] here, so the
// category breakdown and the grand total always come from the exact
// same record set.
func Compute(
	profile *domain.OnboardingProfile,
	budgets []domain.CategoryBudget,
	expenses []domain.Expense,
	window Window,
) (*Result, error) {
	agg, err := Aggregate(expenses, window.StartOfMonth, window.EndOfMonth.Add(1))
	if err != nil {
		return nil, err
	}

	inputs := ResolveProfile(profile)
	proj := Project(inputs, agg.Total(), window)

	return &Result{
		Window:      window,
		Inputs:      inputs,
		Aggregation: agg,
		Projection:  proj,
		PerCategory: EvaluateBudgets(budgets, agg),
		Insights:    EvaluateInsights(proj, agg),
	}, nil
}
