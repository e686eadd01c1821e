package engine_test

import (
	"math"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
)

func studentProfile() *domain.OnboardingProfile {
	return &domain.OnboardingProfile{
		UserID:        "user-1",
		MonthlyBudget: 1200,
		Currency:      "USD",
		FixedCosts: []domain.FixedCost{
			{Name: "Rent", Amount: 400},
			{Name: "MealPlan", Amount: 200},
		},
		IsComplete: true,
	}
}

// Scenario: $1200 budget, $600 fixed costs, nothing spent, day 1 of a
// 30-day month.
func TestProject_FreshMonth(t *testing.T) {
	in := engine.ResolveProfile(studentProfile())
	w := engine.MonthWindow(date(2025, time.June, 1, 9, 0, 0), time.UTC)

	p := engine.Project(in, 0, w)

	if p.DiscretionaryBudget != 600 {
		t.Errorf("expected discretionary 600, got %v", p.DiscretionaryBudget)
	}
	if p.AvailableAmount != 600 {
		t.Errorf("expected available 600, got %v", p.AvailableAmount)
	}
	if w.DaysRemaining != 30 {
		t.Errorf("expected 30 days remaining, got %d", w.DaysRemaining)
	}
	if p.DailySafeAmount != 20 {
		t.Errorf("expected daily safe amount 20.00, got %v", p.DailySafeAmount)
	}
}

// Same scenario but overspent: available goes negative, the daily
// amount clamps at zero.
func TestProject_OverBudget(t *testing.T) {
	in := engine.ResolveProfile(studentProfile())
	w := engine.MonthWindow(date(2025, time.June, 1, 9, 0, 0), time.UTC)

	p := engine.Project(in, 650, w)

	if p.AvailableAmount != -50 {
		t.Errorf("expected available -50, got %v", p.AvailableAmount)
	}
	if p.DailySafeAmount != 0 {
		t.Errorf("daily safe amount must never be negative, got %v", p.DailySafeAmount)
	}
	if p.WeeklySafeAmount != 0 {
		t.Errorf("weekly safe amount must never be negative, got %v", p.WeeklySafeAmount)
	}
}

func TestProject_WeeklyAmount(t *testing.T) {
	in := engine.BudgetInputs{MonthlyBudget: 700, Personalized: true}
	// Day 1 of a 30-day month: ceil(30/7) = 5 weeks remaining.
	w := engine.MonthWindow(date(2025, time.June, 1, 0, 0, 0), time.UTC)

	p := engine.Project(in, 0, w)
	if p.WeeksRemaining != 5 {
		t.Errorf("expected 5 weeks remaining, got %d", p.WeeksRemaining)
	}
	if p.WeeklySafeAmount != 140 {
		t.Errorf("expected weekly safe amount 140, got %v", p.WeeklySafeAmount)
	}
}

func TestProject_SpendingPace(t *testing.T) {
	in := engine.BudgetInputs{MonthlyBudget: 600, Personalized: true}
	// Day 15 of a 30-day month: expected spend = 600/30*15 = 300.
	w := engine.MonthWindow(date(2025, time.June, 15, 12, 0, 0), time.UTC)

	p := engine.Project(in, 330, w)
	if p.ExpectedSpendByNow != 300 {
		t.Errorf("expected 300 expected-by-now, got %v", p.ExpectedSpendByNow)
	}
	if p.SpendingPace != 110 {
		t.Errorf("expected pace 110, got %v", p.SpendingPace)
	}
	// 330 over 15 days projects to 660 for the month.
	if p.ProjectedMonthlyTotal != 660 {
		t.Errorf("expected projection 660, got %v", p.ProjectedMonthlyTotal)
	}
}

func TestProject_ZeroBudgetNeverNaN(t *testing.T) {
	p := engine.Project(engine.ResolveProfile(nil), 0,
		engine.MonthWindow(date(2025, time.June, 30, 23, 0, 0), time.UTC))

	for name, v := range map[string]float64{
		"discretionary": p.DiscretionaryBudget,
		"available":     p.AvailableAmount,
		"daily":         p.DailySafeAmount,
		"weekly":        p.WeeklySafeAmount,
		"pace":          p.SpendingPace,
		"projection":    p.ProjectedMonthlyTotal,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", name, v)
		}
	}
}

// Fixed costs above the monthly budget are a valid, reportable state.
func TestProject_NegativeDiscretionary(t *testing.T) {
	in := engine.BudgetInputs{MonthlyBudget: 300, TotalFixedCosts: 500, Personalized: true}
	p := engine.Project(in, 0, engine.MonthWindow(date(2025, time.June, 1, 0, 0, 0), time.UTC))

	if p.DiscretionaryBudget != -200 {
		t.Errorf("expected discretionary -200, got %v", p.DiscretionaryBudget)
	}
	if p.DailySafeAmount != 0 {
		t.Errorf("expected clamped daily amount, got %v", p.DailySafeAmount)
	}
}

func TestResolveProfile_MissingOrIncomplete(t *testing.T) {
	for _, p := range []*domain.OnboardingProfile{
		nil,
		{UserID: "user-1", MonthlyBudget: 900, IsComplete: false},
	} {
		in := engine.ResolveProfile(p)
		if in.Personalized {
			t.Error("expected Personalized=false")
		}
		if in.MonthlyBudget != engine.DefaultMonthlyBudget {
			t.Errorf("expected default budget, got %v", in.MonthlyBudget)
		}
		if in.TotalFixedCosts != 0 {
			t.Errorf("expected zero fixed costs, got %v", in.TotalFixedCosts)
		}
	}
}

func TestResolveProfile_SumsFixedCosts(t *testing.T) {
	in := engine.ResolveProfile(studentProfile())
	if in.TotalFixedCosts != 600 {
		t.Errorf("expected fixed costs 600, got %v", in.TotalFixedCosts)
	}
	if !in.Personalized {
		t.Error("expected Personalized=true")
	}
}
