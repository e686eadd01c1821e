package engine_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
)

func TestCompute_FullPipeline(t *testing.T) {
	ref := date(2025, time.June, 15, 12, 0, 0)
	w := engine.MonthWindow(ref, time.UTC)

	expenses := []domain.Expense{
		expense(120, "meals", date(2025, time.June, 3, 12, 0, 0)),
		expense(80, "travel", date(2025, time.June, 10, 12, 0, 0)),
		expense(50, "meals", date(2025, time.June, 14, 12, 0, 0)),
		// Outside the month, must not count.
		expense(500, "meals", date(2025, time.May, 30, 12, 0, 0)),
	}
	budgets := []domain.CategoryBudget{
		budget("meals", 200, 80),
		budget("travel", 100, 80),
	}

	res, err := engine.Compute(studentProfile(), budgets, expenses, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.TotalSpent() != 250 {
		t.Errorf("expected total 250, got %v", res.TotalSpent())
	}
	if !res.Inputs.Personalized {
		t.Error("expected personalized inputs from a complete profile")
	}
	// 1200 budget - 600 fixed - 250 spent.
	if res.Projection.AvailableAmount != 350 {
		t.Errorf("expected available 350, got %v", res.Projection.AvailableAmount)
	}

	meals := res.PerCategory["meals"]
	if meals.PercentageUsed != 85 {
		t.Errorf("expected meals at 85%% of its budget, got %v", meals.PercentageUsed)
	}
	if meals.Status != engine.StatusWarning {
		t.Errorf("expected meals warning, got %s", meals.Status)
	}
	if res.PerCategory["travel"].Status != engine.StatusGood {
		t.Errorf("expected travel good, got %s", res.PerCategory["travel"].Status)
	}
}

// The category breakdown and the grand total must come from the same
// filtered record set.
func TestCompute_BreakdownMatchesTotal(t *testing.T) {
	ref := date(2025, time.June, 20, 12, 0, 0)
	w := engine.MonthWindow(ref, time.UTC)

	expenses := []domain.Expense{
		expense(10.01, "meals", date(2025, time.June, 1, 0, 0, 0)),
		expense(20.02, "travel", date(2025, time.June, 15, 12, 0, 0)),
		expense(30.03, "office", date(2025, time.June, 30, 23, 59, 59)),
		expense(77.77, "meals", date(2025, time.July, 1, 0, 0, 0)),
	}

	res, err := engine.Compute(nil, nil, expenses, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum int64
	for _, s := range res.Aggregation.Categories {
		sum += s.Cents
	}
	if sum != res.Aggregation.TotalCents {
		t.Errorf("breakdown cents %d != total cents %d", sum, res.Aggregation.TotalCents)
	}
	if res.TotalSpent() != 60.06 {
		t.Errorf("expected 60.06 inside the month, got %v", res.TotalSpent())
	}
}

func TestCompute_NoProfileDegrades(t *testing.T) {
	w := engine.MonthWindow(date(2025, time.June, 15, 12, 0, 0), time.UTC)
	expenses := []domain.Expense{
		expense(40, "meals", date(2025, time.June, 10, 12, 0, 0)),
	}

	res, err := engine.Compute(nil, nil, expenses, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if res.Inputs.Personalized {
		t.Error("expected Personalized=false without a profile")
	}
	if res.Projection.DiscretionaryBudget != engine.DefaultMonthlyBudget {
		t.Errorf("expected default budget, got %v", res.Projection.DiscretionaryBudget)
	}
	// Spend still aggregates even without a configured budget.
	if res.TotalSpent() != 40 {
		t.Errorf("expected total 40, got %v", res.TotalSpent())
	}
}

func TestCompute_PropagatesValidationError(t *testing.T) {
	w := engine.MonthWindow(date(2025, time.June, 15, 12, 0, 0), time.UTC)
	bad := []domain.Expense{expense(-1, "meals", date(2025, time.June, 10, 12, 0, 0))}

	if _, err := engine.Compute(nil, nil, bad, w); err == nil {
		t.Fatal("expected error for invalid expense amount")
	}
}

// Same inputs, same reference date → byte-identical output.
func TestCompute_Idempotent(t *testing.T) {
	ref := date(2025, time.June, 15, 12, 0, 0)
	w := engine.MonthWindow(ref, time.UTC)

	expenses := []domain.Expense{
		expense(33.33, "meals", date(2025, time.June, 2, 9, 0, 0)),
		expense(66.67, "travel", date(2025, time.June, 12, 18, 0, 0)),
		expense(12.00, "software", date(2025, time.June, 14, 8, 0, 0)),
	}
	budgets := []domain.CategoryBudget{budget("meals", 100, 80)}

	first, err := engine.Compute(studentProfile(), budgets, expenses, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Compute(studentProfile(), budgets, expenses, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	a, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	b, err := json.Marshal(second)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("repeated computation differs:\n%s\n%s", a, b)
	}
}
