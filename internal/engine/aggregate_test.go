package engine_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
)

func expense(amount float64, category string, at time.Time) domain.Expense {
	return domain.Expense{
		ID:        fmt.Sprintf("exp-%s-%f", category, amount),
		Amount:    amount,
		Category:  category,
		CreatedAt: at,
	}
}

func TestAggregate_CategoryTotalsMatchGrandTotal(t *testing.T) {
	at := date(2025, time.June, 10, 12, 0, 0)
	expenses := []domain.Expense{
		expense(12.34, "meals", at),
		expense(0.01, "meals", at),
		expense(99.99, "travel", at),
		expense(5.55, "office", at),
	}

	agg, err := engine.Aggregate(expenses, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum int64
	for _, s := range agg.Categories {
		sum += s.Cents
	}
	if sum != agg.TotalCents {
		t.Errorf("per-category cents %d != total cents %d", sum, agg.TotalCents)
	}
	if agg.Total() != 117.89 {
		t.Errorf("expected total 117.89, got %v", agg.Total())
	}
	if agg.Categories["meals"].Count != 2 {
		t.Errorf("expected 2 meals records, got %d", agg.Categories["meals"].Count)
	}
}

func TestAggregate_EmptyCategoryGoesToOther(t *testing.T) {
	at := date(2025, time.June, 10, 12, 0, 0)
	agg, err := engine.Aggregate([]domain.Expense{expense(10, "", at)}, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if agg.Categories["other"].Amount() != 10 {
		t.Errorf("expected empty category in 'other' bucket, got %+v", agg.Categories)
	}
}

func TestAggregate_DateRangeFilter(t *testing.T) {
	from := date(2025, time.June, 1, 0, 0, 0)
	to := date(2025, time.July, 1, 0, 0, 0)
	expenses := []domain.Expense{
		expense(10, "meals", date(2025, time.May, 31, 23, 59, 59)),
		expense(20, "meals", date(2025, time.June, 1, 0, 0, 0)),
		expense(30, "meals", date(2025, time.June, 30, 23, 59, 59)),
		expense(40, "meals", date(2025, time.July, 1, 0, 0, 0)),
	}

	agg, err := engine.Aggregate(expenses, from, to)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Total() != 50 {
		t.Errorf("expected 50 inside [from, to), got %v", agg.Total())
	}
}

func TestAggregate_RejectsNegativeAmount(t *testing.T) {
	at := date(2025, time.June, 10, 12, 0, 0)
	_, err := engine.Aggregate([]domain.Expense{expense(-5, "meals", at)}, time.Time{}, time.Time{})
	if err == nil {
		t.Fatal("expected validation error for negative amount")
	}
}

func TestAggregate_EmptyInputIsNotAnError(t *testing.T) {
	agg, err := engine.Aggregate(nil, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if agg.Total() != 0 || agg.Count() != 0 {
		t.Errorf("expected empty aggregation, got %+v", agg)
	}
}

func TestCents_RoundsHalfAwayFromZero(t *testing.T) {
	cases := map[float64]int64{
		0:      0,
		10.00:  1000,
		10.005: 1001,
		29.99:  2999,
		0.1:    10,
	}
	for amount, want := range cases {
		if got := engine.Cents(amount); got != want {
			t.Errorf("Cents(%v) = %d, want %d", amount, got, want)
		}
	}
}

func TestPercentOfTotal_ZeroTotal(t *testing.T) {
	agg, _ := engine.Aggregate(nil, time.Time{}, time.Time{})
	if pct := agg.PercentOfTotal("meals"); pct != 0 {
		t.Errorf("expected 0%% on zero total, got %v", pct)
	}
}

func TestPercentOfTotal_SumsToAtMost100(t *testing.T) {
	at := date(2025, time.June, 10, 12, 0, 0)
	expenses := []domain.Expense{
		expense(33.33, "meals", at),
		expense(33.33, "travel", at),
		expense(33.34, "office", at),
	}
	agg, err := engine.Aggregate(expenses, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum float64
	for cat := range agg.Categories {
		sum += agg.PercentOfTotal(cat)
	}
	if sum > 100.1 {
		t.Errorf("category percentages sum to %v, want <= 100.1", sum)
	}
}
