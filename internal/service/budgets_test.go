package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
	"github.com/expensesink/expensesink-api/internal/infra/cache"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/service"

	"go.uber.org/zap"
)

func newBudgetService(budgets *mockBudgetStore, expenses *mockExpenseStore) *service.BudgetService {
	return service.NewBudgetService(
		budgets,
		expenses,
		cache.New[any](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
		time.UTC,
	).WithClock(fixedClock())
}

func TestBudgetList_Health(t *testing.T) {
	budgets := &mockBudgetStore{budgets: []domain.CategoryBudget{
		{ID: "budget-1", UserID: "user-1", Category: domain.CategoryMeals, MonthlyLimit: 200, AlertThresholdPct: 80, IsActive: true},
	}}
	expenses := &mockExpenseStore{expenses: []domain.Expense{
		{ID: "exp-1", UserID: "user-1", Amount: 170, Category: domain.CategoryMeals, Vendor: "Cafeteria",
			CreatedAt: time.Date(2025, 9, 5, 12, 0, 0, 0, time.UTC)},
	}}
	svc := newBudgetService(budgets, expenses)

	resp, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(resp.Budgets) != 1 {
		t.Fatalf("expected 1 budget, got %d", len(resp.Budgets))
	}
	b := resp.Budgets[0]
	if b.Spent != 170 {
		t.Errorf("expected spent 170, got %f", b.Spent)
	}
	if b.PercentageUsed != 85 {
		t.Errorf("expected 85%% used, got %f", b.PercentageUsed)
	}
	if b.Status != engine.StatusWarning {
		t.Errorf("expected warning status at 85%% of an 80%% threshold, got '%s'", b.Status)
	}
	if b.IsOverBudget {
		t.Error("expected not over budget")
	}
	if resp.Summary.WarningCategories != 1 {
		t.Errorf("expected 1 warning category, got %d", resp.Summary.WarningCategories)
	}
	if resp.Summary.OverallHealth != 85 {
		t.Errorf("expected overall health 85, got %f", resp.Summary.OverallHealth)
	}
}

func TestBudgetUpsert_DefaultThreshold(t *testing.T) {
	budgets := &mockBudgetStore{}
	svc := newBudgetService(budgets, &mockExpenseStore{})

	budget, err := svc.Upsert(context.Background(), "user-1", &domain.UpsertBudgetRequest{
		Category:     domain.CategoryMeals,
		MonthlyLimit: 300,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if budget.AlertThresholdPct != engine.DefaultAlertThresholdPercent {
		t.Errorf("expected default threshold %v, got %f", engine.DefaultAlertThresholdPercent, budget.AlertThresholdPct)
	}
	if !budget.IsActive {
		t.Error("expected upserted budget to be active")
	}
	if budgets.upserted == nil || budgets.upserted.UserID != "user-1" {
		t.Errorf("expected budget stored for user-1, got %+v", budgets.upserted)
	}
}

func TestBudgetUpsert_Validation(t *testing.T) {
	svc := newBudgetService(&mockBudgetStore{}, &mockExpenseStore{})

	cases := []struct {
		name string
		req  domain.UpsertBudgetRequest
	}{
		{"unknown category", domain.UpsertBudgetRequest{Category: "groceries", MonthlyLimit: 100}},
		{"zero limit", domain.UpsertBudgetRequest{Category: domain.CategoryMeals, MonthlyLimit: 0}},
		{"threshold out of range", domain.UpsertBudgetRequest{Category: domain.CategoryMeals, MonthlyLimit: 100, AlertThreshold: 150}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), "user-1", &tc.req)
			var vErr *domain.ErrValidation
			if !errors.As(err, &vErr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestBudgetDelete_InvalidCategory(t *testing.T) {
	svc := newBudgetService(&mockBudgetStore{}, &mockExpenseStore{})

	err := svc.Delete(context.Background(), "user-1", "groceries")
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Errorf("expected validation error, got %v", err)
	}
}
