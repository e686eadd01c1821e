package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/cache"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/service"

	"go.uber.org/zap"
)

func newExpenseService(store *mockExpenseStore, c *cache.InMemory[any]) *service.ExpenseService {
	if c == nil {
		c = cache.New[any](5 * time.Minute)
	}
	return service.NewExpenseService(store, c, observability.NewMetrics(), zap.NewNop())
}

func TestCreateExpense_Defaults(t *testing.T) {
	store := &mockExpenseStore{}
	svc := newExpenseService(store, nil)

	created, err := svc.Create(context.Background(), "user-1", &domain.CreateExpenseRequest{
		Amount:   12.5,
		Category: domain.CategoryMeals,
		Vendor:   "Campus Deli",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if created.ID == "" {
		t.Error("expected a generated id")
	}
	if created.Status != domain.StatusPending {
		t.Errorf("expected status 'pending', got '%s'", created.Status)
	}
	if created.UserID != "user-1" {
		t.Errorf("expected user_id 'user-1', got '%s'", created.UserID)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at to be set")
	}
}

func TestCreateExpense_Backdated(t *testing.T) {
	store := &mockExpenseStore{}
	svc := newExpenseService(store, nil)

	created, err := svc.Create(context.Background(), "user-1", &domain.CreateExpenseRequest{
		Amount:    40,
		Category:  domain.CategoryTravel,
		Vendor:    "Train",
		CreatedAt: "2025-01-10T08:00:00Z",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	want := time.Date(2025, 1, 10, 8, 0, 0, 0, time.UTC)
	if !created.CreatedAt.Equal(want) {
		t.Errorf("expected created_at %v, got %v", want, created.CreatedAt)
	}
}

func TestCreateExpense_Validation(t *testing.T) {
	svc := newExpenseService(&mockExpenseStore{}, nil)

	cases := []struct {
		name string
		req  domain.CreateExpenseRequest
	}{
		{"zero amount", domain.CreateExpenseRequest{Amount: 0, Category: domain.CategoryMeals, Vendor: "x"}},
		{"amount too large", domain.CreateExpenseRequest{Amount: 2_000_000, Category: domain.CategoryMeals, Vendor: "x"}},
		{"unknown category", domain.CreateExpenseRequest{Amount: 10, Category: "groceries", Vendor: "x"}},
		{"missing vendor", domain.CreateExpenseRequest{Amount: 10, Category: domain.CategoryMeals}},
		{"unknown status", domain.CreateExpenseRequest{Amount: 10, Category: domain.CategoryMeals, Vendor: "x", Status: "archived"}},
		{"future created_at", domain.CreateExpenseRequest{Amount: 10, Category: domain.CategoryMeals, Vendor: "x", CreatedAt: "2099-01-01T00:00:00Z"}},
		{"malformed created_at", domain.CreateExpenseRequest{Amount: 10, Category: domain.CategoryMeals, Vendor: "x", CreatedAt: "yesterday"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), "user-1", &tc.req)
			var vErr *domain.ErrValidation
			if !errors.As(err, &vErr) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateExpense_EvictsViews(t *testing.T) {
	c := cache.New[any](5 * time.Minute)
	c.Set("dashboard:user-1", "stale")
	c.Set("dashboard:user-2", "other user")

	svc := newExpenseService(&mockExpenseStore{}, c)

	_, err := svc.Create(context.Background(), "user-1", &domain.CreateExpenseRequest{
		Amount:   10,
		Category: domain.CategoryMeals,
		Vendor:   "Cafe",
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, ok := c.Get("dashboard:user-1"); ok {
		t.Error("expected the writer's dashboard cache to be evicted")
	}
	if _, ok := c.Get("dashboard:user-2"); !ok {
		t.Error("expected other users' caches to survive")
	}
}

func TestUpdateExpense_Partial(t *testing.T) {
	store := &mockExpenseStore{updated: &domain.Expense{ID: "exp-1", Amount: 25}}
	svc := newExpenseService(store, nil)

	amount := 25.0
	updated, err := svc.Update(context.Background(), "user-1", "exp-1", &domain.UpdateExpenseRequest{Amount: &amount})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if updated.Amount != 25 {
		t.Errorf("expected amount 25, got %f", updated.Amount)
	}
	if store.updates["amount"] != 25.0 {
		t.Errorf("expected amount in update map, got %+v", store.updates)
	}
	if _, ok := store.updates["updated_at"]; !ok {
		t.Error("expected updated_at to be stamped")
	}
	if _, ok := store.updates["vendor"]; ok {
		t.Error("expected untouched fields to stay out of the update map")
	}
}

func TestUpdateExpense_NoFields(t *testing.T) {
	svc := newExpenseService(&mockExpenseStore{}, nil)

	_, err := svc.Update(context.Background(), "user-1", "exp-1", &domain.UpdateExpenseRequest{})
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Errorf("expected validation error for empty update, got %v", err)
	}
}

func TestListExpenses_InvalidCategory(t *testing.T) {
	svc := newExpenseService(&mockExpenseStore{}, nil)

	_, err := svc.List(context.Background(), "user-1", &domain.ExpenseFilter{Category: "groceries"})
	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestListExpenses_Pagination(t *testing.T) {
	store := &mockExpenseStore{expenses: septemberExpenses(), total: 45}
	svc := newExpenseService(store, nil)

	resp, err := svc.List(context.Background(), "user-1", &domain.ExpenseFilter{Page: 2, PageSize: 20})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if resp.Total != 45 {
		t.Errorf("expected total 45, got %d", resp.Total)
	}
	if !resp.HasMore {
		t.Error("expected has_more on page 2 of 45")
	}

	resp, err = svc.List(context.Background(), "user-1", &domain.ExpenseFilter{Page: 3, PageSize: 20})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.HasMore {
		t.Error("expected no more pages after the last one")
	}
}
