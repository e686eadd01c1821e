package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Category budgets store — list, upsert, delete
// ============================================================

// ListBudgets returns all active budgets. The engine reads this on
// every budget view, so it goes through the breaker and retry.
func (c *Client) ListBudgets(ctx context.Context, userID string) ([]domain.CategoryBudget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var budgets []domain.CategoryBudget

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("category_budgets?user_id=eq.%s&is_active=eq.true&order=category.asc", userID)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				budgets = []domain.CategoryBudget{}
				return nil
			}

			var rows []domain.CategoryBudget
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode category_budgets: %w", err)
			}
			budgets = rows
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreErr("supabase/budgets", "list budgets", err)
	}

	return budgets, nil
}

// UpsertBudget creates or replaces the budget for (user, category).
// The table has a unique constraint on that pair; merge-duplicates
// turns a conflicting insert into an update.
func (c *Client) UpsertBudget(ctx context.Context, budget *domain.CategoryBudget) (*domain.CategoryBudget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpsertBudget")
	defer span.End()

	data := map[string]any{
		"user_id":         budget.UserID,
		"category":        budget.Category,
		"monthly_limit":   budget.MonthlyLimit,
		"alert_threshold": budget.AlertThresholdPct,
		"is_active":       budget.IsActive,
	}
	if budget.ID != "" {
		data["id"] = budget.ID
	}

	body, err := c.doUpsert(ctx, "category_budgets?on_conflict=user_id,category", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.CategoryBudget
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode upserted budget: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned empty representation for upserted budget")
	}
	return &rows[0], nil
}

// DeleteBudget removes the budget for one category.
func (c *Client) DeleteBudget(ctx context.Context, userID, category string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteBudget")
	defer span.End()

	path := fmt.Sprintf("category_budgets?user_id=eq.%s&category=eq.%s&limit=1", userID, category)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	if body == nil || string(body) == "[]" {
		return &domain.ErrNotFound{Resource: "budget", ID: category}
	}

	return c.doDelete(ctx, fmt.Sprintf("category_budgets?user_id=eq.%s&category=eq.%s", userID, category))
}
