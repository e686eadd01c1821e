package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/infra/resilience"

	"go.opentelemetry.io/otel/attribute"
)

// ============================================================
// Expenses store — list, get, create, update, delete
// ============================================================

var sortableColumns = map[string]bool{
	"created_at": true,
	"amount":     true,
	"category":   true,
	"vendor":     true,
}

func (c *Client) ListExpenses(ctx context.Context, userID string, filter *domain.ExpenseFilter) ([]domain.Expense, int, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExpenses")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	path := "expenses?" + buildExpenseQuery(userID, filter)
	body, total, err := c.doRequestCounted(ctx, http.MethodGet, path, true)
	if err != nil {
		return nil, 0, err
	}
	if body == nil {
		return []domain.Expense{}, 0, nil
	}

	var rows []domain.Expense
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, 0, fmt.Errorf("decode expenses: %w", err)
	}
	return rows, total, nil
}

// buildExpenseQuery translates a filter into PostgREST query params.
func buildExpenseQuery(userID string, f *domain.ExpenseFilter) string {
	params := []string{fmt.Sprintf("user_id=eq.%s", userID)}

	if f != nil {
		if f.Category != "" {
			params = append(params, fmt.Sprintf("category=eq.%s", f.Category))
		}
		if f.Status != "" {
			params = append(params, fmt.Sprintf("status=eq.%s", f.Status))
		}
		if !f.StartDate.IsZero() {
			params = append(params, fmt.Sprintf("created_at=gte.%s", f.StartDate.UTC().Format("2006-01-02T15:04:05Z")))
		}
		if !f.EndDate.IsZero() {
			params = append(params, fmt.Sprintf("created_at=lt.%s", f.EndDate.UTC().Format("2006-01-02T15:04:05Z")))
		}
		if f.MinAmount > 0 {
			params = append(params, fmt.Sprintf("amount=gte.%g", f.MinAmount))
		}
		if f.MaxAmount > 0 {
			params = append(params, fmt.Sprintf("amount=lte.%g", f.MaxAmount))
		}
		if f.Search != "" {
			// Match vendor or description, case-insensitive.
			term := url.QueryEscape("*" + f.Search + "*")
			params = append(params, fmt.Sprintf("or=(vendor.ilike.%s,description.ilike.%s)", term, term))
		}
	}

	sortBy := "created_at"
	sortOrder := "desc"
	if f != nil && sortableColumns[f.SortBy] {
		sortBy = f.SortBy
	}
	if f != nil && f.SortOrder == "asc" {
		sortOrder = "asc"
	}
	params = append(params, fmt.Sprintf("order=%s.%s", sortBy, sortOrder))

	page, pageSize := 1, 20
	if f != nil && f.Page > 0 {
		page = f.Page
	}
	if f != nil && f.PageSize > 0 {
		pageSize = f.PageSize
	}
	params = append(params, fmt.Sprintf("limit=%d", pageSize))
	params = append(params, fmt.Sprintf("offset=%d", (page-1)*pageSize))

	return strings.Join(params, "&")
}

func (c *Client) GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetExpense")
	defer span.End()

	path := fmt.Sprintf("expenses?id=eq.%s&user_id=eq.%s&limit=1", expenseID, userID)
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Expense
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode expense: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	return &rows[0], nil
}

func (c *Client) CreateExpense(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateExpense")
	defer span.End()

	data := map[string]any{
		"id":          expense.ID,
		"user_id":     expense.UserID,
		"amount":      expense.Amount,
		"category":    expense.Category,
		"vendor":      expense.Vendor,
		"description": expense.Description,
		"status":      expense.Status,
		"created_at":  expense.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}

	body, err := c.doPost(ctx, "expenses", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Expense
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode created expense: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("supabase returned empty representation for created expense")
	}
	return &rows[0], nil
}

func (c *Client) UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) (*domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateExpense")
	defer span.End()

	path := fmt.Sprintf("expenses?id=eq.%s&user_id=eq.%s", expenseID, userID)
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.Expense
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode updated expense: %w", err)
	}
	// An empty representation means the filter matched nothing: either
	// the expense does not exist or it belongs to another user.
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "expense", ID: expenseID}
	}
	return &rows[0], nil
}

func (c *Client) DeleteExpense(ctx context.Context, userID, expenseID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteExpense")
	defer span.End()

	// Existence check first: PostgREST DELETE succeeds silently on an
	// empty match, but the API reports 404 for unknown expenses.
	if _, err := c.GetExpense(ctx, userID, expenseID); err != nil {
		return err
	}

	path := fmt.Sprintf("expenses?id=eq.%s&user_id=eq.%s", expenseID, userID)
	return c.doDelete(ctx, path)
}

// ListExpensesBetween returns every expense with created_at in
// [from, to). The aggregation engine is the main caller, so this read
// is wrapped with the circuit breaker and retry — every budget view
// breaks when it fails.
func (c *Client) ListExpensesBetween(ctx context.Context, userID string, from, to string) ([]domain.Expense, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListExpensesBetween")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	var expenses []domain.Expense

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			path := fmt.Sprintf("expenses?user_id=eq.%s&created_at=gte.%s&created_at=lt.%s&order=created_at.desc&limit=10000",
				userID, from, to)
			body, err := c.doRequest(ctx, http.MethodGet, path)
			if err != nil {
				return err
			}

			if body == nil || string(body) == "[]" {
				expenses = []domain.Expense{}
				return nil
			}

			var rows []domain.Expense
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode expenses: %w", err)
			}
			expenses = rows
			return nil
		})
	})

	if err != nil {
		return nil, wrapStoreErr("supabase/expenses", "list expenses between", err)
	}

	return expenses, nil
}
