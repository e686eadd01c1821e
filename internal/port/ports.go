// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/expensesink/expensesink-api/internal/domain"
)

// ExpenseStore defines all data operations for expense records.
// Implemented by the Supabase adapter (or any other persistence layer).
type ExpenseStore interface {
	ListExpenses(ctx context.Context, userID string, filter *domain.ExpenseFilter) ([]domain.Expense, int, error)
	GetExpense(ctx context.Context, userID, expenseID string) (*domain.Expense, error)
	CreateExpense(ctx context.Context, expense *domain.Expense) (*domain.Expense, error)
	UpdateExpense(ctx context.Context, userID, expenseID string, updates map[string]any) (*domain.Expense, error)
	DeleteExpense(ctx context.Context, userID, expenseID string) error

	// ListExpensesBetween returns every expense with created_at in
	// [from, to), unpaginated. The aggregation engine needs the full
	// record set to keep totals and breakdowns consistent.
	ListExpensesBetween(ctx context.Context, userID string, from, to string) ([]domain.Expense, error)
}

// BudgetStore defines data operations for per-category budgets.
type BudgetStore interface {
	ListBudgets(ctx context.Context, userID string) ([]domain.CategoryBudget, error)
	UpsertBudget(ctx context.Context, budget *domain.CategoryBudget) (*domain.CategoryBudget, error)
	DeleteBudget(ctx context.Context, userID, category string) error
}

// OnboardingStore persists the onboarding profile.
// GetProfile returns (nil, nil) when no profile exists — a missing
// profile is a normal state, not an error.
type OnboardingStore interface {
	GetProfile(ctx context.Context, userID string) (*domain.OnboardingProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.OnboardingProfile) (*domain.OnboardingProfile, error)
}

// AdvisorCaller invokes the external AI advisor service.
type AdvisorCaller interface {
	Call(ctx context.Context, req *domain.AdvisorRequest) (*domain.AdvisorResponse, error)
}

// Cache provides generic caching with TTL. DeletePrefix evicts every
// key under a prefix, used to drop a user's computed views after a
// write.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
	DeletePrefix(prefix string)
}
