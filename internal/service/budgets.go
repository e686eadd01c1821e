package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/expensesink/expensesink-api/internal/domain"
	"github.com/expensesink/expensesink-api/internal/engine"
	"github.com/expensesink/expensesink-api/internal/infra/observability"
	"github.com/expensesink/expensesink-api/internal/port"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var budgetTracer = otel.Tracer("service/budgets")

// BudgetService owns per-category budgets and their health view.
type BudgetService struct {
	budgets  port.BudgetStore
	expenses port.ExpenseStore
	cache    port.Cache[any]
	metrics  *observability.Metrics
	logger   *zap.Logger
	loc      *time.Location
	now      func() time.Time
}

// NewBudgetService creates the budget service.
func NewBudgetService(
	budgets port.BudgetStore,
	expenses port.ExpenseStore,
	cache port.Cache[any],
	metrics *observability.Metrics,
	logger *zap.Logger,
	loc *time.Location,
) *BudgetService {
	if loc == nil {
		loc = time.UTC
	}
	return &BudgetService{
		budgets:  budgets,
		expenses: expenses,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock overrides the time source. Tests pin the reference date.
func (s *BudgetService) WithClock(now func() time.Time) *BudgetService {
	s.now = now
	return s
}

// List returns every budget joined with its current-month health.
func (s *BudgetService) List(ctx context.Context, userID string) (*domain.BudgetListResponse, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.List")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", userID))

	cacheKey := "budgets:" + userID
	if cached, ok := s.cache.Get(cacheKey); ok {
		if r, ok := cached.(*domain.BudgetListResponse); ok {
			s.metrics.IncrCacheHit("budgets")
			return r, nil
		}
	}
	s.metrics.IncrCacheMiss("budgets")

	w := engine.MonthWindow(s.now(), s.loc)

	var (
		budgets  []domain.CategoryBudget
		expenses []domain.Expense
	)
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b, err := s.budgets.ListBudgets(gCtx, userID)
		if err != nil {
			s.metrics.IncrExternalError("budgets")
			return fmt.Errorf("budgets fetch: %w", err)
		}
		budgets = b
		return nil
	})
	g.Go(func() error {
		e, err := s.expenses.ListExpensesBetween(gCtx, userID,
			storeTime(w.StartOfMonth), storeTime(w.EndOfMonth.Add(time.Nanosecond)))
		if err != nil {
			s.metrics.IncrExternalError("expenses")
			return fmt.Errorf("expenses fetch: %w", err)
		}
		expenses = e
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	agg, err := engine.Aggregate(expenses, w.StartOfMonth, w.EndOfMonth.Add(1))
	if err != nil {
		return nil, err
	}
	health := engine.EvaluateBudgets(budgets, agg)
	s.metrics.IncrEngineCompute("budgets")

	resp := &domain.BudgetListResponse{Budgets: make([]domain.BudgetDetail, 0, len(health))}
	var summary domain.BudgetSummary

	for _, b := range budgets {
		h, ok := health[b.Category]
		if !ok {
			continue
		}
		resp.Budgets = append(resp.Budgets, domain.BudgetDetail{
			ID:             b.ID,
			Category:       b.Category,
			MonthlyLimit:   engine.Round2(h.Limit),
			Spent:          engine.Round2(h.Spent),
			Remaining:      engine.Round2(h.Remaining),
			PercentageUsed: engine.Round1(h.PercentageUsed),
			Status:         h.Status,
			IsOverBudget:   h.Status == engine.StatusOver,
		})

		summary.TotalBudget += h.Limit
		summary.TotalSpent += h.Spent
		switch h.Status {
		case engine.StatusGood:
			summary.HealthyCategories++
		case engine.StatusWarning:
			summary.WarningCategories++
		case engine.StatusOver:
			summary.OverBudgetCategories++
		}
	}
	sort.Slice(resp.Budgets, func(i, j int) bool {
		return resp.Budgets[i].Category < resp.Budgets[j].Category
	})

	summary.TotalRemaining = summary.TotalBudget - summary.TotalSpent
	if summary.TotalBudget > 0 {
		summary.OverallHealth = engine.Round1(summary.TotalSpent / summary.TotalBudget * 100)
	}
	summary.TotalBudget = engine.Round2(summary.TotalBudget)
	summary.TotalSpent = engine.Round2(summary.TotalSpent)
	summary.TotalRemaining = engine.Round2(summary.TotalRemaining)
	resp.Summary = summary

	s.cache.Set(cacheKey, resp)
	return resp, nil
}

// Upsert creates or replaces the budget for one category.
func (s *BudgetService) Upsert(ctx context.Context, userID string, req *domain.UpsertBudgetRequest) (*domain.CategoryBudget, error) {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Upsert")
	defer span.End()

	if !domain.IsValidCategory(req.Category) {
		return nil, &domain.ErrValidation{Field: "category", Message: "unknown category"}
	}
	if req.MonthlyLimit <= 0 || req.MonthlyLimit > MaxExpenseAmount {
		return nil, &domain.ErrValidation{Field: "monthly_limit", Message: "must be positive"}
	}
	threshold := req.AlertThreshold
	if threshold == 0 {
		threshold = engine.DefaultAlertThresholdPercent
	}
	if threshold < 1 || threshold > 100 {
		return nil, &domain.ErrValidation{Field: "alert_threshold", Message: "must be between 1 and 100"}
	}

	budget, err := s.budgets.UpsertBudget(ctx, &domain.CategoryBudget{
		UserID:            userID,
		Category:          req.Category,
		MonthlyLimit:      req.MonthlyLimit,
		AlertThresholdPct: threshold,
		IsActive:          true,
	})
	if err != nil {
		s.metrics.IncrExternalError("budgets")
		return nil, fmt.Errorf("upsert budget: %w", err)
	}

	s.invalidateViews(userID)
	s.logger.Info("budget upserted",
		zap.String("user_id", userID),
		zap.String("category", budget.Category),
		zap.Float64("monthly_limit", budget.MonthlyLimit),
	)
	return budget, nil
}

// Delete removes the budget for one category.
func (s *BudgetService) Delete(ctx context.Context, userID, category string) error {
	ctx, span := budgetTracer.Start(ctx, "BudgetService.Delete")
	defer span.End()

	if !domain.IsValidCategory(category) {
		return &domain.ErrValidation{Field: "category", Message: "unknown category"}
	}
	if err := s.budgets.DeleteBudget(ctx, userID, category); err != nil {
		return err
	}

	s.invalidateViews(userID)
	s.logger.Info("budget deleted",
		zap.String("user_id", userID),
		zap.String("category", category),
	)
	return nil
}

func (s *BudgetService) invalidateViews(userID string) {
	for _, prefix := range viewCachePrefixes {
		s.cache.DeletePrefix(prefix + userID)
	}
}
